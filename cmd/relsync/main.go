package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ImSingee/go-ex/ee"
)

func main() {
	err := newApp(defaultCLI()).Execute()
	if err != nil {
		if !ee.Is(err, ee.Phantom) {
			l("Error: %v", err)
		}

		os.Exit(1)
	}
}

func l(msg string, args ...any) {
	s := msg
	if len(args) != 0 {
		s = fmt.Sprintf(msg, args...)
	}

	_, _ = os.Stderr.Write([]byte("relsync - " + strings.TrimSpace(s) + "\n"))
}
