package shells

import (
	"github.com/alessio/shellescape"
	"github.com/google/shlex"
)

// Join renders a command line for humans; the result is safe to paste into a shell.
func Join(cmdAndArgs []string) string {
	return shellescape.QuoteCommand(cmdAndArgs)
}

func Split(cmd string) ([]string, error) {
	return shlex.Split(cmd)
}

// Prefixed returns prefix followed by name and args in a new slice.
func Prefixed(prefix []string, name string, args ...string) []string {
	all := make([]string, 0, len(prefix)+1+len(args))
	all = append(all, prefix...)
	all = append(all, name)
	all = append(all, args...)
	return all
}
