// Package sudo runs external commands, optionally behind a privilege prefix such as `sudo`.
package sudo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/ImSingee/relsync/internal/lib/shells"
)

type Runner struct {
	// Prefix is prepended to every command, e.g. ["sudo", "-n"]
	Prefix []string
	Dir    string
	Env    []string
}

// NewRunner builds a Runner from a shell-like prefix string.
func NewRunner(prefix string) (*Runner, error) {
	p, err := shells.Split(prefix)
	if err != nil {
		return nil, fmt.Errorf("cannot parse privilege prefix `%s`: %w", prefix, err)
	}

	return &Runner{Prefix: p}, nil
}

type Result struct {
	Command string
	Output  []byte

	ExitCode   int
	ExitErr    *exec.ExitError
	UnknownErr error
}

func (r *Result) Err() error {
	if r.ExitErr != nil {
		return fmt.Errorf("`%s` failed: %s %s", r.Command, r.ExitErr.Error(), bytes.TrimSpace(r.ExitErr.Stderr))
	}

	if r.UnknownErr != nil {
		return fmt.Errorf("`%s` failed: %w", r.Command, r.UnknownErr)
	}

	return nil
}

func (s *Runner) Run(ctx context.Context, name string, args ...string) *Result {
	return s.run(ctx, nil, name, args...)
}

// RunWithInput feeds input to the command's stdin.
func (s *Runner) RunWithInput(ctx context.Context, input []byte, name string, args ...string) *Result {
	return s.run(ctx, input, name, args...)
}

func (s *Runner) run(ctx context.Context, input []byte, name string, args ...string) *Result {
	all := shells.Prefixed(s.Prefix, name, args...)

	result := &Result{
		Command: shells.Join(all),
	}

	slog.Debug("Run command", "cmd", result.Command, "dir", s.Dir)

	cmd := exec.CommandContext(ctx, all[0], all[1:]...)
	cmd.Dir = s.Dir
	if s.Env != nil {
		cmd.Env = s.Env
	}
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}

	output, err := cmd.Output()
	result.Output = output

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.ExitErr = exitErr
		} else {
			result.ExitCode = -1
			result.UnknownErr = err
		}
	}

	return result
}
