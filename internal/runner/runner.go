// Package runner executes compiled commands. The default mode passes argv
// straight to exec with no shell in between; Shell mode runs the quoted
// rendering through "sh -c" for callers that want shell semantics.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/isdood/gloop/internal/compile"
	"github.com/isdood/gloop/pkg/types"
)

// ErrNonZeroExit wraps a child's non-zero exit status.
var ErrNonZeroExit = errors.New("command exited non-zero")

// ExitError carries the child's exit code. Unwraps to ErrNonZeroExit.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrNonZeroExit
}

// Options controls how a command is executed.
type Options struct {
	Shell   bool          // run via "sh -c" on the quoted rendering
	Dir     string        // working directory; empty means inherit
	Timeout time.Duration // >0 bounds the run
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run executes one compiled command. The child's stdout and stderr stream to
// the provided writers. A non-zero exit returns *ExitError; other failures
// (not found, context cancelled) return the underlying error.
func Run(ctx context.Context, cmd types.Command, opts Options) error {
	if len(cmd.Argv) == 0 {
		return types.ErrEmptyCommand
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var child *exec.Cmd
	if opts.Shell {
		line := cmd.Shell
		if line == "" {
			line = compile.ShellLine(cmd.Argv)
		}
		child = exec.CommandContext(ctx, "sh", "-c", line)
	} else {
		child = exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	}
	child.Dir = opts.Dir
	child.Stdout = opts.Stdout
	child.Stderr = opts.Stderr

	err := child.Run()
	if err == nil {
		return nil
	}
	// Context errors beat exit codes: a killed child reports -1.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return err
}
