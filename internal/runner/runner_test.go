package runner

import (
	"bytes"
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdood/gloop/pkg/types"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("runner tests rely on unix shell utilities")
	}
}

func TestRunSuccess(t *testing.T) {
	skipOnWindows(t)

	var stdout bytes.Buffer
	cmd := types.Command{Argv: []string{"echo", "hello world"}}
	err := Run(context.Background(), cmd, Options{Stdout: &stdout})
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", stdout.String())
}

func TestRunNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	cmd := types.Command{Argv: []string{"sh", "-c", "exit 3"}}
	err := Run(context.Background(), cmd, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonZeroExit)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestRunEmptyArgv(t *testing.T) {
	err := Run(context.Background(), types.Command{}, Options{})
	assert.ErrorIs(t, err, types.ErrEmptyCommand)
}

func TestRunCommandNotFound(t *testing.T) {
	skipOnWindows(t)

	cmd := types.Command{Argv: []string{"gloop-no-such-binary-xyzzy"}}
	err := Run(context.Background(), cmd, Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNonZeroExit)
}

func TestRunShellMode(t *testing.T) {
	skipOnWindows(t)

	var stdout bytes.Buffer
	cmd := types.Command{
		Argv:  []string{"echo", "first"},
		Shell: "echo first && echo second",
	}
	err := Run(context.Background(), cmd, Options{Shell: true, Stdout: &stdout})
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", stdout.String())
}

func TestRunShellModeQuotesArgv(t *testing.T) {
	skipOnWindows(t)

	// No prebuilt shell line: the quoted rendering of argv is used, so the
	// argument with spaces stays one word.
	var stdout bytes.Buffer
	cmd := types.Command{Argv: []string{"echo", "one two"}}
	err := Run(context.Background(), cmd, Options{Shell: true, Stdout: &stdout})
	require.NoError(t, err)
	assert.Equal(t, "one two\n", stdout.String())
}

func TestRunTimeout(t *testing.T) {
	skipOnWindows(t)

	cmd := types.Command{Argv: []string{"sleep", "10"}}
	start := time.Now()
	err := Run(context.Background(), cmd, Options{Timeout: 100 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunCancelledContext(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd := types.Command{Argv: []string{"sleep", "10"}}
	err := Run(ctx, cmd, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWorkingDirectory(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var stdout bytes.Buffer
	cmd := types.Command{Argv: []string{"pwd"}}
	err := Run(context.Background(), cmd, Options{Dir: dir, Stdout: &stdout})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), dir)
}
