package helpers

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSCommandRunner_RequireCommand(t *testing.T) {
	runner := NewOSCommandRunner()

	assert.NoError(t, runner.RequireCommand("sh"))
	// served from the cache
	assert.NoError(t, runner.RequireCommand("sh"))

	err := runner.RequireCommand("libmgr-nonexistent-command")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.ErrorIs(t, runner.RequireCommand("libmgr-nonexistent-command"), exec.ErrNotFound)
}

func TestOSCommandRunner_RunCommand(t *testing.T) {
	runner := NewOSCommandRunner()
	ctx := context.Background()

	t.Run("stdout", func(t *testing.T) {
		out, err := runner.RunCommand(ctx, "echo", "pip", "24.0")
		require.NoError(t, err)
		assert.Equal(t, "pip 24.0\n", out)
	})

	t.Run("exit status and stderr", func(t *testing.T) {
		_, err := runner.RunCommand(ctx, "sh", "-c", "echo 'ERROR: No matching distribution' >&2; exit 3")
		require.Error(t, err)

		var runErr *RunError
		require.ErrorAs(t, err, &runErr)
		assert.Equal(t, "sh", runErr.Name)
		assert.Equal(t, 3, runErr.ExitCode)
		assert.Equal(t, "ERROR: No matching distribution", runErr.Stderr)
		assert.Contains(t, err.Error(), "No matching distribution")
	})

	t.Run("missing program", func(t *testing.T) {
		_, err := runner.RunCommand(ctx, "libmgr-nonexistent-command")
		assert.ErrorIs(t, err, exec.ErrNotFound)

		var runErr *RunError
		require.ErrorAs(t, err, &runErr)
		assert.Equal(t, -1, runErr.ExitCode)
	})

	t.Run("timeout", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := runner.RunCommand(tctx, "sleep", "5")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := runner.RunCommand(cctx, "sleep", "5")
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestOSCommandRunner_WithEnv(t *testing.T) {
	runner := NewOSCommandRunner().WithEnv("PIP_NO_INPUT=1")

	out, err := runner.RunCommand(context.Background(), "sh", "-c", "echo $PIP_NO_INPUT")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestOSCommandRunner_RunCommandStreaming(t *testing.T) {
	runner := NewOSCommandRunner()
	var stdout, stderr bytes.Buffer

	err := runner.RunCommandStreaming(context.Background(), &stdout, &stderr, "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())

	assert.NoError(t, runner.RunCommandStreaming(context.Background(), nil, nil, "echo", "discarded"))

	err = runner.RunCommandStreaming(context.Background(), nil, nil, "false")
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 1, runErr.ExitCode)
}

func TestMockCommandRunner_RecordsCalls(t *testing.T) {
	mock := &MockCommandRunner{}

	_, _ = mock.RunCommand(context.Background(), "pip", "list")
	_ = mock.RunCommandStreaming(context.Background(), nil, nil, "pip", "uninstall", "six", "-y")

	assert.Equal(t, [][]string{{"pip", "list"}, {"pip", "uninstall", "six", "-y"}}, mock.Calls)
	assert.NoError(t, mock.RequireCommand("pip"))
}

var _ CommandRunner = (*OSCommandRunner)(nil)
