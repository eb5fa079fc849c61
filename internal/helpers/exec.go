package helpers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner runs the package manager and other external programs.
// Implementations must pass arguments separately, never through a shell.
type CommandRunner interface {
	// RequireCommand returns an error wrapping exec.ErrNotFound when name is not in PATH
	RequireCommand(name string) error

	// RunCommand runs a program to completion and returns its stdout
	RunCommand(ctx context.Context, name string, args ...string) (string, error)

	// RunCommandStreaming runs a program with its output attached to the given writers
	RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
}

// RunError describes a program that could not be started or exited unsuccessfully
type RunError struct {
	Name     string
	Args     []string
	ExitCode int // -1 when the program did not run to completion
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Name, e.Err)
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// OSCommandRunner runs programs with os/exec
type OSCommandRunner struct {
	lookups sync.Map // name -> error from exec.LookPath
	env     []string
}

// NewOSCommandRunner creates a new OSCommandRunner instance
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// WithEnv adds KEY=VALUE pairs to the environment of every program run
func (r *OSCommandRunner) WithEnv(kv ...string) *OSCommandRunner {
	r.env = append(r.env, kv...)
	return r
}

// RequireCommand implements CommandRunner.RequireCommand. Lookups are cached.
func (r *OSCommandRunner) RequireCommand(name string) error {
	if cached, ok := r.lookups.Load(name); ok {
		if cached == nil {
			return nil
		}
		return cached.(error)
	}

	var result error
	if _, err := exec.LookPath(name); err != nil {
		result = fmt.Errorf("required command %q not found in PATH: %w", name, exec.ErrNotFound)
	}
	r.lookups.Store(name, result)
	return result
}

// RunCommand implements CommandRunner.RunCommand
func (r *OSCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := r.command(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", newRunError(ctx, name, args, strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}

// RunCommandStreaming implements CommandRunner.RunCommandStreaming.
// nil writers discard the corresponding stream.
func (r *OSCommandRunner) RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return newRunError(ctx, name, args, "", err)
	}
	return nil
}

func (r *OSCommandRunner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	return cmd
}

// newRunError wraps err, attaching the context error when the program was
// stopped by cancellation or timeout
func newRunError(ctx context.Context, name string, args []string, stderr string, err error) *RunError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return &RunError{
		Name:     name,
		Args:     append([]string(nil), args...),
		ExitCode: code,
		Stderr:   stderr,
		Err:      err,
	}
}
