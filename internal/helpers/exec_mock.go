package helpers

import (
	"context"
	"io"
	"sync"
)

// MockCommandRunner is a CommandRunner for testing. Every invocation is
// recorded in Calls as the program name followed by its arguments.
type MockCommandRunner struct {
	RequireCommandFunc      func(name string) error
	RunCommandFunc          func(ctx context.Context, name string, args ...string) (string, error)
	RunCommandStreamingFunc func(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error

	mu    sync.Mutex
	Calls [][]string
}

func (m *MockCommandRunner) record(name string, args []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, append([]string{name}, args...))
}

// RequireCommand implements CommandRunner.RequireCommand
func (m *MockCommandRunner) RequireCommand(name string) error {
	if m.RequireCommandFunc != nil {
		return m.RequireCommandFunc(name)
	}
	return nil
}

// RunCommand implements CommandRunner.RunCommand
func (m *MockCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	m.record(name, args)
	if m.RunCommandFunc != nil {
		return m.RunCommandFunc(ctx, name, args...)
	}
	return "", nil
}

// RunCommandStreaming implements CommandRunner.RunCommandStreaming
func (m *MockCommandRunner) RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	m.record(name, args)
	if m.RunCommandStreamingFunc != nil {
		return m.RunCommandStreamingFunc(ctx, stdout, stderr, name, args...)
	}
	return nil
}

var _ CommandRunner = (*MockCommandRunner)(nil)
