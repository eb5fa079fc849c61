package syspkg

import (
	"context"

	"github.com/quantmind-br/libmgr/internal/core"
)

// Provider defines the interface to the external package manager.
// The metadata cache treats ListInstalled and Show as pure queries; Install
// and Uninstall are the only mutating calls.
type Provider interface {
	// Name returns the provider name (e.g., "pip")
	Name() string

	// ListInstalled returns the names of all installed libraries
	ListInstalled(ctx context.Context) ([]string, error)

	// Show returns the dependency metadata of an installed library
	Show(ctx context.Context, name string) (*core.LibraryRecord, error)

	// Install installs all names in a single request
	Install(ctx context.Context, names []string) error

	// Uninstall removes a single library without asking for confirmation
	Uninstall(ctx context.Context, name string) error
}
