package install

import (
	"context"
	"fmt"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/syspkg"
	"github.com/rs/zerolog"
)

// Status describes what Ensure had to do
type Status int

const (
	AlreadySatisfied Status = iota
	Installed
)

func (s Status) String() string {
	switch s {
	case AlreadySatisfied:
		return "already-satisfied"
	case Installed:
		return "installed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of Ensure
type Result struct {
	Status  Status
	Missing core.NameSet
}

// Driver installs the libraries a target set lacks
type Driver struct {
	cache    *cache.MetadataCache
	provider syspkg.Provider
	log      *zerolog.Logger
}

// New creates a Driver
func New(c *cache.MetadataCache, provider syspkg.Provider, log *zerolog.Logger) *Driver {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Driver{cache: c, provider: provider, log: log}
}

// Missing returns the targets that are not installed
func (d *Driver) Missing(ctx context.Context, targets core.NameSet) (core.NameSet, error) {
	installed, err := d.cache.InstalledLibraries(ctx, false)
	if err != nil {
		return nil, err
	}
	return targets.Minus(installed), nil
}

// Ensure installs every missing target with a single batch request.
// Nothing is requested when all targets are already installed.
func (d *Driver) Ensure(ctx context.Context, targets core.NameSet) (*Result, error) {
	missing, err := d.Missing(ctx, targets)
	if err != nil {
		return nil, err
	}

	if missing.Len() == 0 {
		d.log.Info().Strs("targets", targets.Sorted()).Msg("all libraries already installed")
		return &Result{Status: AlreadySatisfied, Missing: missing}, nil
	}

	names := missing.Sorted()
	d.log.Info().Strs("libraries", names).Msg("installing missing libraries")

	if err := d.provider.Install(ctx, names); err != nil {
		// the batch may have partially succeeded
		d.cache.Refresh()
		return nil, fmt.Errorf("install %d libraries: %w", len(names), err)
	}

	d.cache.Refresh()
	d.log.Info().Int("count", len(names)).Msg("libraries installed")
	return &Result{Status: Installed, Missing: missing}, nil
}
