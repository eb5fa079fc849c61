package cache

import (
	"context"
	"fmt"

	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/syspkg"
	"github.com/rs/zerolog"
)

// MetadataCache memoizes package manager queries for the lifetime of a run.
// Cached values are replaced wholesale on refresh and never mutated in place.
// It is not safe for concurrent use.
type MetadataCache struct {
	provider  syspkg.Provider
	log       *zerolog.Logger
	installed core.NameSet
	records   map[string]core.Lookup
}

// New creates an empty MetadataCache backed by provider
func New(provider syspkg.Provider, log *zerolog.Logger) *MetadataCache {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &MetadataCache{
		provider: provider,
		log:      log,
		records:  make(map[string]core.Lookup),
	}
}

// InstalledLibraries returns the installed set, fetching it when the cache is
// empty or forceRefresh is set. The returned set is a copy.
func (c *MetadataCache) InstalledLibraries(ctx context.Context, forceRefresh bool) (core.NameSet, error) {
	if len(c.installed) == 0 || forceRefresh {
		names, err := c.provider.ListInstalled(ctx)
		if err != nil {
			return nil, fmt.Errorf("list installed libraries: %w", err)
		}
		c.installed = core.NewNameSet(names...)

		c.log.Debug().
			Str("provider", c.provider.Name()).
			Int("count", len(c.installed)).
			Bool("forced", forceRefresh).
			Msg("installed libraries fetched")
	}
	return c.installed.Clone(), nil
}

// IsInstalled reports whether name is part of the installed set
func (c *MetadataCache) IsInstalled(ctx context.Context, name string) (bool, error) {
	if _, err := c.InstalledLibraries(ctx, false); err != nil {
		return false, err
	}
	return c.installed.Has(name), nil
}

// DetailsOf returns the record of name. Libraries outside the installed set
// are not queried: they yield an empty record tagged as unknown, and that
// answer is cached like any other.
func (c *MetadataCache) DetailsOf(ctx context.Context, name string) (core.Lookup, error) {
	if lookup, ok := c.records[name]; ok {
		return cloneLookup(lookup), nil
	}

	installed, err := c.IsInstalled(ctx, name)
	if err != nil {
		return core.Lookup{}, err
	}

	lookup := core.Lookup{Name: name, Record: core.EmptyRecord(name)}
	if installed {
		rec, err := c.provider.Show(ctx, name)
		if err != nil {
			return core.Lookup{}, fmt.Errorf("library details: %w", err)
		}
		lookup.Record = *rec
		lookup.Record.Name = name
		lookup.Known = true

		c.log.Debug().
			Str("library", name).
			Str("version", rec.Version).
			Int("requires", rec.Requires.Len()).
			Int("required_by", rec.RequiredBy.Len()).
			Msg("library details fetched")
	} else {
		c.log.Debug().Str("library", name).Msg("library not installed, using empty record")
	}

	c.records[name] = lookup
	return cloneLookup(lookup), nil
}

// Record returns only the record of name, empty for unknown libraries
func (c *MetadataCache) Record(ctx context.Context, name string) (core.LibraryRecord, error) {
	lookup, err := c.DetailsOf(ctx, name)
	if err != nil {
		return core.LibraryRecord{}, err
	}
	return lookup.Record, nil
}

// Refresh drops every cached value; the next access queries the provider again
func (c *MetadataCache) Refresh() {
	c.installed = nil
	c.records = make(map[string]core.Lookup)
	c.log.Debug().Msg("metadata cache cleared")
}

func cloneLookup(l core.Lookup) core.Lookup {
	l.Record = l.Record.Clone()
	return l
}
