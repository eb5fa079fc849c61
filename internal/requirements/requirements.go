package requirements

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/fsops"
	"github.com/quantmind-br/libmgr/internal/resolver"
	"github.com/quantmind-br/libmgr/internal/security"
	"github.com/spf13/afero"
)

// Entry is one line of a requirements file
type Entry struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// String renders the entry as a pinned requirement, or the bare name when
// no usable version is known
func (e Entry) String() string {
	if e.Version == "" || security.ValidateVersion(e.Version) != nil {
		return e.Name
	}
	return e.Name + "==" + e.Version
}

// Build returns one entry per target, sorted by name. With transitive set
// every dependency of the targets is listed as well.
func Build(ctx context.Context, c *cache.MetadataCache, targets core.NameSet, transitive bool) ([]Entry, error) {
	names := targets
	if transitive {
		closure, err := resolver.New(c).Closure(ctx, targets)
		if err != nil {
			return nil, err
		}
		names = closure
	}

	entries := make([]Entry, 0, names.Len())
	for _, name := range names.Sorted() {
		lookup, err := c.DetailsOf(ctx, name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Version: lookup.Record.Version})
	}
	return entries, nil
}

// Render formats entries as requirements file content. header lines, if
// any, are emitted first as comments.
func Render(entries []Entry, header ...string) string {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for _, line := range header {
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, e := range sorted {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Write atomically replaces path with the rendered entries
func Write(fs afero.Fs, path string, entries []Entry, header ...string) error {
	if err := security.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := fsops.WriteFileAtomic(fs, path, []byte(Render(entries, header...)), 0644); err != nil {
		return fmt.Errorf("write requirements: %w", err)
	}
	return nil
}
