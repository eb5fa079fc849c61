package resolver

import (
	"context"
	"fmt"

	"github.com/quantmind-br/libmgr/internal/core"
)

// RecordSource supplies library records; *cache.MetadataCache implements it
type RecordSource interface {
	Record(ctx context.Context, name string) (core.LibraryRecord, error)
}

// Order selects how the traversal frontier is consumed.
// The resulting set does not depend on it.
type Order int

const (
	Stack Order = iota // depth-first
	Queue              // breadth-first
)

// Resolver computes transitive closures over "requires" edges
type Resolver struct {
	source RecordSource
	order  Order
}

// New creates a Resolver using depth-first traversal
func New(source RecordSource) *Resolver {
	return &Resolver{source: source, order: Stack}
}

// WithOrder returns a copy of the resolver using the given traversal order
func (r *Resolver) WithOrder(order Order) *Resolver {
	return &Resolver{source: r.source, order: order}
}

// AllDependenciesOf returns every library reachable from lib through
// "requires" edges, excluding lib itself. Each library is expanded at most
// once, so cyclic metadata terminates.
func (r *Resolver) AllDependenciesOf(ctx context.Context, lib string) (core.NameSet, error) {
	visited := core.NameSet{}
	frontier := []string{lib}

	for len(frontier) > 0 {
		var current string
		if r.order == Queue {
			current, frontier = frontier[0], frontier[1:]
		} else {
			current, frontier = frontier[len(frontier)-1], frontier[:len(frontier)-1]
		}

		if visited.Has(current) {
			continue
		}
		visited.Add(current)

		rec, err := r.source.Record(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("resolve dependencies of %s: %w", lib, err)
		}
		for dep := range rec.Requires {
			if !visited.Has(dep) {
				frontier = append(frontier, dep)
			}
		}
	}

	visited.Del(lib)
	return visited, nil
}

// Closure returns the targets together with all of their transitive
// dependencies.
func (r *Resolver) Closure(ctx context.Context, targets core.NameSet) (core.NameSet, error) {
	closure := targets.Clone()
	for _, target := range targets.Sorted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		deps, err := r.AllDependenciesOf(ctx, target)
		if err != nil {
			return nil, err
		}
		for dep := range deps {
			closure.Add(dep)
		}
	}
	return closure, nil
}
