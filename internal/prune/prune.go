package prune

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantmind-br/libmgr/internal/cache"
	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/resolver"
	"github.com/quantmind-br/libmgr/internal/syspkg"
	"github.com/rs/zerolog"
)

// Plan is the outcome of the safety computation for a set of targets
type Plan struct {
	Targets    core.NameSet
	Closure    core.NameSet // targets plus all transitive requirements
	Outside    core.NameSet // installed libraries unrelated to the targets
	Candidates core.NameSet // closure members with no direct dependent outside
	Kept       core.NameSet // closure members kept to satisfy a dependent
	Skipped    core.NameSet // deletable but protected by policy
	Unknown    core.NameSet // closure members that are not installed
	Delete     core.NameSet // final deletion set
	Passes     int          // protection passes until the deletion set settled
}

// Status is the result of handling one library of a plan
type Status string

const (
	StatusRemoved Status = "removed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusUnknown Status = "unknown"
)

// Outcome records what happened to one library during Execute
type Outcome struct {
	Library string
	Status  Status
	Err     error
}

// Report collects the outcomes of Execute in execution order
type Report struct {
	Outcomes []Outcome
}

// Removed returns the libraries that were uninstalled
func (r *Report) Removed() []string {
	return r.names(StatusRemoved)
}

// Failed returns the libraries whose uninstall request failed
func (r *Report) Failed() []string {
	return r.names(StatusFailed)
}

func (r *Report) names(status Status) []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status == status {
			names = append(names, o.Library)
		}
	}
	return names
}

// Err joins the errors of every failed uninstall request
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Engine computes and executes safe deletion sets
type Engine struct {
	cache    *cache.MetadataCache
	resolver *resolver.Resolver
	provider syspkg.Provider
	opts     core.PruneOptions
	log      *zerolog.Logger
}

// New creates an Engine. A nil Protected set falls back to the bootstrap library.
func New(c *cache.MetadataCache, provider syspkg.Provider, opts core.PruneOptions, log *zerolog.Logger) *Engine {
	if opts.Protected == nil {
		opts.Protected = core.NewNameSet(core.DefaultProtected)
	}
	if opts.Allowed == nil {
		opts.Allowed = core.NameSet{}
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Engine{
		cache:    c,
		resolver: resolver.New(c),
		provider: provider,
		opts:     opts,
		log:      log,
	}
}

// Plan computes which members of the targets' closure can be uninstalled
// without breaking any installed library outside that closure.
func (e *Engine) Plan(ctx context.Context, targets core.NameSet) (*Plan, error) {
	closure, err := e.resolver.Closure(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("build closure: %w", err)
	}

	installed, err := e.cache.InstalledLibraries(ctx, false)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Targets: targets.Clone(),
		Closure: closure,
		Outside: installed.Minus(closure),
		Skipped: core.NameSet{},
		Unknown: core.NameSet{},
	}

	records := make(map[string]core.LibraryRecord, closure.Len())
	candidates := core.NameSet{}
	for _, name := range closure.Sorted() {
		lookup, err := e.cache.DetailsOf(ctx, name)
		if err != nil {
			return nil, err
		}
		records[name] = lookup.Record
		if !lookup.Known {
			plan.Unknown.Add(name)
		}
		if !lookup.Record.RequiredBy.Intersects(plan.Outside) {
			candidates.Add(name)
		}
	}
	plan.Candidates = candidates.Clone()

	plan.Passes = e.protectRequirements(closure, candidates, records)

	// never request removal of something that is not installed
	candidates.Del(plan.Unknown.Sorted()...)

	for name := range e.opts.Protected {
		if candidates.Has(name) && !e.opts.Allowed.Has(name) {
			candidates.Del(name)
			plan.Skipped.Add(name)
		}
	}
	// a skipped library stays installed, so its requirements must stay too
	if plan.Skipped.Len() > 0 && !e.opts.SinglePass {
		plan.Passes += e.protectRequirements(closure, candidates, records)
	}

	plan.Delete = candidates
	plan.Kept = closure.Minus(candidates).Minus(plan.Skipped).Minus(plan.Unknown)

	e.log.Debug().
		Strs("targets", targets.Sorted()).
		Int("closure", closure.Len()).
		Int("outside", plan.Outside.Len()).
		Int("candidates", plan.Candidates.Len()).
		Int("passes", plan.Passes).
		Strs("delete", plan.Delete.Sorted()).
		Strs("kept", plan.Kept.Sorted()).
		Strs("skipped", plan.Skipped.Sorted()).
		Strs("unknown", plan.Unknown.Sorted()).
		Msg("prune plan computed")

	return plan, nil
}

// protectRequirements removes from candidates every direct requirement of a
// kept library. Unless SinglePass is set it repeats until no candidate is
// removed, so protection reaches the whole subtree of a kept library.
// It returns the number of passes made.
func (e *Engine) protectRequirements(closure, candidates core.NameSet, records map[string]core.LibraryRecord) int {
	passes := 0
	for {
		passes++
		removed := 0
		for kept := range closure.Minus(candidates) {
			removed += candidates.Del(records[kept].Requires.Sorted()...)
		}
		if removed == 0 || e.opts.SinglePass {
			return passes
		}
	}
}

// Execute uninstalls every library of plan.Delete with one independent
// request each. A failed request does not stop the others and nothing is
// rolled back. observe, when non-nil, is called for every outcome.
func (e *Engine) Execute(ctx context.Context, plan *Plan, observe func(Outcome)) *Report {
	report := &Report{}
	emit := func(o Outcome) {
		report.Outcomes = append(report.Outcomes, o)
		if observe != nil {
			observe(o)
		}
	}

	for _, name := range plan.Skipped.Sorted() {
		e.log.Info().Str("library", name).Msg("protected library skipped")
		emit(Outcome{Library: name, Status: StatusSkipped, Err: nil})
	}
	for _, name := range plan.Unknown.Sorted() {
		e.log.Warn().Str("library", name).Msg("library is not installed, nothing to remove")
		emit(Outcome{Library: name, Status: StatusUnknown})
	}

	for _, name := range plan.Delete.Sorted() {
		if err := ctx.Err(); err != nil {
			emit(Outcome{Library: name, Status: StatusFailed, Err: err})
			continue
		}

		if err := e.provider.Uninstall(ctx, name); err != nil {
			e.log.Error().Err(err).Str("library", name).Msg("uninstall failed")
			emit(Outcome{Library: name, Status: StatusFailed, Err: err})
			continue
		}

		e.log.Info().Str("library", name).Msg("library uninstalled")
		emit(Outcome{Library: name, Status: StatusRemoved})
	}

	if len(plan.Delete) > 0 {
		e.cache.Refresh()
	}
	return report
}

// Prune plans and executes in one step
func (e *Engine) Prune(ctx context.Context, targets core.NameSet, observe func(Outcome)) (*Plan, *Report, error) {
	plan, err := e.Plan(ctx, targets)
	if err != nil {
		return nil, nil, err
	}
	report := e.Execute(ctx, plan, observe)
	return plan, report, report.Err()
}
