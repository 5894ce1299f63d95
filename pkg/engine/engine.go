// Package engine runs one sync pass: load the ledger, read the live state,
// plan, resolve, execute and save. The deploy and diff commands and every
// watch cycle go through here.
package engine

import (
	"context"

	"github.com/arthur-debert/calvin/pkg/adapters"
	"github.com/arthur-debert/calvin/pkg/assets"
	"github.com/arthur-debert/calvin/pkg/events"
	"github.com/arthur-debert/calvin/pkg/executor"
	"github.com/arthur-debert/calvin/pkg/filesystem"
	"github.com/arthur-debert/calvin/pkg/lockfile"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/planner"
	"github.com/arthur-debert/calvin/pkg/provenance"
	"github.com/arthur-debert/calvin/pkg/resolver"
	"github.com/arthur-debert/calvin/pkg/targetstate"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures an Engine.
type Options struct {
	FS    types.FS
	Roots types.Roots
	// SourceDir is the absolute asset directory.
	SourceDir string
	// LedgerPath is the absolute lockfile path.
	LedgerPath      string
	Adapters        []adapters.Adapter
	Resolver        resolver.Resolver
	Events          events.Sink
	ReadConcurrency int
	DryRun          bool
}

// Engine runs sync passes. It holds no state between passes.
type Engine struct {
	opts     Options
	reader   *targetstate.Reader
	executor *executor.Executor
	events   events.Sink
	logger   zerolog.Logger
}

// New creates an engine. A nil resolver means fail-fast.
func New(opts Options) *Engine {
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Events == nil {
		opts.Events = events.Discard
	}
	if opts.Resolver == nil {
		opts.Resolver, _ = resolver.NewPolicy(resolver.FailFast)
	}
	return &Engine{
		opts:   opts,
		reader: targetstate.NewReader(opts.FS, opts.Roots, opts.ReadConcurrency),
		executor: executor.New(executor.Options{
			FS:         opts.FS,
			Roots:      opts.Roots,
			LedgerPath: opts.LedgerPath,
			Events:     opts.Events,
		}),
		events: opts.Events,
		logger: logging.GetLogger("engine"),
	}
}

// LoadAssets parses the source directory.
func (e *Engine) LoadAssets() ([]assets.Asset, error) {
	return assets.Load(e.opts.FS, e.opts.SourceDir)
}

// Deploy loads the source directory and syncs it.
func (e *Engine) Deploy(ctx context.Context) (*types.DeployResult, error) {
	list, err := e.LoadAssets()
	if err != nil {
		return nil, err
	}
	return e.Sync(ctx, list)
}

// Render turns assets into desired outputs through the enabled adapters.
func (e *Engine) Render(list []assets.Asset) ([]types.DesiredOutput, error) {
	return adapters.RenderAll(e.opts.Adapters, list)
}

// Sync renders list and syncs the result.
func (e *Engine) Sync(ctx context.Context, list []assets.Asset) (*types.DeployResult, error) {
	desired, err := e.Render(list)
	if err != nil {
		return nil, err
	}
	return e.SyncOutputs(ctx, desired)
}

// Plan builds the unresolved plan for desired without touching anything.
func (e *Engine) Plan(ctx context.Context, desired []types.DesiredOutput) (*types.Plan, *lockfile.Lockfile, error) {
	ledger, err := lockfile.Load(e.opts.FS, e.opts.LedgerPath)
	if err != nil {
		return nil, nil, err
	}

	ensured := make([]types.DesiredOutput, len(desired))
	for i, d := range desired {
		ensured[i] = provenance.Ensure(d)
	}

	live, err := e.reader.Read(ctx, planner.Keys(ensured, ledger))
	if err != nil {
		return nil, nil, err
	}
	marked, err := e.reader.ScanMarked(ctx, adapters.ScanRoots(e.opts.Adapters))
	if err != nil {
		return nil, nil, err
	}

	plan, err := planner.Plan(planner.Input{
		Desired: ensured,
		Ledger:  ledger,
		Live:    live,
		Marked:  marked,
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, ledger, nil
}

// SyncOutputs runs one full pass for desired.
func (e *Engine) SyncOutputs(ctx context.Context, desired []types.DesiredOutput) (*types.DeployResult, error) {
	done := logging.LogOperationStart(e.logger, "sync")
	defer done()

	plan, ledger, err := e.Plan(ctx, desired)
	if err != nil {
		e.complete(nil, err)
		return nil, err
	}

	counts := plan.Counts()
	e.events.Emit(events.Event{Kind: events.KindStart, DryRun: e.opts.DryRun, Counts: &counts})
	for _, c := range plan.Conflicts() {
		e.events.Emit(events.Event{Kind: events.KindConflict, Path: c.Key.String(), Reason: c.Reason})
	}

	resolved, err := e.opts.Resolver.Resolve(ctx, plan)
	if err != nil {
		result := &types.DeployResult{DryRun: e.opts.DryRun, Counts: counts, Plan: plan}
		e.complete(result, err)
		return result, err
	}

	if e.opts.DryRun {
		result := preview(resolved)
		e.complete(result, nil)
		return result, nil
	}

	result, _, err := e.executor.Execute(ctx, resolved, ledger)
	e.complete(result, err)
	return result, err
}

// preview describes what executing plan would do.
func preview(plan *types.Plan) *types.DeployResult {
	result := &types.DeployResult{DryRun: true, Counts: plan.Counts(), Plan: plan}
	for _, f := range plan.Files {
		switch f.Action {
		case types.ActionCreate, types.ActionUpdate:
			result.Written = append(result.Written, f.Key.String())
		case types.ActionDelete:
			result.Deleted = append(result.Deleted, f.Key.String())
		case types.ActionSkip:
			result.Skipped = append(result.Skipped, f.Key.String())
		}
	}
	return result
}

func (e *Engine) complete(result *types.DeployResult, err error) {
	ev := events.Event{Kind: events.KindComplete, DryRun: e.opts.DryRun}
	if result != nil {
		counts := result.Counts
		ev.Counts = &counts
	}
	if err != nil {
		ev.Error = err.Error()
	} else if result != nil && result.HasErrors() {
		ev.Error = result.Errors[0].Error()
	}
	e.events.Emit(ev)

	if err == nil && result != nil {
		e.logger.Info().
			Int("written", len(result.Written)).
			Int("deleted", len(result.Deleted)).
			Int("skipped", len(result.Skipped)).
			Int("errors", len(result.Errors)).
			Bool("dry_run", result.DryRun).
			Msg("sync complete")
	}
}
