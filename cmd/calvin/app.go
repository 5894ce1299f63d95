package calvin

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/calvin/pkg/adapters"
	"github.com/arthur-debert/calvin/pkg/config"
	"github.com/arthur-debert/calvin/pkg/engine"
	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/events"
	"github.com/arthur-debert/calvin/pkg/filesystem"
	"github.com/arthur-debert/calvin/pkg/resolver"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/arthur-debert/calvin/pkg/ui"
	"github.com/arthur-debert/calvin/pkg/ui/prompt"
	"github.com/spf13/cobra"
)

// terminalIn and terminalOut report whether prompting is possible.
var (
	terminalIn  = func() bool { return ui.IsTerminal(os.Stdin) }
	terminalOut = func() bool { return ui.IsTerminal(os.Stdout) }
)

// app is what a command needs once flags and configuration are read.
type app struct {
	root     string
	cfg      *config.Config
	fs       types.FS
	adapters []adapters.Adapter
	out      ui.Renderer
	json     bool
}

func newApp(cmd *cobra.Command, g *globalOptions) (*app, error) {
	root := g.project
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, MsgErrProjectRoot)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, MsgErrProjectRoot)
	}

	overrides := map[string]any{}
	if len(g.targets) > 0 {
		overrides["targets.enabled"] = g.targets
	}
	cfg, err := config.LoadWithOverrides(root, overrides)
	if err != nil {
		return nil, err
	}
	enabled, err := adapters.Select(cfg.Targets.Enabled)
	if err != nil {
		return nil, err
	}

	format := ui.FormatAuto
	if g.json {
		format = ui.FormatJSON
	}
	out, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	return &app{
		root:     root,
		cfg:      cfg,
		fs:       filesystem.NewOS(),
		adapters: enabled,
		out:      out,
		json:     g.json,
	}, nil
}

// engine builds a sync engine for this project.
func (a *app) engine(r resolver.Resolver, dryRun bool, sink events.Sink) *engine.Engine {
	return engine.New(engine.Options{
		FS:              a.fs,
		Roots:           a.cfg.Roots(a.root),
		SourceDir:       a.cfg.SourceDir(a.root),
		LedgerPath:      a.cfg.LedgerPath(a.root),
		Adapters:        a.adapters,
		Resolver:        r,
		Events:          sink,
		ReadConcurrency: a.cfg.Sync.ReadConcurrency,
		DryRun:          dryRun,
	})
}

// resolver picks the conflict handling for value, falling back to the
// configured sync.conflicts when value is empty. "auto" prompts only when
// both ends are a terminal and output is not JSON.
func (a *app) resolver(value string) (resolver.Resolver, error) {
	if value == "" {
		value = a.cfg.Sync.Conflicts
	}
	if value == config.ConflictsAuto {
		value = string(resolver.FailFast)
		if !a.json && terminalIn() && terminalOut() {
			value = string(resolver.Interactive)
		}
	}

	d, err := resolver.ParseDisposition(value)
	if err != nil {
		return nil, err
	}
	if d == resolver.Interactive {
		if !terminalIn() {
			return nil, errors.New(errors.ErrInvalidInput, MsgErrNeedsTerminal).
				WithRemediation("pass --conflicts=fail-fast, skip-all or force-overwrite")
		}
		return resolver.NewInteractive(prompt.New()), nil
	}
	return resolver.NewPolicy(d)
}

// watchResolver picks the resolver for the watch loop, which runs unattended:
// "auto" means fail-fast and interactive resolution is refused.
func (a *app) watchResolver(value string) (resolver.Resolver, error) {
	if value == "" {
		value = a.cfg.Sync.Conflicts
	}
	if value == config.ConflictsAuto {
		value = string(resolver.FailFast)
	}

	d, err := resolver.ParseDisposition(value)
	if err != nil {
		return nil, err
	}
	if d == resolver.Interactive {
		return nil, errors.New(errors.ErrInvalidInput, MsgErrWatchInteractive).
			WithRemediation("run calvin deploy to resolve conflicts interactively, or pass --conflicts=fail-fast, skip-all or force-overwrite")
	}
	return resolver.NewPolicy(d)
}

// fileErrors turns per-file failures into the command's exit error.
func fileErrors(res *types.DeployResult) error {
	if res == nil || !res.HasErrors() {
		return nil
	}
	paths := make([]string, len(res.Errors))
	for i, fe := range res.Errors {
		paths[i] = fe.Key.String()
	}
	return errors.Newf(errors.ErrExecutionIO, MsgErrFilesFailed, len(res.Errors)).
		WithDetail(errors.DetailPaths, paths)
}
