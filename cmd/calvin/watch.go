package calvin

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/calvin/pkg/events"
	"github.com/arthur-debert/calvin/pkg/resolver"
	"github.com/arthur-debert/calvin/pkg/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var conflicts string

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			r, err := a.watchResolver(conflicts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ignore, err := watch.NewMatcher(a.cfg.Watch.Ignore)
			if err != nil {
				return err
			}
			n, err := watch.NewNotifier(a.cfg.SourceDir(a.root), ignore)
			if err != nil {
				return err
			}
			defer func() { _ = n.Close() }()

			return a.watch(ctx, cmd, r, n, ignore, nil)
		},
	}

	cmd.Flags().StringVar(&conflicts, "conflicts", "", MsgFlagWatchConflicts)

	return cmd
}

// watch runs the initial pass, then the loop over src until ctx ends.
// clock is nil outside tests.
func (a *app) watch(ctx context.Context, cmd *cobra.Command, r resolver.Resolver, src watch.Source, ignore *watch.Matcher, clock watch.Clock) error {
	sourceDir := a.cfg.SourceDir(a.root)

	// With --json the event stream is the output; otherwise every pass
	// prints a report.
	var sink events.Sink = events.NewLogSink()
	if a.json {
		sink = events.Multi(sink, events.NewJSONSink(cmd.OutOrStdout()))
	}
	eng := a.engine(r, false, sink)

	cache := watch.NewCache(a.fs, sourceDir)
	if err := cache.Prime(); err != nil {
		return err
	}

	res, err := eng.Sync(ctx, cache.Assets())
	if err != nil {
		_ = a.out.RenderError(err)
	} else if !a.json {
		_ = a.out.RenderResult("deploy", res)
	}

	loop := watch.NewLoop(watch.LoopOptions{
		Cache:     cache,
		SourceDir: sourceDir,
		Source:    src,
		Sync:      eng.Sync,
		Debounce:  a.cfg.Watch.Debounce,
		Clock:     clock,
		Ignore:    ignore,
		OnResult: func(res watch.Result) {
			switch {
			case res.Err != nil:
				_ = a.out.RenderError(res.Err)
			case res.Deploy != nil && !a.json:
				_ = a.out.RenderResult("watch", res.Deploy)
			}
		},
	})

	if !a.json {
		_ = a.out.RenderMessage(fmt.Sprintf(MsgWatching, sourceDir))
	}
	if err := loop.Run(ctx); err != nil {
		return err
	}
	if !a.json {
		_ = a.out.RenderMessage(MsgWatchStopped)
	}
	return nil
}
