package watch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/calvin/pkg/assets"
	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/rs/zerolog"
)

// State is where the loop is in its cycle.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateProcessing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateProcessing:
		return "processing"
	default:
		return "stopped"
	}
}

// DefaultDebounce is used when no window is configured.
const DefaultDebounce = 250 * time.Millisecond

// Event is one raw notification for an absolute path.
type Event struct {
	Path string
	Op   string
}

// Source delivers notifications. Closing Events ends the loop with a
// backend error.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// SyncFunc runs one pass over the full asset set.
type SyncFunc func(ctx context.Context, list []assets.Asset) (*types.DeployResult, error)

// Result reports one processing pass.
type Result struct {
	// Paths are the coalesced source paths that triggered the pass.
	Paths  []string
	Change Change
	Deploy *types.DeployResult
	Err    error
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	Cache *Cache
	// SourceDir is the absolute directory event paths are relative to.
	SourceDir string
	Source    Source
	Sync      SyncFunc
	Debounce  time.Duration
	Clock     Clock
	Ignore    *Matcher
	// OnResult is called on the loop goroutine after every pass.
	OnResult func(Result)
}

// Loop is the debounce state machine.
type Loop struct {
	opts   LoopOptions
	logger zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewLoop creates a loop in the idle state.
func NewLoop(opts LoopOptions) *Loop {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	return &Loop{
		opts:   opts,
		logger: logging.GetLogger("watch"),
		state:  StateIdle,
	}
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) transition(to State) {
	l.mu.Lock()
	from := l.state
	l.state = to
	l.mu.Unlock()
	if from != to {
		l.logger.Trace().Str("from", from.String()).Str("to", to.String()).Msg("state")
	}
}

type passDone struct {
	result Result
}

// Run drives the loop until ctx is cancelled or the source fails. A pass
// in flight when ctx is cancelled is allowed to finish.
func (l *Loop) Run(ctx context.Context) error {
	defer l.transition(StateStopped)

	var (
		pending = map[string]struct{}{}
		timer   Timer
		timerC  <-chan time.Time
		done    chan passDone
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, timerC = nil, nil
	}
	defer stopTimer()

	arm := func() {
		stopTimer()
		timer = l.opts.Clock.NewTimer(l.opts.Debounce)
		timerC = timer.C()
		l.transition(StateDebouncing)
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			if done != nil {
				l.logger.Info().Msg("waiting for the running pass to finish")
				res := <-done
				l.report(res.result)
			}
			return nil

		case err, ok := <-l.opts.Source.Errors():
			if !ok {
				continue
			}
			return errors.Wrap(err, errors.ErrNotifyBackend, "file watcher failed")

		case ev, ok := <-l.opts.Source.Events():
			if !ok {
				return errors.New(errors.ErrNotifyBackend, "file watcher closed unexpectedly")
			}
			rel, keep := l.relevant(ev)
			if !keep {
				continue
			}
			pending[rel] = struct{}{}
			// While a pass runs, events only accumulate; the timer is armed
			// once it completes.
			if done == nil {
				arm()
			}

		case <-timerC:
			timer, timerC = nil, nil
			paths := drain(pending)
			change := l.opts.Cache.Apply(paths)
			if !change.Dirty() {
				if err := change.Err(); err != nil {
					l.report(Result{Paths: paths, Change: change, Err: err})
				} else {
					l.logger.Debug().Strs("paths", paths).Msg("no asset changed")
				}
				l.transition(StateIdle)
				continue
			}
			list := l.opts.Cache.Assets()
			done = make(chan passDone, 1)
			l.transition(StateProcessing)
			go l.process(ctx, paths, change, list, done)

		case res := <-done:
			done = nil
			l.report(res.result)
			if len(pending) > 0 {
				arm()
			} else {
				l.transition(StateIdle)
			}
		}
	}
}

func (l *Loop) process(ctx context.Context, paths []string, change Change, list []assets.Asset, done chan<- passDone) {
	// The pass must not be cut short by shutdown.
	passCtx := context.WithoutCancel(ctx)
	res := Result{Paths: paths, Change: change}
	res.Deploy, res.Err = l.opts.Sync(passCtx, list)
	done <- passDone{result: res}
}

func (l *Loop) report(res Result) {
	ev := l.logger.Info()
	if res.Err != nil {
		ev = l.logger.Error().Err(res.Err)
	}
	ev.Strs("paths", res.Paths).Int("parsed", len(res.Change.Parsed)).Int("removed", len(res.Change.Removed)).Msg("watch pass complete")
	if l.opts.OnResult != nil {
		l.opts.OnResult(res)
	}
}

// relevant maps an event to a source-relative slash path, dropping events
// outside the source dir and ignored paths.
func (l *Loop) relevant(ev Event) (string, bool) {
	rel, err := filepath.Rel(l.opts.SourceDir, ev.Path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	if l.opts.Ignore.Match(rel) {
		l.logger.Trace().Str("path", rel).Msg("ignored")
		return "", false
	}
	return rel, true
}

func drain(pending map[string]struct{}) []string {
	out := make([]string, 0, len(pending))
	for p := range pending {
		out = append(out, p)
		delete(pending, p)
	}
	sort.Strings(out)
	return out
}
