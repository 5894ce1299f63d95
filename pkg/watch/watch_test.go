package watch

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/calvin/pkg/assets"
	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/testutil"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const srcDir = "/project/.promptpack"

// manualClock hands out timers that only fire when the test says so.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	c       chan time.Time
	stopped bool
}

func (t *manualTimer) C() <-chan time.Time { return t.c }
func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) NewTimer(time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: make(chan time.Time, 1)}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fire triggers the most recent timer.
func (c *manualClock) fire() {
	c.mu.Lock()
	t := c.timers[len(c.timers)-1]
	c.mu.Unlock()
	t.c <- time.Now()
}

type fakeSource struct {
	events chan Event
	errs   chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan Event, 16), errs: make(chan error, 1)}
}

func (f *fakeSource) Events() <-chan Event { return f.events }
func (f *fakeSource) Errors() <-chan error { return f.errs }
func (f *fakeSource) Close() error         { return nil }

func (f *fakeSource) touch(rel string) {
	f.events <- Event{Path: filepath.Join(srcDir, rel), Op: "WRITE"}
}

type harness struct {
	fs      types.FS
	clock   *manualClock
	source  *fakeSource
	loop    *Loop
	results chan Result

	mu    sync.Mutex
	calls [][]assets.Asset
	gate  chan struct{}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fs:      testutil.NewTestFS(),
		clock:   &manualClock{},
		source:  newFakeSource(),
		results: make(chan Result, 8),
	}
	testutil.WriteFile(t, h.fs, srcDir+"/a.md", "a v1")

	cache := NewCache(h.fs, srcDir)
	require.NoError(t, cache.Prime())

	ignore, err := NewMatcher([]string{"**/*.swp"})
	require.NoError(t, err)

	h.loop = NewLoop(LoopOptions{
		Cache:     cache,
		SourceDir: srcDir,
		Source:    h.source,
		Clock:     h.clock,
		Ignore:    ignore,
		Sync: func(_ context.Context, list []assets.Asset) (*types.DeployResult, error) {
			h.mu.Lock()
			h.calls = append(h.calls, list)
			gate := h.gate
			h.mu.Unlock()
			if gate != nil {
				<-gate
			}
			return &types.DeployResult{}, nil
		},
		OnResult: func(r Result) { h.results <- r },
	})
	return h
}

func (h *harness) start(t *testing.T) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.loop.Run(ctx) }()
	return cancel, errc
}

func (h *harness) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func waitState(t *testing.T, l *Loop, s State) {
	t.Helper()
	require.Eventually(t, func() bool { return l.State() == s }, time.Second, time.Millisecond, "want state %s", s)
}

func TestRapidEventsCollapseIntoOnePass(t *testing.T) {
	h := newHarness(t)
	cancel, errc := h.start(t)
	defer cancel()

	testutil.WriteFile(t, h.fs, srcDir+"/a.md", "a v2")
	h.source.touch("a.md")
	h.source.touch("a.md")
	h.source.touch("a.md")

	// Every event restarts the debounce window.
	require.Eventually(t, func() bool { return h.clock.count() == 3 }, time.Second, time.Millisecond)
	waitState(t, h.loop, StateDebouncing)
	h.clock.fire()

	res := <-h.results
	assert.Equal(t, []string{"a.md"}, res.Paths)
	assert.Equal(t, []string{"a.md"}, res.Change.Parsed)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, h.callCount())
	waitState(t, h.loop, StateIdle)

	cancel()
	require.NoError(t, <-errc)
	assert.Equal(t, StateStopped, h.loop.State())
}

func TestUnchangedDigestSkipsPass(t *testing.T) {
	h := newHarness(t)
	cancel, _ := h.start(t)
	defer cancel()

	h.source.touch("a.md")
	require.Eventually(t, func() bool { return h.clock.count() == 1 }, time.Second, time.Millisecond)
	h.clock.fire()

	waitState(t, h.loop, StateIdle)
	assert.Equal(t, 0, h.callCount())
}

func TestIgnoredAndForeignEventsDoNotArm(t *testing.T) {
	h := newHarness(t)
	cancel, _ := h.start(t)
	defer cancel()

	h.source.touch(".a.md.swp")
	h.source.events <- Event{Path: "/elsewhere/x.md", Op: "WRITE"}
	h.source.touch("../calvin.lock")

	// Give the loop a moment to consume everything.
	require.Eventually(t, func() bool { return len(h.source.events) == 0 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, h.clock.count())
	assert.Equal(t, StateIdle, h.loop.State())
}

func TestEventsDuringProcessingStartNewCycle(t *testing.T) {
	h := newHarness(t)
	h.gate = make(chan struct{})
	cancel, _ := h.start(t)
	defer cancel()

	testutil.WriteFile(t, h.fs, srcDir+"/a.md", "a v2")
	h.source.touch("a.md")
	require.Eventually(t, func() bool { return h.clock.count() == 1 }, time.Second, time.Millisecond)
	h.clock.fire()
	waitState(t, h.loop, StateProcessing)

	testutil.WriteFile(t, h.fs, srcDir+"/b.md", "b")
	h.source.touch("b.md")
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StateProcessing, h.loop.State(), "events do not interrupt a pass")
	assert.Equal(t, 1, h.clock.count(), "no timer while processing")

	close(h.gate)
	<-h.results
	waitState(t, h.loop, StateDebouncing)
	require.Equal(t, 2, h.clock.count())
	h.clock.fire()

	res := <-h.results
	assert.Equal(t, []string{"b.md"}, res.Paths)
	assert.Equal(t, 2, h.callCount())
	h.mu.Lock()
	assert.Len(t, h.calls[1], 2)
	h.mu.Unlock()
}

func TestStopLetsInFlightPassFinish(t *testing.T) {
	h := newHarness(t)
	h.gate = make(chan struct{})
	cancel, errc := h.start(t)

	testutil.WriteFile(t, h.fs, srcDir+"/a.md", "a v2")
	h.source.touch("a.md")
	require.Eventually(t, func() bool { return h.clock.count() == 1 }, time.Second, time.Millisecond)
	h.clock.fire()
	waitState(t, h.loop, StateProcessing)

	cancel()
	select {
	case <-errc:
		t.Fatal("loop returned before the pass finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(h.gate)
	require.NoError(t, <-errc)
	assert.Len(t, h.results, 1)
	assert.Equal(t, StateStopped, h.loop.State())
}

func TestStopWhileDebouncingCancelsTimer(t *testing.T) {
	h := newHarness(t)
	cancel, errc := h.start(t)

	h.source.touch("a.md")
	require.Eventually(t, func() bool { return h.clock.count() == 1 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-errc)

	assert.True(t, h.clock.timers[0].stopped)
	assert.Equal(t, 0, h.callCount())
}

func TestBackendErrorStopsLoop(t *testing.T) {
	h := newHarness(t)
	cancel, errc := h.start(t)
	defer cancel()

	h.source.errs <- stderrors.New("queue overflow")
	err := <-errc
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotifyBackend))
	assert.Equal(t, StateStopped, h.loop.State())
}

func TestCacheApply(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteFile(t, fsys, srcDir+"/a.md", "a")
	testutil.WriteFile(t, fsys, srcDir+"/dir/b.md", "b")
	testutil.WriteFile(t, fsys, srcDir+"/dir/c.md", "c")

	cache := NewCache(fsys, srcDir)
	require.NoError(t, cache.Prime())
	assert.Equal(t, 3, cache.Len())

	// Same digest, nothing reparsed.
	ch := cache.Apply([]string{"a.md"})
	assert.False(t, ch.Dirty())
	assert.Equal(t, []string{"a.md"}, ch.Unchanged)

	// New file.
	testutil.WriteFile(t, fsys, srcDir+"/new.md", "n")
	ch = cache.Apply([]string{"new.md"})
	assert.Equal(t, []string{"new.md"}, ch.Parsed)

	// Directory removal drops everything below it.
	require.NoError(t, fsys.Remove(srcDir+"/dir/b.md"))
	require.NoError(t, fsys.Remove(srcDir+"/dir/c.md"))
	require.NoError(t, fsys.Remove(srcDir+"/dir"))
	ch = cache.Apply([]string{"dir"})
	assert.Equal(t, []string{"dir/b.md", "dir/c.md"}, ch.Removed)

	var ids []string
	for _, a := range cache.Assets() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "new"}, ids)
}

func TestCacheKeepsPreviousOnParseError(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteFile(t, fsys, srcDir+"/a.md", "---\nkind: rule\n---\nok")

	cache := NewCache(fsys, srcDir)
	require.NoError(t, cache.Prime())

	testutil.WriteFile(t, fsys, srcDir+"/a.md", "---\nkind: nonsense\n---\nbad")
	ch := cache.Apply([]string{"a.md"})
	assert.False(t, ch.Dirty())
	require.Error(t, ch.Err())

	e, ok := cache.Get("a.md")
	require.True(t, ok)
	assert.Equal(t, assets.KindRule, e.Asset.Kind)
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher([]string{".git/**", "**/*.swp", "drafts"})
	require.NoError(t, err)

	assert.True(t, m.Match(".git/HEAD"))
	assert.True(t, m.Match("x/y/.z.swp"))
	assert.True(t, m.Match("drafts/a.md"))
	assert.False(t, m.Match("a.md"))
	assert.False(t, m.Match("nested/drafts.md"))

	_, err = NewMatcher([]string{"[unclosed"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestNotifierDeliversEvents(t *testing.T) {
	root := t.TempDir()
	n, err := NewNotifier(root, nil)
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("x"), 0644))

	select {
	case ev := <-n.Events():
		assert.Equal(t, filepath.Join(root, "a.md"), ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
	}
}

func TestMatcherTopLevelDoubleStar(t *testing.T) {
	m, err := NewMatcher([]string{"**/*.swp"})
	require.NoError(t, err)
	assert.True(t, m.Match(".a.md.swp"))
}
