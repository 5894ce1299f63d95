// Package events carries progress out of the engine. The engine only
// knows the Sink interface; the CLI picks the implementation.
package events

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/rs/zerolog"
)

// Kind names an event type.
type Kind string

const (
	KindStart    Kind = "start"
	KindAction   Kind = "action"
	KindConflict Kind = "conflict"
	KindComplete Kind = "complete"
)

// Event is one notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind   Kind                 `json:"event"`
	Path   string               `json:"path,omitempty"`
	Action types.Action         `json:"action,omitempty"`
	Reason types.ConflictReason `json:"reason,omitempty"`
	Error  string               `json:"error,omitempty"`
	DryRun bool                 `json:"dry_run,omitempty"`
	// Counts is set on start (planned) and complete (executed).
	Counts *types.PlanCounts `json:"counts,omitempty"`
}

// Sink receives events. Implementations must be safe to call from the
// goroutine running the engine; the engine never emits concurrently.
type Sink interface {
	Emit(Event)
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// Multi fans an event out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// LogSink writes events to the component logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink logs under the "events" component.
func NewLogSink() *LogSink {
	return &LogSink{logger: logging.GetLogger("events")}
}

func (s *LogSink) Emit(e Event) {
	var ev *zerolog.Event
	switch {
	case e.Error != "":
		ev = s.logger.Error().Str("error", e.Error)
	case e.Kind == KindConflict:
		ev = s.logger.Warn()
	case e.Kind == KindAction:
		ev = s.logger.Debug()
	default:
		ev = s.logger.Info()
	}
	if e.Path != "" {
		ev = ev.Str("path", e.Path)
	}
	if e.Action != "" {
		ev = ev.Str("action", string(e.Action))
	}
	if e.Reason != "" {
		ev = ev.Str("reason", string(e.Reason))
	}
	if e.Counts != nil {
		ev = ev.Int("create", e.Counts.Create).
			Int("update", e.Counts.Update).
			Int("delete", e.Counts.Delete).
			Int("skip", e.Counts.Skip).
			Int("conflict", e.Counts.Conflict)
	}
	ev.Bool("dry_run", e.DryRun).Msg(string(e.Kind))
}

// JSONSink writes one JSON object per line, for --json consumers.
type JSONSink struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONSink writes to out.
func NewJSONSink(out io.Writer) *JSONSink {
	return &JSONSink{encoder: json.NewEncoder(out)}
}

func (s *JSONSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A broken pipe on the consumer side must not fail the sync.
	_ = s.encoder.Encode(e)
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded kinds in order.
func (r *Recorder) Kinds() []Kind {
	events := r.Events()
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
