package events

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)

	sink.Emit(Event{Kind: KindStart, Counts: &types.PlanCounts{Create: 1}})
	sink.Emit(Event{Kind: KindAction, Path: "project:a.md", Action: types.ActionCreate})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"event":"start","counts":{"create":1,"update":0,"skip":0,"delete":0,"conflict":0}}`, lines[0])
	assert.JSONEq(t, `{"event":"action","path":"project:a.md","action":"create"}`, lines[1])
}

func TestMultiAndRecorder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	sink := Multi(a, Discard, b)

	sink.Emit(Event{Kind: KindStart})
	sink.Emit(Event{Kind: KindComplete})

	assert.Equal(t, []Kind{KindStart, KindComplete}, a.Kinds())
	assert.Equal(t, a.Events(), b.Events())

	a.Reset()
	assert.Empty(t, a.Events())
}

func TestLogSinkDoesNotPanic(t *testing.T) {
	sink := NewLogSink()
	assert.NotPanics(t, func() {
		sink.Emit(Event{Kind: KindConflict, Path: "project:a.md", Reason: types.ConflictExternallyModified})
		sink.Emit(Event{Kind: KindAction, Path: "project:a.md", Action: types.ActionUpdate, Error: "disk full"})
		sink.Emit(Event{Kind: KindComplete, Counts: &types.PlanCounts{}})
	})
}
