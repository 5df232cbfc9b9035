// Package telemetry reports user interaction events. Reporting is fire and
// forget: callers never see failures.
package telemetry

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// Interaction event names.
const (
	EventReorderStarted  = "query_row_reorder_started"
	EventReorderCanceled = "query_row_reorder_canceled"
	EventReorderEnded    = "query_row_reorder_ended"
	EventQueryAdded      = "query_editor_add_query"
	EventQueryRemoved    = "query_editor_remove_query"
	EventQueryDuplicated = "query_editor_duplicate_query"
	EventQueryReplaced   = "query_editor_replace_query"
)

// Reporter receives interaction events.
type Reporter interface {
	Report(event string, payload map[string]interface{})
}

// Nop discards events.
type Nop struct{}

// Report implements Reporter.
func (Nop) Report(string, map[string]interface{}) {}

// LogReporter writes events to a logger, tagged with a per-reporter session id.
type LogReporter struct {
	log     logr.Logger
	session string
}

// NewLogReporter creates a LogReporter with a fresh session id.
func NewLogReporter(lgr logr.Logger) *LogReporter {
	return &LogReporter{log: lgr, session: uuid.NewString()}
}

// Session returns the session id attached to every event.
func (r *LogReporter) Session() string {
	return r.session
}

// Report implements Reporter.
func (r *LogReporter) Report(event string, payload map[string]interface{}) {
	kv := make([]interface{}, 0, 2*len(payload)+4)
	kv = append(kv, "event", event, "session", r.session)
	for k, v := range payload {
		kv = append(kv, k, v)
	}
	r.log.Info("interaction", kv...)
}

// Event is a recorded interaction.
type Event struct {
	Name    string
	Payload map[string]interface{}
}

// Recorder keeps every reported event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Report implements Reporter.
func (r *Recorder) Report(event string, payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: event, Payload: payload})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}

// Multi fans events out to several reporters.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(event string, payload map[string]interface{}) {
	for _, r := range m {
		r.Report(event, payload)
	}
}
