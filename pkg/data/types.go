// Package data models the result snapshots a panel receives for its query
// set and derives per-query views from them.
package data

import "time"

// LoadingState is the lifecycle state of a snapshot.
type LoadingState string

const (
	NotStarted LoadingState = "NotStarted"
	Loading    LoadingState = "Loading"
	Streaming  LoadingState = "Streaming"
	Done       LoadingState = "Done"
	Error      LoadingState = "Error"
)

// Severity of a frame notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is an advisory message attached to a frame.
type Notice struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Text     string   `json:"text" yaml:"text"`
}

// FrameMeta carries frame metadata.
type FrameMeta struct {
	Notices []Notice `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// Field is one column of a frame.
type Field struct {
	Name   string        `json:"name" yaml:"name"`
	Type   string        `json:"type,omitempty" yaml:"type,omitempty"`
	Values []interface{} `json:"values,omitempty" yaml:"values,omitempty"`
}

// Frame is one result series, tagged with the refId of the query that produced it.
type Frame struct {
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	RefID  string     `json:"refId,omitempty" yaml:"refId,omitempty"`
	Meta   *FrameMeta `json:"meta,omitempty" yaml:"meta,omitempty"`
	Fields []Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// QueryError is an error reported for a query. RefID may be empty for errors
// that are not attributed to a query.
type QueryError struct {
	RefID   string `json:"refId,omitempty" yaml:"refId,omitempty"`
	Message string `json:"message" yaml:"message"`
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
}

func (e *QueryError) Error() string {
	if e.RefID == "" {
		return e.Message
	}
	return e.RefID + ": " + e.Message
}

// TimeRange is the absolute range of a request.
type TimeRange struct {
	From time.Time `json:"from" yaml:"from"`
	To   time.Time `json:"to" yaml:"to"`
}

// Request describes the request a snapshot answers.
type Request struct {
	RequestID string   `json:"requestId,omitempty" yaml:"requestId,omitempty"`
	Interval  string   `json:"interval,omitempty" yaml:"interval,omitempty"`
	Targets   []string `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// PanelData is the latest full response for a query set. Each emission
// replaces the previous one.
//
// Errors distinguishes nil (absent) from empty: a present but empty list still
// counts as "errors reported" when no series came back at all.
type PanelData struct {
	State     LoadingState `json:"state" yaml:"state"`
	Series    []Frame      `json:"series" yaml:"series"`
	Error     *QueryError  `json:"error,omitempty" yaml:"error,omitempty"`
	Errors    []QueryError `json:"errors,omitempty" yaml:"errors,omitempty"`
	TimeRange TimeRange    `json:"timeRange" yaml:"timeRange"`
	Request   *Request     `json:"request,omitempty" yaml:"request,omitempty"`
}
