package queryrows

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/paneledit/pkg/data"
	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/editor"
	"github.com/oakwood-commons/paneledit/pkg/query"
)

// RowState is what a row shows. It changes only through events.
type RowState struct {
	DataSource  datasource.DataSource
	Data        *data.PanelData
	Collapsed   bool
	ShowingHelp bool

	// loadedKey is the interpolated reference the data source was resolved for.
	loadedKey string
}

// Event is an input to a row.
type Event interface {
	isEvent()
}

// QueryChanged carries a new version of the row's query.
type QueryChanged struct{ Query *query.Query }

// DataReceived carries a new snapshot for the whole query set.
type DataReceived struct{ Data *data.PanelData }

// GroupDataSourceChanged carries the group's new data source reference.
type GroupDataSourceChanged struct{ Ref *datasource.Ref }

// ToggleCollapsed flips the collapsed flag.
type ToggleCollapsed struct{}

// ToggleHelp flips the help flag.
type ToggleHelp struct{}

func (QueryChanged) isEvent()           {}
func (DataReceived) isEvent()           {}
func (GroupDataSourceChanged) isEvent() {}
func (ToggleCollapsed) isEvent()        {}
func (ToggleHelp) isEvent()             {}

type rowInputs struct {
	query    *query.Query
	groupRef *datasource.Ref
	raw      *data.PanelData
}

// reduce applies ev. The filtered view is rebuilt on every snapshot and on
// every refId change.
func reduce(s RowState, in rowInputs, ev Event) (RowState, rowInputs) {
	switch e := ev.(type) {
	case QueryChanged:
		prev := in.query
		in.query = e.Query
		if prev == nil || prev.RefID != e.Query.RefID {
			s.Data = data.FilterPanelDataToQuery(in.raw, e.Query.RefID)
		}
	case DataReceived:
		in.raw = e.Data
		if in.query != nil {
			s.Data = data.FilterPanelDataToQuery(e.Data, in.query.RefID)
		}
	case GroupDataSourceChanged:
		in.groupRef = e.Ref
	case ToggleCollapsed:
		s.Collapsed = !s.Collapsed
	case ToggleHelp:
		s.ShowingHelp = !s.ShowingHelp
	}
	return s, in
}

// Row drives a single query editor row.
type Row struct {
	mu       sync.Mutex
	svc      datasource.Service
	vars     datasource.Interpolator
	renderer *editor.Renderer
	log      logr.Logger
	state    RowState
	in       rowInputs
}

// RowOption configures a Row.
type RowOption func(*Row)

// WithRowLogger sets the row logger.
func WithRowLogger(lgr logr.Logger) RowOption {
	return func(r *Row) {
		r.log = lgr
	}
}

// WithGroupRef sets the group data source used when the query has none.
func WithGroupRef(ref *datasource.Ref) RowOption {
	return func(r *Row) {
		r.in.groupRef = ref
	}
}

// WithRowInterpolator sets the interpolator used to compare references.
func WithRowInterpolator(vars datasource.Interpolator) RowOption {
	return func(r *Row) {
		r.vars = vars
	}
}

// WithRenderer sets the editor renderer.
func WithRenderer(rd *editor.Renderer) RowOption {
	return func(r *Row) {
		r.renderer = rd
	}
}

// NewRow creates a row for q.
func NewRow(q *query.Query, svc datasource.Service, opts ...RowOption) *Row {
	r := &Row{
		svc:  svc,
		vars: datasource.TemplateVars{},
		log:  logr.Discard(),
		in:   rowInputs{query: q},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.renderer == nil {
		r.renderer = editor.NewRenderer(editor.WithRendererLogger(r.log))
	}
	return r
}

// Dispatch applies ev to the row.
func (r *Row) Dispatch(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state, r.in = reduce(r.state, r.in, ev)
}

// Query returns the row's current query.
func (r *Row) Query() *query.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.in.query
}

// State returns a copy of the row state.
func (r *Row) State() RowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// NeedsResolve reports whether the resolved data source is missing or stale.
func (r *Row) NeedsResolve() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.DataSource == nil || r.state.loadedKey != r.keyLocked()
}

func (r *Row) refLocked() *datasource.Ref {
	if r.in.query != nil && r.in.query.Datasource != nil {
		return r.in.query.Datasource
	}
	return r.in.groupRef
}

func (r *Row) keyLocked() string {
	ref := r.refLocked()
	if ref == nil {
		return ""
	}
	return ref.Type + "|" + r.vars.Replace(ref.UID)
}

// Resolve loads the row's data source when the interpolated reference has
// changed since the last load. A failed load falls back to the default data
// source; only a failure of the fallback is returned. When the wanted
// reference moves while a load is in flight, the result is dropped and the
// load is retried.
func (r *Row) Resolve(ctx context.Context) error {
	for {
		r.mu.Lock()
		want := r.keyLocked()
		ref := r.refLocked()
		if r.state.DataSource != nil && r.state.loadedKey == want {
			r.mu.Unlock()
			return nil
		}
		refID := ""
		if r.in.query != nil {
			refID = r.in.query.RefID
		}
		r.mu.Unlock()

		ds, err := r.svc.Get(ctx, ref)
		if err != nil {
			r.log.Error(err, "failed to load data source, falling back to default", "refId", refID, "ref", ref.String())
			ds, err = r.svc.Get(ctx, nil)
			if err != nil {
				return fmt.Errorf("load default data source for query %s: %w", refID, err)
			}
		}

		r.mu.Lock()
		if r.keyLocked() != want {
			r.mu.Unlock()
			r.log.V(1).Info("discarding stale data source", "refId", refID, "uid", ds.InstanceSettings().UID)
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		r.state.DataSource = ds
		r.state.loadedKey = want
		r.mu.Unlock()
		r.log.V(1).Info("data source resolved", "refId", refID, "uid", ds.InstanceSettings().UID)
		return nil
	}
}

// Badges returns the warning and info badges, skipping empty ones.
func (r *Row) Badges() []*Badge {
	view := r.State().Data
	var out []*Badge
	for _, sev := range []data.Severity{data.SeverityWarning, data.SeverityInfo} {
		if b := NoticeBadge(view, sev); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Render draws the row's editor with the resolved data source.
func (r *Row) Render(ctx context.Context, queries []*query.Query, onChange func(*query.Query), onRun func()) (editor.Strategy, error) {
	r.mu.Lock()
	props := editor.Props{
		Query:      r.in.query,
		Queries:    queries,
		DataSource: r.state.DataSource,
		Data:       r.state.Data,
		OnChange:   onChange,
		OnRunQuery: onRun,
	}
	r.mu.Unlock()
	return r.renderer.Render(ctx, props)
}

// Close releases the row's editor.
func (r *Row) Close() {
	r.renderer.Close()
}
