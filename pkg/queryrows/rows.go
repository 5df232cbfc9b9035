// Package queryrows controls the list of query editor rows of a panel: per
// row data source resolution and views, and the operations that produce the
// next version of the query set.
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
	"github.com/oakwood-commons/paneledit/pkg/stream"
	"github.com/oakwood-commons/paneledit/pkg/telemetry"
)

// Callbacks are invoked after the query set changed. Any may be nil.
type Callbacks struct {
	OnQueriesChange    func([]*query.Query)
	OnRunQueries       func()
	OnDataSourceChange func(*datasource.InstanceSettings)
	OnQueryCopied      func(*query.Query)
	OnQueryRemoved     func(*query.Query)
	OnQueryToggled     func(q *query.Query, hidden bool)
}

// Rows owns a query set. Every operation builds a new slice; queries are
// never modified in place and rows are identified by query pointer, not refId.
type Rows struct {
	mu         sync.Mutex
	queries    []*query.Query
	settings   *datasource.InstanceSettings
	svc        datasource.Service
	vars       datasource.Interpolator
	reporter   telemetry.Reporter
	loader     editor.LegacyLoader
	cb         Callbacks
	log        logr.Logger
	rows       map[*query.Query]*Row
	lastData   *data.PanelData
	generation uint64
}

// Option configures Rows.
type Option func(*Rows)

// WithLogger sets the logger.
func WithLogger(lgr logr.Logger) Option {
	return func(r *Rows) {
		r.log = lgr
	}
}

// WithReporter sets the telemetry reporter.
func WithReporter(rep telemetry.Reporter) Option {
	return func(r *Rows) {
		r.reporter = rep
	}
}

// WithCallbacks sets the change callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(r *Rows) {
		r.cb = cb
	}
}

// WithInterpolator sets the template variable interpolator.
func WithInterpolator(vars datasource.Interpolator) Option {
	return func(r *Rows) {
		r.vars = vars
	}
}

// WithLegacyLoader sets the loader for legacy editors.
func WithLegacyLoader(l editor.LegacyLoader) Option {
	return func(r *Rows) {
		r.loader = l
	}
}

// New creates the controller for queries using the group data source settings.
func New(svc datasource.Service, settings *datasource.InstanceSettings, queries []*query.Query, opts ...Option) *Rows {
	r := &Rows{
		svc:      svc,
		settings: settings,
		vars:     datasource.TemplateVars{},
		reporter: telemetry.Nop{},
		log:      logr.Discard(),
		rows:     map[*query.Query]*Row{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.commitLocked(queries)
	return r
}

// Queries returns the current query set.
func (r *Rows) Queries() []*query.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries
}

// DataSource returns the group data source settings.
func (r *Rows) DataSource() *datasource.InstanceSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// Row returns the row for q, or nil.
func (r *Rows) Row(q *query.Query) *Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[q]
}

// Rows returns the rows in query order.
func (r *Rows) Rows() []*Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Row, 0, len(r.queries))
	for _, q := range r.queries {
		out = append(out, r.rows[q])
	}
	return out
}

// Subscribe feeds every snapshot of src to the rows.
func (r *Rows) Subscribe(src stream.Source) stream.Subscription {
	return src.Subscribe(r.handleData)
}

func (r *Rows) handleData(d *data.PanelData) {
	r.mu.Lock()
	r.lastData = d
	rows := make([]*Row, 0, len(r.rows))
	for _, q := range r.queries {
		rows = append(rows, r.rows[q])
	}
	r.mu.Unlock()
	for _, row := range rows {
		row.Dispatch(DataReceived{Data: d})
	}
}

// Resolve resolves the data source of every row that needs it.
func (r *Rows) Resolve(ctx context.Context) error {
	for _, row := range r.Rows() {
		if err := row.Resolve(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases all row editors.
func (r *Rows) Close() {
	for _, row := range r.Rows() {
		row.Close()
	}
}

// RunQueries asks the owner to execute the query set.
func (r *Rows) RunQueries() {
	if r.cb.OnRunQueries != nil {
		r.cb.OnRunQueries()
	}
}

// commitLocked installs next and keeps the row map in step: rows of removed
// queries are closed and new queries get fresh rows. Every commit starts a new
// generation, so a group data source change in flight is dropped.
func (r *Rows) commitLocked(next []*query.Query) {
	r.generation++
	keep := make(map[*query.Query]struct{}, len(next))
	for _, q := range next {
		keep[q] = struct{}{}
		if _, ok := r.rows[q]; ok {
			continue
		}
		row := NewRow(q, r.svc,
			WithGroupRef(r.settings.Ref()),
			WithRowInterpolator(r.vars),
			WithRowLogger(r.log.WithValues("refId", q.RefID)),
			WithRenderer(editor.NewRenderer(editor.WithLegacyLoader(r.loader), editor.WithRendererLogger(r.log))),
		)
		if r.lastData != nil {
			row.Dispatch(DataReceived{Data: r.lastData})
		}
		r.rows[q] = row
	}
	for q, row := range r.rows {
		if _, ok := keep[q]; !ok {
			row.Close()
			delete(r.rows, q)
		}
	}
	r.queries = next
}

// moveRowLocked hands the row of prev over to next so the row keeps its
// resolved data source and UI flags across edits.
func (r *Rows) moveRowLocked(prev, next *query.Query) {
	row, ok := r.rows[prev]
	if !ok {
		return
	}
	delete(r.rows, prev)
	r.rows[next] = row
	row.Dispatch(QueryChanged{Query: next})
}

func (r *Rows) indexLocked(q *query.Query) int {
	for i, item := range r.queries {
		if item == q {
			return i
		}
	}
	return -1
}

func (r *Rows) notifyQueries(next []*query.Query) {
	if r.cb.OnQueriesChange != nil {
		r.cb.OnQueriesChange(next)
	}
}

func (r *Rows) replaceLocked(prev, next *query.Query) ([]*query.Query, error) {
	idx := r.indexLocked(prev)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", prev.RefID, ErrQueryNotFound)
	}
	out := make([]*query.Query, len(r.queries))
	copy(out, r.queries)
	out[idx] = next
	r.moveRowLocked(prev, next)
	r.commitLocked(out)
	return out, nil
}

// ChangeQuery replaces q with updated.
func (r *Rows) ChangeQuery(q, updated *query.Query) error {
	r.mu.Lock()
	next, err := r.replaceLocked(q, updated)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.notifyQueries(next)
	return nil
}

// RenameRefID changes the refId of q. An empty or taken refId is rejected
// and q keeps its old refId.
func (r *Rows) RenameRefID(q *query.Query, refID string) (*query.Query, error) {
	r.mu.Lock()
	if err := query.ValidateRefID(r.queries, q, refID); err != nil {
		r.mu.Unlock()
		return q, err
	}
	renamed := *q
	renamed.RefID = refID
	next, err := r.replaceLocked(q, &renamed)
	r.mu.Unlock()
	if err != nil {
		return q, err
	}
	r.notifyQueries(next)
	return &renamed, nil
}

// AddQuery appends q, or a new default query when q is nil. The query gets
// the next free refId when its own is empty or taken, and the group data
// source when it has none and the group is not mixed. A new default query in
// a mixed group targets the system default data source.
func (r *Rows) AddQuery(ctx context.Context, q *query.Query) (*query.Query, error) {
	settings := r.DataSource()
	if q == nil {
		ref := settings.Ref()
		if settings.IsMixed() {
			ref = nil
		}
		ds, err := r.svc.Get(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("add query: %w", err)
		}
		q = query.DefaultQuery(ds, "")
	} else {
		q = q.Clone()
	}

	r.mu.Lock()
	if query.ValidateRefID(r.queries, nil, q.RefID) != nil {
		q.RefID = query.NextRefID(r.queries)
	}
	if q.Datasource == nil && !r.settings.IsMixed() {
		q.Datasource = r.settings.Ref()
	}
	next := make([]*query.Query, len(r.queries), len(r.queries)+1)
	copy(next, r.queries)
	next = append(next, q)
	r.commitLocked(next)
	r.mu.Unlock()

	r.reporter.Report(telemetry.EventQueryAdded, map[string]interface{}{"refId": q.RefID, "numberOfQueries": len(next)})
	r.notifyQueries(next)
	return q, nil
}

// Duplicate appends a deep copy of q, refId included.
func (r *Rows) Duplicate(q *query.Query) (*query.Query, error) {
	r.mu.Lock()
	if r.indexLocked(q) < 0 {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", q.RefID, ErrQueryNotFound)
	}
	c := q.Clone()
	next := make([]*query.Query, len(r.queries), len(r.queries)+1)
	copy(next, r.queries)
	next = append(next, c)
	r.commitLocked(next)
	r.mu.Unlock()

	r.reporter.Report(telemetry.EventQueryDuplicated, map[string]interface{}{"refId": q.RefID})
	r.notifyQueries(next)
	if r.cb.OnQueryCopied != nil {
		r.cb.OnQueryCopied(c)
	}
	return c, nil
}

// Remove drops q, matched by identity, so a duplicated refId removes only one.
func (r *Rows) Remove(q *query.Query) error {
	r.mu.Lock()
	if r.indexLocked(q) < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", q.RefID, ErrQueryNotFound)
	}
	next := make([]*query.Query, 0, len(r.queries)-1)
	for _, item := range r.queries {
		if item != q {
			next = append(next, item)
		}
	}
	r.commitLocked(next)
	r.mu.Unlock()

	r.reporter.Report(telemetry.EventQueryRemoved, map[string]interface{}{"refId": q.RefID})
	r.notifyQueries(next)
	if r.cb.OnQueryRemoved != nil {
		r.cb.OnQueryRemoved(q)
	}
	return nil
}

// ToggleHide flips the hide flag of q and re-runs the query set.
func (r *Rows) ToggleHide(q *query.Query) (*query.Query, error) {
	toggled := *q
	toggled.Hide = !q.Hide

	r.mu.Lock()
	next, err := r.replaceLocked(q, &toggled)
	r.mu.Unlock()
	if err != nil {
		return q, err
	}

	r.notifyQueries(next)
	r.RunQueries()
	if r.cb.OnQueryToggled != nil {
		r.cb.OnQueryToggled(&toggled, toggled.Hide)
	}
	return &toggled, nil
}
