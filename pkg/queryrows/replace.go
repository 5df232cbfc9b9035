package queryrows

import (
	"context"
	"fmt"

	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/query"
	"github.com/oakwood-commons/paneledit/pkg/telemetry"
)

// Replace swaps the content of q for replacement (for example a query picked
// from a library) while keeping q's refId. Queries are not reconciled against
// the data source: instead the group follows the queries, switching to the
// replacement's data source when it is now the only one in use, or to mixed
// when several are.
func (r *Rows) Replace(q, replacement *query.Query) (*query.Query, error) {
	next := replacement.Clone()
	next.RefID = q.RefID

	r.mu.Lock()
	out, err := r.replaceLocked(q, next)
	if err != nil {
		r.mu.Unlock()
		return q, err
	}
	target := r.groupTargetLocked(out)
	if target != nil {
		r.setGroupLocked(target)
	}
	r.mu.Unlock()

	r.reporter.Report(telemetry.EventQueryReplaced, map[string]interface{}{"refId": next.RefID})
	r.notifyQueries(out)
	if target != nil {
		r.log.Info("group data source follows replaced query", "uid", target.UID)
		if r.cb.OnDataSourceChange != nil {
			r.cb.OnDataSourceChange(target)
		}
	}
	return next, nil
}

// groupTargetLocked returns the settings the group should switch to for
// queries, or nil when it should stay.
func (r *Rows) groupTargetLocked(queries []*query.Query) *datasource.InstanceSettings {
	groupUID := ""
	if r.settings != nil {
		groupUID = r.settings.UID
	}
	var uids []string
	seen := map[string]struct{}{}
	for _, q := range queries {
		if datasource.IsExpressionReference(q.Datasource) {
			continue
		}
		uid := groupUID
		if q.Datasource != nil && q.Datasource.UID != "" {
			uid = q.Datasource.UID
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		uids = append(uids, uid)
	}

	switch {
	case len(uids) > 1:
		if r.settings.IsMixed() {
			return nil
		}
		return r.svc.GetInstanceSettings(&datasource.MixedRef)
	case len(uids) == 1 && uids[0] != groupUID:
		return r.svc.GetInstanceSettings(&datasource.Ref{UID: uids[0]})
	}
	return nil
}

func (r *Rows) setGroupLocked(settings *datasource.InstanceSettings) {
	r.settings = settings
	for _, row := range r.rows {
		row.Dispatch(GroupDataSourceChanged{Ref: settings.Ref()})
	}
}

// ChangeRowDataSource points q at settings. Only allowed while the group is
// mixed. Between data sources of the same type only the reference changes;
// otherwise the new data source's default query is merged under q's fields.
func (r *Rows) ChangeRowDataSource(ctx context.Context, q *query.Query, settings *datasource.InstanceSettings) (*query.Query, error) {
	if !r.DataSource().IsMixed() {
		return q, ErrNotMixed
	}
	ref := settings.Ref()

	var updated *query.Query
	prev := r.svc.GetInstanceSettings(q.Datasource)
	if q.Datasource != nil && prev != nil && prev.Type == settings.Type {
		updated = q.WithDatasource(ref)
	} else {
		ds, err := r.svc.Get(ctx, ref)
		if err != nil {
			return q, fmt.Errorf("change data source of query %s: %w", q.RefID, err)
		}
		tmpl := query.DefaultQuery(ds, q.RefID)
		fields := make(map[string]interface{}, len(tmpl.Fields)+len(q.Fields))
		for k, v := range tmpl.Fields {
			fields[k] = v
		}
		for k, v := range q.Fields {
			fields[k] = v
		}
		updated = &query.Query{RefID: q.RefID, Hide: q.Hide, Datasource: ref, Fields: fields}
	}

	r.mu.Lock()
	next, err := r.replaceLocked(q, updated)
	r.mu.Unlock()
	if err != nil {
		return q, err
	}
	r.notifyQueries(next)
	return updated, nil
}
