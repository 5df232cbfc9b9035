package queryrows

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/query"
)

// ChangeDataSource switches the group to the data source at ref and
// reconciles the query set. When the new data source can import queries of
// the previous type, every query is converted concurrently; a single failure
// fails the whole change and nothing is committed. A change that completes
// after the query set was committed again (by a newer change or any other
// edit) is dropped with ErrSuperseded.
func (r *Rows) ChangeDataSource(ctx context.Context, ref *datasource.Ref) error {
	ds, err := r.svc.Get(ctx, ref)
	if err != nil {
		return fmt.Errorf("change data source to %s: %w", ref, err)
	}
	next := ds.InstanceSettings()

	r.mu.Lock()
	r.generation++
	gen := r.generation
	prior := r.settings
	queries := r.queries
	r.mu.Unlock()

	var out []*query.Query
	imp, canImport := query.ImporterFor(ds, prior)
	if canImport && prior.Type != next.Type && !next.IsMixed() {
		out, err = importQueries(ctx, imp, queries, prior, next)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			out = []*query.Query{query.DefaultQuery(ds, "A")}
		}
	} else {
		out = query.UpdateQueries(next, queries, prior)
	}

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		r.log.V(1).Info("dropping superseded data source change", "uid", next.UID)
		return ErrSuperseded
	}
	for i, q := range out {
		if i < len(queries) && queries[i] != q && queries[i].RefID == q.RefID {
			r.moveRowLocked(queries[i], q)
		}
	}
	r.setGroupLocked(next)
	r.commitLocked(out)
	r.mu.Unlock()

	r.log.Info("group data source changed", "uid", next.UID, "type", next.Type, "queries", len(out))
	if r.cb.OnDataSourceChange != nil {
		r.cb.OnDataSourceChange(next)
	}
	r.notifyQueries(out)
	return nil
}

func importQueries(ctx context.Context, imp query.Importer, queries []*query.Query, prior, next *datasource.InstanceSettings) ([]*query.Query, error) {
	out := make([]*query.Query, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		if datasource.IsExpressionReference(q.Datasource) {
			out[i] = q
			continue
		}
		g.Go(func() error {
			converted, err := imp.ImportQuery(gctx, q, prior)
			if err != nil {
				return &BulkChangeError{Name: next.Name, UID: next.UID, RefID: q.RefID, Err: err}
			}
			converted = converted.WithDatasource(next.Ref())
			if converted.RefID == "" {
				converted.RefID = q.RefID
			}
			out[i] = converted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
