package query

import (
	"github.com/oakwood-commons/paneledit/pkg/datasource"
)

// UpdateQueries reconciles queries with a newly selected data source.
//
// When the data source type changes (including the first assignment, where
// prior is nil) queries are not portable: switching to mixed keeps them as
// they are, anything else replaces them with a single empty query "A". When
// the type is unchanged every non-expression query is retargeted to next,
// unless next is mixed.
//
// The input slice and its queries are never modified; retargeted queries are
// new values and untouched ones keep their identity.
func UpdateQueries(next *datasource.InstanceSettings, queries []*Query, prior *datasource.InstanceSettings) []*Query {
	if prior == nil || prior.Type != next.Type {
		if next.IsMixed() {
			return queries
		}
		return []*Query{{RefID: "A", Datasource: next.Ref()}}
	}

	out := make([]*Query, len(queries))
	for i, q := range queries {
		if datasource.IsExpressionReference(q.Datasource) || next.IsMixed() {
			out[i] = q
			continue
		}
		out[i] = q.WithDatasource(next.Ref())
	}
	return out
}

// DefaultQuery builds a new query for ds with the given refId, seeded from
// the data source's default query template when it provides one.
func DefaultQuery(ds datasource.DataSource, refID string) *Query {
	q := &Query{RefID: refID}
	if ds == nil {
		return q
	}
	q.Datasource = ds.InstanceSettings().Ref()
	if p, ok := ds.(datasource.DefaultQueryProvider); ok {
		tmpl := p.DefaultQuery()
		if len(tmpl) > 0 {
			q.Fields = make(map[string]interface{}, len(tmpl))
			for k, v := range tmpl {
				q.Fields[k] = v
			}
		}
	}
	return q
}
