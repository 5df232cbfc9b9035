package query

import (
	"context"

	"github.com/oakwood-commons/paneledit/pkg/datasource"
)

// Importer is implemented by data sources able to convert a query written
// for another data source type into one of their own.
type Importer interface {
	CanImportFrom(from *datasource.InstanceSettings) bool
	ImportQuery(ctx context.Context, q *Query, from *datasource.InstanceSettings) (*Query, error)
}

// ImporterFor returns ds as an Importer when it can import queries written
// for prior.
func ImporterFor(ds datasource.DataSource, prior *datasource.InstanceSettings) (Importer, bool) {
	if prior == nil {
		return nil, false
	}
	imp, ok := ds.(Importer)
	if !ok || !imp.CanImportFrom(prior) {
		return nil, false
	}
	return imp, true
}
