package datasource

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a reference matches no configured data source.
var ErrNotFound = errors.New("data source not found")

// DataSource is a loaded data source instance. Optional capabilities (editors,
// default queries, query import) are discovered with type assertions.
type DataSource interface {
	InstanceSettings() *InstanceSettings
}

// DefaultQueryProvider is implemented by data sources that supply a template
// for new queries.
type DefaultQueryProvider interface {
	DefaultQuery() map[string]interface{}
}

// Service resolves references to data sources. Get with a nil ref returns the
// system default.
type Service interface {
	Get(ctx context.Context, ref *Ref) (DataSource, error)
	GetInstanceSettings(ref *Ref) *InstanceSettings
}

// Interpolator replaces template variables in a string.
type Interpolator interface {
	Replace(s string) string
	ContainsTemplate(s string) bool
}

// Instance is a DataSource backed only by its settings.
type Instance struct {
	Settings *InstanceSettings
}

// InstanceSettings implements DataSource.
func (i Instance) InstanceSettings() *InstanceSettings {
	return i.Settings
}
