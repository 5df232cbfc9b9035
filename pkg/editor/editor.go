// Package editor picks and drives the query editor of a data source. Native
// editors are rendered directly; legacy editors are opaque components built
// by a LegacyLoader and torn down whenever the data source changes.
package editor

import (
	"context"
	"errors"

	"github.com/oakwood-commons/paneledit/pkg/data"
	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/query"
)

// ErrNoLoader is returned when a legacy editor is needed but no loader is configured.
var ErrNoLoader = errors.New("no legacy editor loader configured")

// Strategy is the way a query editor is rendered.
type Strategy string

const (
	StrategyNative      Strategy = "native"
	StrategyLegacy      Strategy = "legacy"
	StrategyUnsupported Strategy = "unsupported"
)

// Props are handed to an editor on every render.
type Props struct {
	Query      *query.Query
	Queries    []*query.Query
	DataSource datasource.DataSource
	Data       *data.PanelData
	OnChange   func(*query.Query)
	OnRunQuery func()
}

// Component is a native query editor.
type Component interface {
	Render(ctx context.Context, props Props) error
}

// NativeProvider is implemented by data sources exporting a native editor.
type NativeProvider interface {
	QueryEditor() Component
}

// LegacyDescriptor declares a legacy editor for the loader to build.
type LegacyDescriptor struct {
	Name     string
	Template string
	Bindings map[string]interface{}
}

// LegacyProvider is implemented by data sources only exposing a legacy editor.
type LegacyProvider interface {
	LegacyQueryEditor() LegacyDescriptor
}

// LegacyComponent is a live legacy editor instance.
type LegacyComponent interface {
	Update(ctx context.Context, props Props) error
	Destroy()
}

// LegacyLoader builds legacy editor instances.
type LegacyLoader interface {
	Load(ctx context.Context, desc LegacyDescriptor, props Props) (LegacyComponent, error)
}

// Select returns the strategy for ds. Native editors win over legacy ones.
func Select(ds datasource.DataSource) Strategy {
	if ds == nil {
		return StrategyUnsupported
	}
	if p, ok := ds.(NativeProvider); ok && p.QueryEditor() != nil {
		return StrategyNative
	}
	if _, ok := ds.(LegacyProvider); ok {
		return StrategyLegacy
	}
	return StrategyUnsupported
}
