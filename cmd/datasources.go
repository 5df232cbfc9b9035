package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/paneledit/internal/config"
	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/editor"
	"github.com/oakwood-commons/paneledit/pkg/query"
)

// legacyTemplate is the partial every legacy editor is declared with.
const legacyTemplate = "partials/query.editor.html"

// configDataSource is a data source declared in the configuration file. It
// seeds new queries from default_query and imports queries written for the
// types listed in importable_from.
type configDataSource struct {
	datasource.Instance
	cfg config.DataSourceConfig
}

func (d *configDataSource) DefaultQuery() map[string]interface{} {
	return d.cfg.DefaultQuery
}

func (d *configDataSource) CanImportFrom(from *datasource.InstanceSettings) bool {
	return from != nil && slices.Contains(d.cfg.ImportableFrom, from.Type)
}

// ImportQuery keeps the opaque fields of q and fills in the keys of the
// default query it lacks.
func (d *configDataSource) ImportQuery(_ context.Context, q *query.Query, from *datasource.InstanceSettings) (*query.Query, error) {
	if !d.CanImportFrom(from) {
		return nil, fmt.Errorf("%s cannot import %s queries", d.cfg.Type, from.Type)
	}
	out := q.Clone()
	if out.Fields == nil {
		out.Fields = map[string]interface{}{}
	}
	for k, v := range d.cfg.DefaultQuery {
		if _, ok := out.Fields[k]; !ok {
			out.Fields[k] = v
		}
	}
	out.Datasource = d.Settings.Ref()
	return out, nil
}

type nativeDataSource struct {
	*configDataSource
}

func (d nativeDataSource) QueryEditor() editor.Component {
	return fieldsEditor{}
}

type legacyDataSource struct {
	*configDataSource
}

func (d legacyDataSource) LegacyQueryEditor() editor.LegacyDescriptor {
	return editor.LegacyDescriptor{
		Name:     d.cfg.Type,
		Template: legacyTemplate,
		Bindings: map[string]interface{}{"uid": d.cfg.UID},
	}
}

// fieldsEditor is the native editor of configured data sources. It only
// checks that the query can be edited.
type fieldsEditor struct{}

func (fieldsEditor) Render(_ context.Context, props editor.Props) error {
	if props.Query == nil {
		return errors.New("no query to edit")
	}
	if strings.TrimSpace(props.Query.RefID) == "" {
		return query.ErrEmptyRefID
	}
	return nil
}

// templateLoader builds legacy editors from their descriptor.
type templateLoader struct {
	log logr.Logger
}

func (l templateLoader) Load(_ context.Context, desc editor.LegacyDescriptor, props editor.Props) (editor.LegacyComponent, error) {
	if desc.Template == "" {
		return nil, fmt.Errorf("legacy editor %s has no template", desc.Name)
	}
	l.log.V(1).Info("legacy editor loaded", "editor", desc.Name, "refId", refIDOf(props.Query))
	return &templateEditor{desc: desc, log: l.log}, nil
}

type templateEditor struct {
	desc editor.LegacyDescriptor
	log  logr.Logger
}

func (e *templateEditor) Update(_ context.Context, props editor.Props) error {
	e.log.V(1).Info("legacy editor updated", "editor", e.desc.Name, "refId", refIDOf(props.Query))
	return nil
}

func (e *templateEditor) Destroy() {
	e.log.V(1).Info("legacy editor destroyed", "editor", e.desc.Name)
}

func refIDOf(q *query.Query) string {
	if q == nil {
		return ""
	}
	return q.RefID
}

// newDataSource builds the data source for c according to its editor mode.
func newDataSource(c config.DataSourceConfig) datasource.DataSource {
	base := &configDataSource{
		Instance: datasource.Instance{Settings: &datasource.InstanceSettings{
			UID:  c.UID,
			Type: c.Type,
			Name: c.DisplayName(),
			Meta: datasource.PluginMeta{ID: c.Type, Name: c.DisplayName(), Mixed: c.Mixed},
		}},
		cfg: c,
	}
	switch c.Editor {
	case config.EditorLegacy:
		return legacyDataSource{base}
	case config.EditorNone:
		return base
	default:
		return nativeDataSource{base}
	}
}

// buildRegistry registers every configured data source on top of the
// built-in mixed and expression ones.
func buildRegistry(cfg *config.Config, lgr logr.Logger) (*datasource.Registry, error) {
	reg := datasource.NewRegistry(
		datasource.WithVariables(datasource.TemplateVars(cfg.Variables)),
		datasource.WithRegistryLogger(lgr),
	)
	for _, c := range cfg.DataSources {
		reg.Add(newDataSource(c))
	}
	if cfg.DefaultDataSource != "" {
		if err := reg.SetDefault(cfg.DefaultDataSource); err != nil {
			return nil, err
		}
	} else if len(cfg.DataSources) > 0 {
		if err := reg.SetDefault(cfg.DataSources[0].UID); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// parseRef turns a command line reference into a Ref. "mixed" names the
// mixed pseudo data source.
func parseRef(s string) *datasource.Ref {
	if strings.EqualFold(s, datasource.MixedType) {
		ref := datasource.MixedRef
		return &ref
	}
	return &datasource.Ref{UID: s}
}

// lookupSettings resolves s to configured settings.
func lookupSettings(reg *datasource.Registry, s string) (*datasource.InstanceSettings, error) {
	settings := reg.GetInstanceSettings(parseRef(s))
	if settings == nil {
		return nil, fmt.Errorf("%s: %w", s, datasource.ErrNotFound)
	}
	return settings, nil
}
