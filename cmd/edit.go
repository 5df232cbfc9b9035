package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/paneledit/internal/optpath"
	"github.com/oakwood-commons/paneledit/pkg/data"
	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/fieldconfig"
	"github.com/oakwood-commons/paneledit/pkg/loader"
	"github.com/oakwood-commons/paneledit/pkg/query"
)

func newFilterCommand(a *app) *cobra.Command {
	var dataFile, refID string
	c := &cobra.Command{
		Use:   "filter",
		Short: "Narrow a panel data snapshot to the results of one query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pd data.PanelData
			if err := loader.DecodeFile(dataFile, &pd); err != nil {
				return err
			}
			view := data.FilterPanelDataToQuery(&pd, refID)
			a.log(cmd).V(1).Info("filtered panel data", "refId", refID, "series", len(pd.Series), "kept", len(view.Series))
			return a.emit(cmd, view)
		},
	}
	c.Flags().StringVar(&dataFile, "data", "", "panel data file")
	c.Flags().StringVar(&refID, "ref", "", "refId of the query")
	_ = c.MarkFlagRequired("data")
	_ = c.MarkFlagRequired("ref")
	return c
}

func newReconcileCommand(a *app) *cobra.Command {
	var queriesFile, to, from string
	c := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a query set with a newly selected data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queries, err := loadQueries(queriesFile)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(a.cfg, a.log(cmd))
			if err != nil {
				return err
			}
			next, err := lookupSettings(reg, to)
			if err != nil {
				return err
			}
			var prior *datasource.InstanceSettings
			if from != "" {
				if prior, err = lookupSettings(reg, from); err != nil {
					return err
				}
			}
			return a.emit(cmd, query.UpdateQueries(next, queries, prior))
		},
	}
	c.Flags().StringVar(&queriesFile, "queries", "", "query set file")
	c.Flags().StringVar(&to, "to", "", "uid or name of the new data source")
	c.Flags().StringVar(&from, "from", "", "uid or name of the previous data source (empty for a first assignment)")
	_ = c.MarkFlagRequired("queries")
	_ = c.MarkFlagRequired("to")
	return c
}

func newSetCommand(a *app) *cobra.Command {
	var file, path, value string
	var unset bool
	c := &cobra.Command{
		Use:   "set",
		Short: "Set or remove the value at a path of a document without modifying the input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := loadObject(file)
			if err != nil {
				return err
			}
			var out map[string]interface{}
			if unset {
				out, err = optpath.Omit(root, path)
			} else {
				var v interface{}
				if v, err = parseValue(value); err != nil {
					return err
				}
				out, err = optpath.Set(root, path, v)
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, out)
		},
	}
	c.Flags().StringVar(&file, "file", "", "document to update")
	c.Flags().StringVar(&path, "path", "", "path such as a.b[0].c or a[\"x.y\"]")
	c.Flags().StringVar(&value, "value", "", "new value, parsed as YAML")
	c.Flags().BoolVar(&unset, "unset", false, "remove the value at path")
	c.MarkFlagsMutuallyExclusive("value", "unset")
	c.MarkFlagsOneRequired("value", "unset")
	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("path")
	return c
}

func newDefaultsCommand(a *app) *cobra.Command {
	var file, path, value string
	var custom bool
	c := &cobra.Command{
		Use:   "defaults",
		Short: "Set or clear a field config default; an empty value removes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fc fieldconfig.FieldConfigSource
			if err := loader.DecodeFile(file, &fc); err != nil {
				return err
			}
			var v interface{}
			if cmd.Flags().Changed("value") {
				var err error
				if v, err = parseValue(value); err != nil {
					return err
				}
			}
			out, err := fieldconfig.UpdateDefaultFieldConfigValue(fc, path, v, custom)
			if err != nil {
				return err
			}
			return a.emit(cmd, out)
		},
	}
	c.Flags().StringVar(&file, "file", "", "field config file")
	c.Flags().StringVar(&path, "path", "", "property path")
	c.Flags().StringVar(&value, "value", "", "new value, parsed as YAML; omit to remove")
	c.Flags().BoolVar(&custom, "custom", false, "the property is a plugin custom property")
	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("path")
	return c
}

func loadQueries(path string) ([]*query.Query, error) {
	var queries []*query.Query
	if err := loader.DecodeFile(path, &queries); err != nil {
		return nil, err
	}
	return queries, nil
}

func loadObject(path string) (map[string]interface{}, error) {
	root, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	m, ok := root.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected an object at the root, got %T", path, root)
	}
	return m, nil
}

// parseValue reads s as a YAML scalar or collection. An empty string stays
// an empty string.
func parseValue(s string) (interface{}, error) {
	if s == "" {
		return "", nil
	}
	var v interface{}
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("value %q: %w", s, err)
	}
	return v, nil
}
