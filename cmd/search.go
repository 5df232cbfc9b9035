package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/paneledit/internal/limiter"
	"github.com/oakwood-commons/paneledit/pkg/fieldconfig"
	"github.com/oakwood-commons/paneledit/pkg/loader"
	"github.com/oakwood-commons/paneledit/pkg/options"
)

type searchView struct {
	Query      string              `json:"query"`
	TotalCount int                 `json:"totalCount"`
	Options    []*options.Item     `json:"options"`
	Overrides  []*options.Category `json:"overrides,omitempty"`
}

func newSearchCommand(a *app) *cobra.Command {
	var optionsFile, fieldConfigFile, q string
	c := &cobra.Command{
		Use:   "search",
		Short: "Search panel options and field overrides",
		Long: `Search panel options and field overrides.

Options are ranked by where the query matched: title first, then
description, then the title of the enclosing category. Override hits stay
grouped under their rule with the matcher first. --limit, --offset and
--tail apply to the option hits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var categories []*options.Category
			if err := loader.DecodeFile(optionsFile, &categories); err != nil {
				return err
			}
			var overrides []*options.Category
			if fieldConfigFile != "" {
				var fc fieldconfig.FieldConfigSource
				if err := loader.DecodeFile(fieldConfigFile, &fc); err != nil {
					return err
				}
				overrides = options.BuildOverrideCategories(fc, options.NewRegistry(categories))
			}

			res := options.NewSearchEngine(categories, overrides).Search(q)
			a.log(cmd).V(1).Info("searched options", "query", q, "optionHits", len(res.OptionHits), "overrideHits", len(res.OverrideHits))
			return a.write(cmd, searchView{
				Query:      q,
				TotalCount: res.TotalCount,
				Options:    limiter.Slice(a.window(), res.OptionHits),
				Overrides:  res.OverrideHits,
			}, false)
		},
	}
	c.Flags().StringVar(&optionsFile, "options", "", "option categories file")
	c.Flags().StringVar(&fieldConfigFile, "fieldconfig", "", "field config whose overrides are searched too")
	c.Flags().StringVar(&q, "query", "", "search text, a case-insensitive regular expression")
	_ = c.MarkFlagRequired("options")
	_ = c.MarkFlagRequired("query")
	return c
}
