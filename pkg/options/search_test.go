package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/paneledit/pkg/fieldconfig"
)

func sampleCategories() []*Category {
	return []*Category{
		{
			ID:    "panel",
			Title: "Panel options",
			Items: []*Item{
				{ID: "title", Title: "Title"},
				{ID: "description", Title: "Description", Description: "Shown in the panel header tooltip"},
			},
		},
		{
			ID:    "standard",
			Title: "Standard options",
			Items: []*Item{
				{ID: "unit", Title: "Unit"},
				{ID: "min", Title: "Min", Description: "Leave empty to calculate based on all values"},
			},
			Categories: []*Category{
				{
					ID:    "thresholds",
					Title: "Thresholds",
					Items: []*Item{
						{ID: "thresholds", Title: "Threshold steps", Description: "Colors applied to values"},
						{ID: "thresholdsStyle", Title: "Show thresholds"},
					},
				},
			},
		},
	}
}

func titles(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestSearchRanking(t *testing.T) {
	e := NewSearchEngine(sampleCategories(), nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title", query: "unit", want: []string{"Unit"}},
		{name: "case insensitive", query: "TITLE", want: []string{"Title"}},
		{name: "descriptions in tree order", query: "values", want: []string{"Min", "Threshold steps"}},
		{name: "description", query: "tooltip", want: []string{"Description"}},
		{name: "title then category", query: "thresholds", want: []string{"Show thresholds", "Threshold steps"}},
		{name: "category only", query: "standard", want: []string{"Unit", "Min"}},
		{name: "regexp", query: "^m", want: []string{"Min"}},
		{name: "invalid regexp is literal", query: "min(", want: nil},
		{name: "no match", query: "zzz", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Search(tt.query)
			if tt.want == nil {
				assert.Empty(t, res.OptionHits)
			} else {
				assert.Equal(t, tt.want, titles(res.OptionHits))
			}
			assert.Equal(t, 6, res.TotalCount)
		})
	}
}

func TestSearchDescriptionRankTwo(t *testing.T) {
	cats := []*Category{{
		ID:    "c",
		Title: "Legend",
		Items: []*Item{
			{ID: "mode", Title: "Mode", Description: "legend display mode"},
			{ID: "legend", Title: "Legend placement"},
			{ID: "width", Title: "Width"},
		},
	}}
	res := NewSearchEngine(cats, nil).Search("legend")
	assert.Equal(t, []string{"Legend placement", "Mode", "Width"}, titles(res.OptionHits))
}

func overrideCategories() []*Category {
	fc := fieldconfig.FieldConfigSource{
		Defaults: map[string]interface{}{},
		Overrides: []fieldconfig.ConfigOverrideRule{
			{
				Matcher: fieldconfig.MatcherConfig{ID: "byName", Options: "cpu"},
				Properties: []fieldconfig.DynamicConfigValue{
					{ID: "unit", Value: "percent"},
					{ID: "min", Value: 0},
				},
			},
			{
				Matcher: fieldconfig.MatcherConfig{ID: "byFrameRefID", Options: "B"},
				Properties: []fieldconfig.DynamicConfigValue{
					{ID: "custom.lineWidth", Value: 2},
				},
			},
		},
	}
	return BuildOverrideCategories(fc, NewRegistry(sampleCategories()))
}

func TestBuildOverrideCategories(t *testing.T) {
	cats := overrideCategories()
	require.Len(t, cats, 2)
	assert.Equal(t, "Override 1", cats[0].Title)
	assert.Equal(t, []string{"Fields with name", "Unit", "Min"}, titles(cats[0].Items))
	assert.Equal(t, "cpu", cats[0].Items[0].Description)
	assert.Equal(t, "Leave empty to calculate based on all values", cats[0].Items[2].Description)
	assert.Equal(t, []string{"Fields returned by query", "custom.lineWidth"}, titles(cats[1].Items))
}

func TestSearchOverridesKeepMatcherFirst(t *testing.T) {
	e := NewSearchEngine(sampleCategories(), overrideCategories())

	res := e.Search("min")
	require.Len(t, res.OverrideHits, 1)
	assert.Equal(t, "Override 1", res.OverrideHits[0].Title)
	assert.Equal(t, []string{"Fields with name", "Min"}, titles(res.OverrideHits[0].Items))

	res = e.Search("fields with name")
	require.Len(t, res.OverrideHits, 1)
	assert.Equal(t, []string{"Fields with name"}, titles(res.OverrideHits[0].Items))

	res = e.Search("override 2")
	require.Len(t, res.OverrideHits, 1)
	assert.Equal(t, []string{"Fields returned by query", "custom.lineWidth"}, titles(res.OverrideHits[0].Items))

	res = e.Search("u")
	require.Len(t, res.OverrideHits, 2)
	assert.Equal(t, []string{"Fields with name", "Unit", "Min"}, titles(res.OverrideHits[0].Items))
	assert.Equal(t, []string{"Fields returned by query", "custom.lineWidth"}, titles(res.OverrideHits[1].Items))
}

func TestCountItemsNested(t *testing.T) {
	assert.Equal(t, 6, CountItems(sampleCategories()))
	assert.Equal(t, 0, CountItems(nil))
}
