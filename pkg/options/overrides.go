package options

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/paneledit/pkg/fieldconfig"
)

var matcherTitles = map[string]string{
	"byName":       "Fields with name",
	"byRegexp":     "Fields with name matching regex",
	"byType":       "Fields with type",
	"byFrameRefID": "Fields returned by query",
	"byValue":      "Fields with values",
}

// Registry indexes option items by id so override properties can be shown
// with the title and description of the option they override.
type Registry struct {
	items map[string]*Item
}

// NewRegistry indexes every item under categories.
func NewRegistry(categories []*Category) *Registry {
	r := &Registry{items: map[string]*Item{}}
	for _, c := range categories {
		c.Walk(func(_ *Category, it *Item) {
			if _, ok := r.items[it.ID]; !ok {
				r.items[it.ID] = it
			}
		})
	}
	return r
}

// Lookup returns the option item with id.
func (r *Registry) Lookup(id string) (*Item, bool) {
	if r == nil {
		return nil, false
	}
	it, ok := r.items[id]
	return it, ok
}

// BuildOverrideCategories turns the override rules of fc into categories, one
// per rule, with the matcher as item 0 followed by one item per property.
func BuildOverrideCategories(fc fieldconfig.FieldConfigSource, reg *Registry) []*Category {
	out := make([]*Category, 0, len(fc.Overrides))
	for i, rule := range fc.Overrides {
		id := fmt.Sprintf("override-%d", i)
		c := &Category{ID: id, Title: fmt.Sprintf("Override %d", i+1)}
		c.Items = append(c.Items, matcherItem(id, rule.Matcher))
		for _, p := range rule.Properties {
			it := &Item{ID: id + "/" + p.ID, Title: p.ID}
			if known, ok := reg.Lookup(p.ID); ok {
				it.Title = known.Title
				it.Description = known.Description
			}
			c.Items = append(c.Items, it)
		}
		out = append(out, c)
	}
	return out
}

func matcherItem(categoryID string, m fieldconfig.MatcherConfig) *Item {
	title, ok := matcherTitles[m.ID]
	if !ok {
		title = m.ID
	}
	it := &Item{ID: categoryID + "/matcher", Title: title}
	switch v := m.Options.(type) {
	case string:
		it.Description = v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		it.Description = strings.Join(parts, ", ")
	case nil:
	default:
		it.Description = fmt.Sprint(v)
	}
	return it
}
