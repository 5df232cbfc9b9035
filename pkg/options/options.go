// Package options models the panel options pane as a tree of categories and
// searches it.
package options

// Item is a single option editor.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Category groups items and nested categories under a title.
type Category struct {
	ID         string      `json:"id" yaml:"id"`
	Title      string      `json:"title" yaml:"title"`
	Items      []*Item     `json:"items,omitempty" yaml:"items,omitempty"`
	Categories []*Category `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Walk calls fn for every item under c, depth first, with its direct parent.
func (c *Category) Walk(fn func(parent *Category, item *Item)) {
	for _, it := range c.Items {
		fn(c, it)
	}
	for _, sub := range c.Categories {
		sub.Walk(fn)
	}
}

// CountItems returns the number of items in categories and all of their
// nested categories.
func CountItems(categories []*Category) int {
	n := 0
	for _, c := range categories {
		c.Walk(func(*Category, *Item) { n++ })
	}
	return n
}
