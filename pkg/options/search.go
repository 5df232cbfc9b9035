package options

import (
	"regexp"
	"sort"
)

// Rank orders search hits; lower is better.
type Rank int

const (
	RankTitle       Rank = 1
	RankDescription Rank = 2
	RankCategory    Rank = 3
)

// Hit is a matching item and the category it was found in.
type Hit struct {
	Item   *Item
	Parent *Category
	Rank   Rank
}

// SearchResult holds the ranked hits. OverrideHits are override categories
// rebuilt to hold only their matcher and matching properties. TotalCount is
// the number of option items searched, matching or not.
type SearchResult struct {
	OptionHits   []*Item     `json:"optionHits" yaml:"optionHits"`
	OverrideHits []*Category `json:"overrideHits" yaml:"overrideHits"`
	TotalCount   int         `json:"totalCount" yaml:"totalCount"`
}

// SearchEngine searches option and override categories.
type SearchEngine struct {
	categories []*Category
	overrides  []*Category
}

// NewSearchEngine creates an engine over the option categories and the
// override categories. Override categories carry their matcher as item 0.
func NewSearchEngine(categories, overrides []*Category) *SearchEngine {
	return &SearchEngine{categories: categories, overrides: overrides}
}

// Search matches query, case-insensitively, against item titles, item
// descriptions and parent category titles. query is a regular expression;
// one that does not compile is matched literally.
func (e *SearchEngine) Search(query string) SearchResult {
	re := compile(query)

	optionHits := rankHits(e.categories, re)
	items := make([]*Item, 0, len(optionHits))
	for _, h := range optionHits {
		items = append(items, h.Item)
	}

	return SearchResult{
		OptionHits:   items,
		OverrideHits: groupOverrideHits(rankHits(e.overrides, re)),
		TotalCount:   CountItems(e.categories),
	}
}

func compile(query string) *regexp.Regexp {
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	}
	return re
}

func rankHits(categories []*Category, re *regexp.Regexp) []Hit {
	var hits []Hit
	for _, c := range categories {
		c.Walk(func(parent *Category, it *Item) {
			switch {
			case re.MatchString(it.Title):
				hits = append(hits, Hit{Item: it, Parent: parent, Rank: RankTitle})
			case it.Description != "" && re.MatchString(it.Description):
				hits = append(hits, Hit{Item: it, Parent: parent, Rank: RankDescription})
			case re.MatchString(parent.Title):
				hits = append(hits, Hit{Item: it, Parent: parent, Rank: RankCategory})
			}
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Rank < hits[j].Rank })
	return hits
}

// groupOverrideHits rebuilds each override category that has a hit, with its
// matcher first and the other hits after it in rank order.
func groupOverrideHits(hits []Hit) []*Category {
	var out []*Category
	byParent := map[*Category]*Category{}
	for _, h := range hits {
		group, ok := byParent[h.Parent]
		if !ok {
			group = &Category{ID: h.Parent.ID, Title: h.Parent.Title}
			if len(h.Parent.Items) > 0 {
				group.Items = append(group.Items, h.Parent.Items[0])
			}
			byParent[h.Parent] = group
			out = append(out, group)
		}
		if len(h.Parent.Items) > 0 && h.Item == h.Parent.Items[0] {
			continue
		}
		group.Items = append(group.Items, h.Item)
	}
	return out
}
