// Package limiter windows list output with --limit, --offset and --tail.
package limiter

import (
	"fmt"
	"sort"
)

// Config holds the window parameters. Zero values disable each one.
type Config struct {
	Limit  int
	Offset int
	// Tail keeps the last N records and ignores Offset.
	Tail int
}

// Validate rejects negative values and Limit combined with Tail.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// bounds returns the window [start, end) over length records.
func (c Config) bounds(length int) (int, int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start := min(c.Offset, length)
	end := length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}

// Slice returns the window of items.
func Slice[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.bounds(len(items))
	return items[start:end]
}

// Apply windows generic data: the elements of a list, or the entries of a
// map in key order. Scalars are returned unchanged.
func (c Config) Apply(data interface{}) interface{} {
	if !c.IsActive() {
		return data
	}
	switch v := data.(type) {
	case []interface{}:
		return Slice(c, v)
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{})
		for _, k := range Slice(c, keys) {
			out[k] = v[k]
		}
		return out
	default:
		return data
	}
}
