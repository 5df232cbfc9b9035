// Package optpath reads and immutably rewrites option trees addressed by
// dotted/bracketed path strings such as "fieldConfig.defaults.thresholds.steps[0].color".
package optpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path cannot be parsed.
var ErrInvalidPath = errors.New("invalid path")

// MaxIndex is the largest array index a path may address. Setting an index
// pads the array up to it.
const MaxIndex = 10000

// Node represents a parsed segment of a path input.
// Path example: defaults.custom.lineStyle["dash-pattern"].steps[0]
type Node interface{}

// Field represents a simple dotted field name.
type Field struct {
	Name string
}

// QuotedKey represents a field accessed via bracket-quoted key: ["key"]
type QuotedKey struct {
	Name string
}

// ArrayIndex represents an array index like [0]
type ArrayIndex struct {
	Index int
}

// ParsePath parses a path string into a slice of nodes.
// It supports dots, bracket indices, and bracket quoted keys.
func ParsePath(input string) ([]Node, error) {
	var nodes []Node
	i := 0
	for i < len(input) {
		ch := input[i]
		if ch == '.' {
			i++
			continue
		}
		if ch == '[' {
			end := strings.IndexByte(input[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidPath, input)
			}
			segment := input[i+1 : i+end]
			switch {
			case len(segment) >= 2 && strings.HasPrefix(segment, "\"") && strings.HasSuffix(segment, "\""):
				nodes = append(nodes, QuotedKey{Name: segment[1 : len(segment)-1]})
			default:
				n, err := strconv.Atoi(segment)
				if err != nil || n < 0 || n > MaxIndex {
					return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, segment, input)
				}
				nodes = append(nodes, ArrayIndex{Index: n})
			}
			i += end + 1
			continue
		}
		// parse a dotted identifier until next '.' or '['
		j := i
		for j < len(input) && input[j] != '.' && input[j] != '[' {
			j++
		}
		nodes = append(nodes, Field{Name: input[i:j]})
		i = j
	}
	return nodes, nil
}

// ParseSegments parses a pre-split path. Each segment is a key optionally
// followed by one or more [N] suffixes; dots inside a segment are part of the key.
func ParseSegments(segments []string) ([]Node, error) {
	var nodes []Node
	for _, seg := range segments {
		key := seg
		var suffix []Node
		for strings.HasSuffix(key, "]") {
			open := strings.LastIndexByte(key, '[')
			if open < 0 {
				return nil, fmt.Errorf("%w: unbalanced bracket in segment %q", ErrInvalidPath, seg)
			}
			n, err := strconv.Atoi(key[open+1 : len(key)-1])
			if err != nil || n < 0 || n > MaxIndex {
				return nil, fmt.Errorf("%w: bad index in segment %q", ErrInvalidPath, seg)
			}
			suffix = append([]Node{ArrayIndex{Index: n}}, suffix...)
			key = key[:open]
		}
		if key != "" {
			nodes = append(nodes, Field{Name: key})
		}
		nodes = append(nodes, suffix...)
	}
	return nodes, nil
}

// ReconstructPath rebuilds a path string from nodes.
func ReconstructPath(nodes []Node) string {
	var b strings.Builder
	for idx, n := range nodes {
		switch v := n.(type) {
		case Field:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v.Name)
		case QuotedKey:
			b.WriteString("[\"")
			b.WriteString(v.Name)
			b.WriteString("\"]")
		case ArrayIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func keyOf(n Node) (string, bool) {
	switch v := n.(type) {
	case Field:
		return v.Name, true
	case QuotedKey:
		return v.Name, true
	}
	return "", false
}
