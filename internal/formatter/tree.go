package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xlab/treeprint"
)

const defaultMaxArrayInline = 3

// DefaultLabelKeys name the fields used to label array elements that are
// objects: option categories and items by title, queries and rows by refId.
var DefaultLabelKeys = []string{"title", "refId", "name", "id"}

// TreeOptions controls tree output.
type TreeOptions struct {
	// MaxDepth limits depth; 0 is unlimited.
	MaxDepth int
	// MaxStringLen truncates scalar values; 0 is unlimited.
	MaxStringLen int
	// LabelKeys label object array elements by the first field present,
	// instead of by index.
	LabelKeys []string
}

// FormatAsTree renders generic data as an ASCII tree.
func FormatAsTree(node interface{}, opts TreeOptions) string {
	tree := treeprint.New()
	buildTree(tree, node, opts, 0)
	return tree.String()
}

func buildTree(branch treeprint.Tree, node interface{}, opts TreeOptions, depth int) {
	switch v := node.(type) {
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			addNodeForValue(branch, key, v[key], opts, depth)
		}
	case []interface{}:
		for i, elem := range v {
			addNodeForValue(branch, elementLabel(i, elem, opts.LabelKeys), elem, opts, depth)
		}
	default:
		branch.AddNode(formatScalar(v, opts.MaxStringLen))
	}
}

func addNodeForValue(branch treeprint.Tree, key string, val interface{}, opts TreeOptions, depth int) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		branch.AddNode(key + ": ...")
		return
	}
	switch v := val.(type) {
	case map[string]interface{}:
		if len(v) == 0 {
			branch.AddNode(key + ": {}")
			return
		}
		buildTree(branch.AddBranch(key), v, opts, depth+1)
	case []interface{}:
		switch {
		case len(v) == 0:
			branch.AddNode(key + ": []")
		case isScalarArray(v) && len(v) <= defaultMaxArrayInline:
			parts := make([]string, len(v))
			for i, elem := range v {
				parts[i] = formatScalar(elem, 0)
			}
			branch.AddNode(key + ": [" + strings.Join(parts, ", ") + "]")
		case isScalarArray(v):
			branch.AddNode(fmt.Sprintf("%s: [%d items]", key, len(v)))
		default:
			buildTree(branch.AddBranch(key), v, opts, depth+1)
		}
	default:
		branch.AddNode(key + ": " + formatScalar(v, opts.MaxStringLen))
	}
}

func elementLabel(i int, elem interface{}, labelKeys []string) string {
	if m, ok := elem.(map[string]interface{}); ok {
		for _, k := range labelKeys {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("[%d]", i)
}

func isScalarArray(arr []interface{}) bool {
	for _, elem := range arr {
		switch elem.(type) {
		case map[string]interface{}, []interface{}:
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatScalar(v interface{}, maxLen int) string {
	var s string
	switch val := v.(type) {
	case nil:
		s = "null"
	case string:
		s = val
	case float64:
		if val == float64(int64(val)) {
			s = fmt.Sprintf("%d", int64(val))
		} else {
			s = fmt.Sprintf("%g", val)
		}
	default:
		s = fmt.Sprint(val)
	}
	return truncate(s, maxLen)
}
