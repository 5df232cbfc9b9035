package optpath

// Set returns a copy of root with value stored at path. Every map and slice
// from root down to the leaf is a fresh shallow copy; everything off the path
// is shared with root. Missing or non-container intermediates are replaced by
// empty maps (or slices, for index segments).
func Set(root map[string]interface{}, path string, value interface{}) (map[string]interface{}, error) {
	nodes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return SetNodes(root, nodes, value), nil
}

// SetSegments is Set for a pre-split path.
func SetSegments(root map[string]interface{}, segments []string, value interface{}) (map[string]interface{}, error) {
	nodes, err := ParseSegments(segments)
	if err != nil {
		return nil, err
	}
	return SetNodes(root, nodes, value), nil
}

// SetNodes is Set for an already parsed path. An empty path returns root unchanged.
func SetNodes(root map[string]interface{}, nodes []Node, value interface{}) map[string]interface{} {
	if len(nodes) == 0 {
		return root
	}
	out, _ := setIn(root, nodes, value).(map[string]interface{})
	return out
}

func setIn(cur interface{}, nodes []Node, value interface{}) interface{} {
	if len(nodes) == 0 {
		return value
	}
	head, rest := nodes[0], nodes[1:]

	if idx, ok := head.(ArrayIndex); ok {
		src, _ := cur.([]interface{})
		size := len(src)
		if idx.Index >= size {
			size = idx.Index + 1
		}
		next := make([]interface{}, size)
		copy(next, src)
		next[idx.Index] = setIn(next[idx.Index], rest, value)
		return next
	}

	key, _ := keyOf(head)
	src, _ := cur.(map[string]interface{})
	next := make(map[string]interface{}, len(src)+1)
	for k, v := range src {
		next[k] = v
	}
	next[key] = setIn(src[key], rest, value)
	return next
}
