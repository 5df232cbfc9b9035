package optpath

// Omit returns a copy of root without the key or array element at path.
// Containers along the path are shallow-copied; everything else is shared.
// When the path does not exist root is returned as is.
func Omit(root map[string]interface{}, path string) (map[string]interface{}, error) {
	nodes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return root, nil
	}
	out, changed := omitIn(root, nodes)
	if !changed {
		return root, nil
	}
	m, _ := out.(map[string]interface{})
	return m, nil
}

func omitIn(cur interface{}, nodes []Node) (interface{}, bool) {
	head, rest := nodes[0], nodes[1:]

	if idx, ok := head.(ArrayIndex); ok {
		src, ok := cur.([]interface{})
		if !ok || idx.Index >= len(src) {
			return cur, false
		}
		next := make([]interface{}, len(src))
		copy(next, src)
		if len(rest) == 0 {
			// Removing an element leaves a hole rather than shifting siblings.
			next[idx.Index] = nil
			return next, true
		}
		child, changed := omitIn(src[idx.Index], rest)
		if !changed {
			return cur, false
		}
		next[idx.Index] = child
		return next, true
	}

	key, _ := keyOf(head)
	src, ok := cur.(map[string]interface{})
	if !ok {
		return cur, false
	}
	val, exists := src[key]
	if !exists {
		return cur, false
	}
	var child interface{}
	if len(rest) > 0 {
		var changed bool
		child, changed = omitIn(val, rest)
		if !changed {
			return cur, false
		}
	}
	next := make(map[string]interface{}, len(src))
	for k, v := range src {
		next[k] = v
	}
	if len(rest) == 0 {
		delete(next, key)
	} else {
		next[key] = child
	}
	return next, true
}
