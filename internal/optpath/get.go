package optpath

import "fmt"

// Get navigates path into root and returns the value found there.
func Get(root interface{}, path string) (interface{}, error) {
	nodes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	cur := root
	for _, n := range nodes {
		cur, err = step(cur, n)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func step(cur interface{}, n Node) (interface{}, error) {
	if key, ok := keyOf(n); ok {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cannot descend into %T at '%s'", cur, key)
		}
		v, ok := m[key]
		if !ok {
			return nil, fmt.Errorf("key '%s' not found", key)
		}
		return v, nil
	}
	idx := n.(ArrayIndex).Index
	arr, ok := cur.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array at [%d] but got %T", idx, cur)
	}
	if idx >= len(arr) {
		return nil, fmt.Errorf("index %d out of range", idx)
	}
	return arr[idx], nil
}
