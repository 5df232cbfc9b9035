package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyRefID is returned when a query is given an empty refId.
	ErrEmptyRefID = errors.New("query name cannot be empty")
	// ErrDuplicateRefID is returned when a refId is already taken in the set.
	ErrDuplicateRefID = errors.New("query name already exists")
)

// NextRefID returns the first unused id in the sequence A..Z, AA, AB, ...
func NextRefID(queries []*Query) string {
	used := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		used[q.RefID] = struct{}{}
	}
	for n := 0; ; n++ {
		id := refIDAt(n)
		if _, ok := used[id]; !ok {
			return id
		}
	}
}

func refIDAt(n int) string {
	var b []byte
	for n >= 0 {
		b = append([]byte{byte('A' + n%26)}, b...)
		n = n/26 - 1
	}
	return string(b)
}

// ValidateRefID checks that id may be used by self within queries.
func ValidateRefID(queries []*Query, self *Query, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyRefID
	}
	for _, q := range queries {
		if q != self && q.RefID == id {
			return fmt.Errorf("%q: %w", id, ErrDuplicateRefID)
		}
	}
	return nil
}
