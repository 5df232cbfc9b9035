package queryrows

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMixed is returned for per-row data source changes outside mixed mode.
	ErrNotMixed = errors.New("per-query data source requires the mixed data source")
	// ErrQueryNotFound is returned when an operation names a query that is not in the set.
	ErrQueryNotFound = errors.New("query not found in query set")
	// ErrSuperseded is returned when a group data source change finished after a newer one started.
	ErrSuperseded = errors.New("data source change superseded by a newer change")
)

// BulkChangeError reports the query whose conversion failed during a group
// data source change. None of the converted queries are committed.
type BulkChangeError struct {
	Name  string
	UID   string
	RefID string
	Err   error
}

func (e *BulkChangeError) Error() string {
	return fmt.Sprintf("failed to change data source to %s (%s) for query %s: %v", e.Name, e.UID, e.RefID, e.Err)
}

func (e *BulkChangeError) Unwrap() error {
	return e.Err
}
