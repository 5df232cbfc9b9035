package queryrows

import (
	"github.com/oakwood-commons/paneledit/pkg/query"
	"github.com/oakwood-commons/paneledit/pkg/telemetry"
)

// DragStart reports the start of a drag at index.
func (r *Rows) DragStart(index int) {
	r.mu.Lock()
	n := len(r.queries)
	r.mu.Unlock()
	r.reporter.Report(telemetry.EventReorderStarted, map[string]interface{}{"startIndex": index, "numberOfQueries": n})
}

// DragEnd moves the query at source to destination, keeping the relative
// order of all others. A drop at its own index, or outside the list
// (destination < 0), is a cancel: nothing changes and false is returned.
func (r *Rows) DragEnd(source, destination int) bool {
	r.mu.Lock()
	n := len(r.queries)
	if destination < 0 || source == destination || source < 0 || source >= n || destination >= n {
		r.mu.Unlock()
		r.reporter.Report(telemetry.EventReorderCanceled, map[string]interface{}{"startIndex": source, "numberOfQueries": n})
		return false
	}
	next := Move(r.queries, source, destination)
	r.commitLocked(next)
	r.mu.Unlock()

	r.reporter.Report(telemetry.EventReorderEnded, map[string]interface{}{
		"startIndex":      source,
		"endIndex":        destination,
		"numberOfQueries": n,
	})
	r.notifyQueries(next)
	return true
}

// Move returns a copy of queries with the element at from moved to to.
func Move(queries []*query.Query, from, to int) []*query.Query {
	out := make([]*query.Query, 0, len(queries))
	moved := queries[from]
	for i, q := range queries {
		if i == from {
			continue
		}
		out = append(out, q)
	}
	out = append(out, nil)
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}
