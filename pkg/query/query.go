// Package query models panel queries and reconciles query sets when the
// panel's data source changes.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/oakwood-commons/paneledit/pkg/datasource"
)

// Query is a request descriptor. Fields holds the data-source specific
// properties, which this package treats as opaque.
type Query struct {
	RefID      string                 `json:"refId" yaml:"refId"`
	Datasource *datasource.Ref        `json:"datasource,omitempty" yaml:"datasource,omitempty"`
	Hide       bool                   `json:"hide,omitempty" yaml:"hide,omitempty"`
	Fields     map[string]interface{} `json:"-" yaml:",inline"`
}

var reservedKeys = map[string]struct{}{"refId": {}, "datasource": {}, "hide": {}}

// Clone returns a deep copy with a new identity.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	var out Query
	if err := deepcopy.Copy(&out, q); err != nil {
		// deepcopy only fails on unsupported kinds; fall back to a shallow copy
		// of the opaque fields.
		out = *q
		out.Fields = make(map[string]interface{}, len(q.Fields))
		for k, v := range q.Fields {
			out.Fields[k] = v
		}
		if q.Datasource != nil {
			ref := *q.Datasource
			out.Datasource = &ref
		}
	}
	return &out
}

// WithDatasource returns a shallow copy of q pointing at ref.
func (q *Query) WithDatasource(ref *datasource.Ref) *Query {
	out := *q
	if ref != nil {
		r := *ref
		out.Datasource = &r
	} else {
		out.Datasource = nil
	}
	return &out
}

// MarshalJSON flattens Fields next to the known properties.
func (q Query) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(q.Fields)+3)
	for k, v := range q.Fields {
		m[k] = v
	}
	m["refId"] = q.RefID
	if q.Datasource != nil {
		m["datasource"] = q.Datasource
	}
	if q.Hide {
		m["hide"] = true
	}
	return json.Marshal(m)
}

// UnmarshalJSON collects unknown properties into Fields.
func (q *Query) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	var out Query
	if v, ok := raw["refId"]; ok {
		if err := json.Unmarshal(v, &out.RefID); err != nil {
			return fmt.Errorf("query refId: %w", err)
		}
	}
	if v, ok := raw["datasource"]; ok && string(v) != "null" {
		out.Datasource = &datasource.Ref{}
		if err := json.Unmarshal(v, out.Datasource); err != nil {
			return err
		}
	}
	if v, ok := raw["hide"]; ok {
		if err := json.Unmarshal(v, &out.Hide); err != nil {
			return fmt.Errorf("query hide: %w", err)
		}
	}
	for k, v := range raw {
		if _, ok := reservedKeys[k]; ok {
			continue
		}
		var val interface{}
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("query field %q: %w", k, err)
		}
		if out.Fields == nil {
			out.Fields = map[string]interface{}{}
		}
		out.Fields[k] = val
	}
	*q = out
	return nil
}
