// Package datasource describes configured data sources and how a panel
// resolves a data source reference to an instance.
package datasource

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Built-in pseudo data sources.
const (
	MixedUID        = "-- Mixed --"
	MixedType       = "mixed"
	ExpressionUID   = "__expr__"
	ExpressionType  = "__expr__"
	ExpressionName  = "Expression"
	MixedName       = "-- Mixed --"
	defaultRefLabel = "default"
)

// Ref points at a data source by type and uid. A reference given as a bare
// string (a uid, a name or a variable expression such as "${ds}") decodes
// into UID with an empty Type.
type Ref struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	UID  string `json:"uid,omitempty" yaml:"uid,omitempty"`
}

// ExpressionRef references the expression pseudo data source.
var ExpressionRef = Ref{Type: ExpressionType, UID: ExpressionUID}

// MixedRef references the mixed pseudo data source.
var MixedRef = Ref{Type: MixedType, UID: MixedUID}

// IsExpressionReference reports whether ref targets the expression pseudo data source.
func IsExpressionReference(ref *Ref) bool {
	if ref == nil {
		return false
	}
	return ref.UID == ExpressionUID || ref.Type == ExpressionType || ref.UID == ExpressionName
}

func (r *Ref) String() string {
	if r == nil {
		return defaultRefLabel
	}
	if r.Type == "" {
		return r.UID
	}
	return fmt.Sprintf("%s/%s", r.Type, r.UID)
}

// Equal compares two references; nil only equals nil.
func (r *Ref) Equal(o *Ref) bool {
	if r == nil || o == nil {
		return r == o
	}
	return *r == *o
}

// UnmarshalJSON accepts either an object or a bare string.
func (r *Ref) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = Ref{UID: s}
		return nil
	}
	type plain Ref
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("datasource reference: %w", err)
	}
	*r = Ref(p)
	return nil
}

// UnmarshalYAML accepts either a mapping or a bare scalar.
func (r *Ref) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = Ref{UID: value.Value}
		return nil
	}
	type plain Ref
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("datasource reference: %w", err)
	}
	*r = Ref(p)
	return nil
}
