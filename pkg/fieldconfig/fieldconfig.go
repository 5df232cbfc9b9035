// Package fieldconfig edits panel field configuration: standard and custom
// defaults plus ordered override rules.
package fieldconfig

import (
	"fmt"

	"github.com/oakwood-commons/paneledit/internal/optpath"
)

// CustomKey is the defaults key that holds plugin-custom properties.
const CustomKey = "custom"

// MatcherConfig selects the fields an override applies to.
type MatcherConfig struct {
	ID      string      `json:"id" yaml:"id"`
	Options interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// DynamicConfigValue is a single property set by an override.
type DynamicConfigValue struct {
	ID    string      `json:"id" yaml:"id"`
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConfigOverrideRule applies Properties to fields selected by Matcher.
type ConfigOverrideRule struct {
	Matcher    MatcherConfig        `json:"matcher" yaml:"matcher"`
	Properties []DynamicConfigValue `json:"properties" yaml:"properties"`
}

// FieldConfigSource is the field configuration of a panel. Overrides are
// applied in order on top of Defaults.
type FieldConfigSource struct {
	Defaults  map[string]interface{} `json:"defaults" yaml:"defaults"`
	Overrides []ConfigOverrideRule   `json:"overrides" yaml:"overrides"`
}

// IsEmptyValue reports whether v means "remove this property".
func IsEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// UpdateDefaultFieldConfigValue sets or removes the default at path. Custom
// properties live under defaults.custom. Empty values delete the key. The
// returned config is new; Overrides is carried over by reference.
func UpdateDefaultFieldConfigValue(config FieldConfigSource, path string, value interface{}, isCustom bool) (FieldConfigSource, error) {
	defaults := config.Defaults
	var err error

	switch {
	case IsEmptyValue(value) && isCustom:
		custom, ok := defaults[CustomKey].(map[string]interface{})
		if !ok {
			break
		}
		custom, err = optpath.Omit(custom, path)
		if err != nil {
			return config, fmt.Errorf("remove custom default %q: %w", path, err)
		}
		defaults, err = optpath.SetSegments(defaults, []string{CustomKey}, custom)
	case IsEmptyValue(value):
		defaults, err = optpath.Omit(defaults, path)
	case isCustom:
		var nodes []optpath.Node
		nodes, err = optpath.ParsePath(path)
		if err == nil {
			defaults = optpath.SetNodes(defaults, append([]optpath.Node{optpath.Field{Name: CustomKey}}, nodes...), value)
		}
	default:
		defaults, err = optpath.Set(defaults, path, value)
	}
	if err != nil {
		return config, fmt.Errorf("update default %q: %w", path, err)
	}

	return FieldConfigSource{
		Defaults:  defaults,
		Overrides: config.Overrides,
	}, nil
}

// SetOptionImmutably stores value at path in a panel options tree and returns
// the new tree. Empty values are stored as is.
func SetOptionImmutably(options map[string]interface{}, path string, value interface{}) (map[string]interface{}, error) {
	return optpath.Set(options, path, value)
}
