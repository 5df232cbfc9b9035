package fieldconfig

import (
	"fmt"
)

// AddOverride appends a rule with no properties for matcher.
func AddOverride(config FieldConfigSource, matcher MatcherConfig) FieldConfigSource {
	overrides := make([]ConfigOverrideRule, len(config.Overrides), len(config.Overrides)+1)
	copy(overrides, config.Overrides)
	overrides = append(overrides, ConfigOverrideRule{Matcher: matcher})
	return FieldConfigSource{Defaults: config.Defaults, Overrides: overrides}
}

// RemoveOverride drops the rule at index.
func RemoveOverride(config FieldConfigSource, index int) (FieldConfigSource, error) {
	if index < 0 || index >= len(config.Overrides) {
		return config, fmt.Errorf("override index %d out of range", index)
	}
	overrides := make([]ConfigOverrideRule, 0, len(config.Overrides)-1)
	overrides = append(overrides, config.Overrides[:index]...)
	overrides = append(overrides, config.Overrides[index+1:]...)
	return FieldConfigSource{Defaults: config.Defaults, Overrides: overrides}, nil
}

// SetOverrideProperty sets property id on the rule at index, replacing an
// existing entry in place or appending a new one. Empty values remove the
// property. Defaults are carried over by reference.
func SetOverrideProperty(config FieldConfigSource, index int, id string, value interface{}) (FieldConfigSource, error) {
	if index < 0 || index >= len(config.Overrides) {
		return config, fmt.Errorf("override index %d out of range", index)
	}
	rule := config.Overrides[index]
	props := make([]DynamicConfigValue, 0, len(rule.Properties)+1)
	found := false
	for _, p := range rule.Properties {
		if p.ID != id {
			props = append(props, p)
			continue
		}
		found = true
		if !IsEmptyValue(value) {
			props = append(props, DynamicConfigValue{ID: id, Value: value})
		}
	}
	if !found && !IsEmptyValue(value) {
		props = append(props, DynamicConfigValue{ID: id, Value: value})
	}

	overrides := make([]ConfigOverrideRule, len(config.Overrides))
	copy(overrides, config.Overrides)
	overrides[index] = ConfigOverrideRule{Matcher: rule.Matcher, Properties: props}
	return FieldConfigSource{Defaults: config.Defaults, Overrides: overrides}, nil
}
