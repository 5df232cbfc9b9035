package datasource

import (
	"regexp"
)

var variablePattern = regexp.MustCompile(`\$\{(\w+)(?::\w+)?\}|\$(\w+)|\[\[(\w+)\]\]`)

// TemplateVars maps variable names to their current values.
type TemplateVars map[string]string

// Replace substitutes known variables; unknown variables are left untouched.
func (v TemplateVars) Replace(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := variableName(match)
		if val, ok := v[name]; ok {
			return val
		}
		return match
	})
}

// ContainsTemplate reports whether s references a variable.
func (v TemplateVars) ContainsTemplate(s string) bool {
	return variablePattern.MatchString(s)
}

func variableName(match string) string {
	sub := variablePattern.FindStringSubmatch(match)
	for _, s := range sub[1:] {
		if s != "" {
			return s
		}
	}
	return ""
}
