package datasource

// PluginMeta describes the plugin behind a data source.
type PluginMeta struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Mixed bool   `json:"mixed,omitempty" yaml:"mixed,omitempty"`
}

// InstanceSettings identifies a configured data source and its capabilities.
type InstanceSettings struct {
	UID       string                 `json:"uid" yaml:"uid"`
	Type      string                 `json:"type" yaml:"type"`
	Name      string                 `json:"name" yaml:"name"`
	IsDefault bool                   `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
	Meta      PluginMeta             `json:"meta" yaml:"meta"`
	JSONData  map[string]interface{} `json:"jsonData,omitempty" yaml:"jsonData,omitempty"`
}

// Ref returns a reference to these settings.
func (s *InstanceSettings) Ref() *Ref {
	if s == nil {
		return nil
	}
	return &Ref{Type: s.Type, UID: s.UID}
}

// IsMixed reports whether these are the mixed pseudo data source settings.
func (s *InstanceSettings) IsMixed() bool {
	return s != nil && s.Meta.Mixed
}

// MixedSettings are the settings of the built-in mixed data source.
func MixedSettings() *InstanceSettings {
	return &InstanceSettings{
		UID:  MixedUID,
		Type: MixedType,
		Name: MixedName,
		Meta: PluginMeta{ID: MixedType, Name: "Mixed Datasource", Mixed: true},
	}
}

// ExpressionSettings are the settings of the built-in expression data source.
func ExpressionSettings() *InstanceSettings {
	return &InstanceSettings{
		UID:  ExpressionUID,
		Type: ExpressionType,
		Name: ExpressionName,
		Meta: PluginMeta{ID: ExpressionType, Name: ExpressionName},
	}
}
