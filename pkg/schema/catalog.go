package schema

// ConfigFieldType enumerates the form control kinds a node type's
// config schema may declare.
type ConfigFieldType string

const (
	FieldText     ConfigFieldType = "text"
	FieldNumber   ConfigFieldType = "number"
	FieldTextarea ConfigFieldType = "textarea"
	FieldSelect   ConfigFieldType = "select"
)

// ConfigField describes one configurable setting of a node type.
type ConfigField struct {
	Name     string          `json:"name"`
	Type     ConfigFieldType `json:"type"`
	Required bool            `json:"required,omitempty"`
	Default  any             `json:"default,omitempty"`
	Options  []string        `json:"options,omitempty"`
	Label    string          `json:"label,omitempty"`
}

// ConfigSchema is the ordered field list a node type exposes for editing.
type ConfigSchema struct {
	Fields []ConfigField `json:"fields"`
}

// NodeType is a read-only catalog entry describing a kind of node.
// The catalog is supplied externally; the graph only references entries
// by name.
type NodeType struct {
	Name         string       `json:"name"`
	DisplayName  string       `json:"display_name"`
	Category     string       `json:"category"`
	Icon         string       `json:"icon"`
	Color        string       `json:"color"`
	Description  string       `json:"description"`
	ConfigSchema ConfigSchema `json:"config_schema"`
}

// Field returns the config field with the given name, if declared.
func (nt *NodeType) Field(name string) (*ConfigField, bool) {
	for i := range nt.ConfigSchema.Fields {
		if nt.ConfigSchema.Fields[i].Name == name {
			return &nt.ConfigSchema.Fields[i], true
		}
	}
	return nil, false
}
