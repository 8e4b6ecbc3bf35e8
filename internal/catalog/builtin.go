package catalog

import "github.com/abdsal1508/workflow-app/pkg/schema"

// Builtin returns the offline node-type catalog used when no external
// catalog endpoint is reachable. The palette stays usable with these
// five types.
func Builtin() []schema.NodeType {
	return []schema.NodeType{
		{
			Name:         "manual_trigger",
			DisplayName:  "Manual Trigger",
			Category:     "trigger",
			Icon:         "fa-hand-pointer",
			Color:        "#10b981",
			Description:  "Manually start workflow",
			ConfigSchema: schema.ConfigSchema{Fields: []schema.ConfigField{}},
		},
		{
			Name:        "database_query",
			DisplayName: "Database Query",
			Category:    "data",
			Icon:        "fa-database",
			Color:       "#8b5cf6",
			Description: "Query database for data",
			ConfigSchema: schema.ConfigSchema{Fields: []schema.ConfigField{
				{Name: "query_type", Type: schema.FieldSelect, Options: []string{"SELECT", "INSERT", "UPDATE", "DELETE"}, Default: "SELECT", Label: "Query Type"},
				{Name: "table_name", Type: schema.FieldText, Required: true, Label: "Table Name"},
				{Name: "conditions", Type: schema.FieldText, Label: "WHERE Conditions"},
				{Name: "fields", Type: schema.FieldText, Default: "*", Label: "Fields"},
				{Name: "limit", Type: schema.FieldNumber, Default: 100, Label: "Limit"},
			}},
		},
		{
			Name:        "data_transform",
			DisplayName: "Data Transform",
			Category:    "transform",
			Icon:        "fa-cogs",
			Color:       "#059669",
			Description: "Transform and map data",
			ConfigSchema: schema.ConfigSchema{Fields: []schema.ConfigField{
				{Name: "transform_type", Type: schema.FieldSelect, Options: []string{"map", "filter", "aggregate"}, Default: "map", Label: "Transform Type"},
				{Name: "field_mappings", Type: schema.FieldTextarea, Label: "Field Mappings (JSON)"},
				{Name: "filter_expression", Type: schema.FieldText, Label: "Filter Expression"},
			}},
		},
		{
			Name:        "condition",
			DisplayName: "Condition",
			Category:    "condition",
			Icon:        "fa-code-branch",
			Color:       "#ef4444",
			Description: "Branch based on conditions",
			ConfigSchema: schema.ConfigSchema{Fields: []schema.ConfigField{
				{Name: "expression", Type: schema.FieldText, Required: true, Label: "Condition Expression"},
				{Name: "language", Type: schema.FieldSelect, Options: []string{"cel", "expr", "jq"}, Default: "cel", Label: "Expression Language"},
			}},
		},
		{
			Name:        "email_send",
			DisplayName: "Send Email",
			Category:    "action",
			Icon:        "fa-envelope",
			Color:       "#06b6d4",
			Description: "Send email notifications",
			ConfigSchema: schema.ConfigSchema{Fields: []schema.ConfigField{
				{Name: "to", Type: schema.FieldText, Required: true, Label: "To Email"},
				{Name: "subject", Type: schema.FieldText, Required: true, Label: "Subject"},
				{Name: "body", Type: schema.FieldTextarea, Required: true, Label: "Email Body"},
			}},
		},
	}
}
