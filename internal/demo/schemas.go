package demo

import "github.com/feedmill/feedadmin/internal/models"

func intPtr(v int) *int { return &v }

// builtinSchemas holds the config schemas the demo service serves, keyed
// by kind then type. All fields are editable so the console can be
// exercised end to end.
var builtinSchemas = map[string]map[string]models.Schema{
	"feed": {
		"default": {
			{Key: "name", Type: models.FieldTypeString, Label: "Name", Required: true, Editable: true},
			{Key: "source_id", Type: models.FieldTypeSelect, Label: "Source", Required: true, Editable: true, OptionsFrom: "sources"},
			{Key: "interval_minutes", Type: models.FieldTypeInteger, Label: "Interval (minutes)", Required: true, Editable: true, Min: intPtr(5), Max: intPtr(1440), Default: 60},
			{Key: "tags", Type: models.FieldTypeString, Label: "Tags (comma separated)", Editable: true},
			{Key: "active", Type: models.FieldTypeBoolean, Label: "Active", Editable: true, Default: true},
		},
	},
	"source": {
		"rss": {
			{Key: "user_agent", Type: models.FieldTypeString, Label: "User agent", Editable: true, Default: "feedadmin/1.0"},
			{Key: "max_items", Type: models.FieldTypeInteger, Label: "Max items per fetch", Editable: true, Min: intPtr(1), Max: intPtr(500), Default: 100},
			{Key: "verify_tls", Type: models.FieldTypeBoolean, Label: "Verify TLS", Editable: true, Default: true},
		},
		"api": {
			{Key: "api_key", Type: models.FieldTypeSecret, Label: "API key", Required: true, Editable: true},
			{Key: "page_size", Type: models.FieldTypeInteger, Label: "Page size", Editable: true, Min: intPtr(1), Max: intPtr(200), Default: 50},
			{Key: "format", Type: models.FieldTypeSelect, Label: "Response format", Editable: true, Options: []models.Option{
				{Value: "json", Label: "JSON"},
				{Value: "xml", Label: "XML"},
			}, Default: "json"},
		},
		"scraper": {
			{Key: "selector", Type: models.FieldTypeString, Label: "CSS selector", Required: true, Editable: true},
			{Key: "render_js", Type: models.FieldTypeBoolean, Label: "Render JavaScript", Editable: true},
			{Key: "delay_seconds", Type: models.FieldTypeInteger, Label: "Delay between pages (s)", Editable: true, Min: intPtr(0), Max: intPtr(60), Default: 1},
		},
	},
	"connection": {
		"postgres": {
			{Key: "dsn", Type: models.FieldTypeSecret, Label: "DSN", Required: true, Editable: true},
			{Key: "pool_size", Type: models.FieldTypeInteger, Label: "Pool size", Editable: true, Min: intPtr(1), Max: intPtr(64), Default: 8},
		},
		"s3": {
			{Key: "bucket", Type: models.FieldTypeString, Label: "Bucket", Required: true, Editable: true},
			{Key: "region", Type: models.FieldTypeString, Label: "Region", Required: true, Editable: true, Default: "us-east-1"},
			{Key: "access_key", Type: models.FieldTypeSecret, Label: "Access key", Required: true, Editable: true},
			{Key: "secret_key", Type: models.FieldTypeSecret, Label: "Secret key", Required: true, Editable: true},
		},
		"webhook": {
			{Key: "endpoint", Type: models.FieldTypeString, Label: "Endpoint URL", Required: true, Editable: true},
			{Key: "auth_token", Type: models.FieldTypeSecret, Label: "Auth token", Editable: true},
		},
	},
	"exporter": {
		"rss": {
			{Key: "path", Type: models.FieldTypePath, Label: "Output path", Required: true, Editable: true},
			{Key: "max_items", Type: models.FieldTypeInteger, Label: "Items in feed", Editable: true, Min: intPtr(1), Max: intPtr(200), Default: 50},
		},
		"json_api": {
			{Key: "route", Type: models.FieldTypeString, Label: "Route", Required: true, Editable: true, Default: "/export"},
			{Key: "pretty", Type: models.FieldTypeBoolean, Label: "Pretty print", Editable: true},
		},
		"email_digest": {
			{Key: "recipients", Type: models.FieldTypeString, Label: "Recipients (comma separated)", Required: true, Editable: true},
			{Key: "schedule", Type: models.FieldTypeSelect, Label: "Schedule", Editable: true, Options: []models.Option{
				{Value: "daily", Label: "Daily"},
				{Value: "weekly", Label: "Weekly"},
			}, Default: "daily"},
			{Key: "smtp_password", Type: models.FieldTypeSecret, Label: "SMTP password", Editable: true},
		},
	},
}

// lookupSchema returns the schema for a kind/type pair.
func lookupSchema(kind, typ string) (models.Schema, bool) {
	kinds, ok := builtinSchemas[kind]
	if !ok {
		return nil, false
	}
	schema, ok := kinds[typ]
	return schema, ok
}
