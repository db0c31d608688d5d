package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/dshills/modalkeys/internal/input/keymap"
)

// SchemaID identifies the keymap file schema.
const SchemaID = "https://github.com/dshills/modalkeys/keymap.schema.json"

// KeymapSchema reflects the JSON schema of a keymap file.
func KeymapSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&keymap.Keymap{})
	schema.ID = SchemaID
	schema.Title = "modalkeys keymap"
	schema.Description = "Bindings of one mode, evaluated in order after the built-in defaults"
	return schema
}

// ConfigSchema reflects the JSON schema of the config file.
func ConfigSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		FieldNameTag:   "json",
	}
	schema := r.Reflect(&Config{})
	schema.Title = "modalkeys configuration"
	return schema
}

// MarshalSchema renders a schema as indented JSON.
func MarshalSchema(schema *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
