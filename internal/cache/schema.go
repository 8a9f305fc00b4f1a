package cache

import (
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// recordSchema describes the snapshot file: an array of note records.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["timestamp", "content"],
    "properties": {
      "timestamp": {"type": "string", "minLength": 1},
      "filename": {"type": "string"},
      "content": {"type": "string"}
    },
    "additionalProperties": false
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile([]byte(recordSchema))
	if err != nil {
		return nil, fmt.Errorf("cache: compile schema: %w", err)
	}
	return schema, nil
}

func validateSnapshot(schema *jsonschema.Schema, data []byte) error {
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
