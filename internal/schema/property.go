package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/propertydesk/property-broker/constants"
)

// BuildPropertySchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing one extracted listing record. It gates what the
// ingestion pipeline will persist.
func BuildPropertySchema() map[string]any {
	floorValues := constants.AllFloors()

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"location": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"city": map[string]any{"type": "string", "minLength": 1},
					"area": map[string]any{"type": "string", "minLength": 1},
				},
				"required": []string{"city", "area"},
			},
			"propertyId": map[string]any{"type": "string"},
			"size": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"value": map[string]any{"type": "number", "exclusiveMinimum": 0.0},
					"unit": map[string]any{
						"type": "string",
						"enum": []string{string(constants.UnitGaj), string(constants.UnitSqft), string(constants.UnitYard)},
					},
				},
				"required": []string{"value", "unit"},
			},
			"floors": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": floorValues},
			},
			"bedrooms": map[string]any{"type": "integer", "minimum": 1, "maximum": 20},
			"detail":   map[string]any{"type": "string"},
		},
		"required": []string{"location"},
	}
}

// Validator validates listing records against the compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the property schema once for reuse.
func NewValidator() (*Validator, error) {
	b, err := json.Marshal(BuildPropertySchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("property.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("property.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks v (any JSON-marshalable record) against the schema.
func (va *Validator) Validate(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := va.schema.Validate(decoded); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
