// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package attrdoc

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/yumeengine/attrcore/pkg/variant"
)

// SchemaID is the $id of the document schema.
const SchemaID = "https://yumeengine.dev/schemas/attributes.schema.json"

var compiled = sync.OnceValues(compileSchema)

// JSONSchemaExtend restricts the node type to registered type names.
func (Node) JSONSchemaExtend(s *jsonschema.Schema) {
	prop, ok := s.Properties.Get("type")
	if !ok {
		return
	}
	prop.Enum = make([]any, 0, variant.MaxTypes)
	for _, t := range variant.Types() {
		prop.Enum = append(prop.Enum, t.Name())
	}
}

// GenerateSchema generates the JSON Schema of Document.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{}
	schema := r.Reflect(&Document{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Attribute Document"
	schema.Description = "Entity attributes stored as typed variant nodes"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates a JSON or YAML document against the schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("SCHEMA_INVALID").Errorf("document is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("SCHEMA_INVALID").Hint("document must be JSON or YAML").Wrap(err)
	}

	sch, err := compiled()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code("SCHEMA_INVALID").Wrap(err)
	}
	return nil
}

// ValidateDocument validates an already decoded document, whatever codec
// it came from.
func ValidateDocument(doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return oops.Code("SCHEMA_INVALID").Wrap(err)
	}
	return ValidateSchema(data)
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("attributes.schema.json", schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE").Wrap(err)
	}
	sch, err := c.Compile("attributes.schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE").Wrap(err)
	}
	return sch, nil
}

// toJSONTypes converts YAML-decoded values into the shapes a JSON decoder
// would produce.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toJSONTypes(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toJSONTypes(e)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return val
	}
}
