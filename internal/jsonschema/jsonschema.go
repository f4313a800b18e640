package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema accepted by function-calling APIs for
// tool parameters.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
}

// GenerateJSONSchema derives a schema for T by reflection.
//
// Struct fields are named by their json tag. A field is required unless it is
// a pointer or tagged omitempty; `jsonschema:"required"` forces it. Supported
// tags:
//
//	jsonschema:"enum=fact,enum=mannerism,required"
//	jsonschema_description:"free text, commas allowed"
//
// Recursive struct types are rejected.
func GenerateJSONSchema[T any]() (*Schema, error) {
	return generate(reflect.TypeFor[T](), map[reflect.Type]bool{})
}

func generate(t reflect.Type, inProgress map[reflect.Type]bool) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Slice, reflect.Array:
		items, err := generate(t.Elem(), inProgress)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		return &Schema{Type: "object"}, nil
	case reflect.Struct:
		return generateStruct(t, inProgress)
	default:
		return nil, fmt.Errorf("jsonschema: unsupported kind %s", t.Kind())
	}
}

func generateStruct(t reflect.Type, inProgress map[reflect.Type]bool) (*Schema, error) {
	if inProgress[t] {
		return nil, fmt.Errorf("jsonschema: recursive type %s", t)
	}
	inProgress[t] = true
	defer delete(inProgress, t)

	schema := &Schema{Type: "object"}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := jsonFieldName(field)
		if skip {
			continue
		}

		fieldSchema, err := generate(field.Type, inProgress)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		forced, err := applyTags(field, fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if schema.Properties == nil {
			schema.Properties = map[string]*Schema{}
		}
		schema.Properties[name] = fieldSchema
		if forced || (field.Type.Kind() != reflect.Pointer && !omitEmpty) {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema, nil
}

func jsonFieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(options, "omitempty"), false
}

// applyTags reads the jsonschema tags of field into schema and reports
// whether the field is explicitly required.
func applyTags(field reflect.StructField, schema *Schema) (bool, error) {
	if description, ok := field.Tag.Lookup("jsonschema_description"); ok {
		schema.Description = description
	}

	tag := field.Tag.Get("jsonschema")
	if tag == "" {
		return false, nil
	}

	required := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case key == "required" && !hasValue:
			required = true
		case key == "description":
			schema.Description = value
		case key == "enum":
			enumValue, err := parseEnumValue(field.Type, value)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, enumValue)
		}
	}
	return required, nil
}

func parseEnumValue(t reflect.Type, value string) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(value, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(value, 64)
	case reflect.Bool:
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("enum not supported for %s", t)
	}
}

// HasProperties reports whether the schema declares at least one property.
// Gemini rejects object parameters with an empty property set, so callers
// drop such schemas from declarations.
func (s *Schema) HasProperties() bool {
	return s != nil && len(s.Properties) > 0
}

// String returns the compact JSON encoding of the schema.
func (s *Schema) String() string {
	encoded, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(encoded)
}
