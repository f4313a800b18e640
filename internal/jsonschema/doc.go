// Package jsonschema generates the JSON Schema used to declare tool
// parameters from plain Go structs. See [GenerateJSONSchema].
package jsonschema
