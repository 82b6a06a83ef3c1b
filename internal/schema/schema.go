// Package schema validates incoming requests against the embedded JSON
// schemas before any handler touches the store.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ListRequest   = "todo/list-request/1-0-0"
	StoreRequest  = "todo/store-request/1-0-0"
	StoreBody     = "todo/store-body/1-0-0"
	UpdateRequest = "todo/update-request/1-0-0"
)

//go:embed schemas/*.json
var files embed.FS

var sources = map[string]string{
	ListRequest:   "schemas/list-request.json",
	StoreRequest:  "schemas/store-request.json",
	StoreBody:     "schemas/store-body.json",
	UpdateRequest: "schemas/update-request.json",
}

type ValidationError struct {
	SchemaID string
	Path     string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("could not validate request to schema %s: %s: %s", e.SchemaID, e.Path, e.Message)
	}
	return fmt.Sprintf("could not validate request to schema %s: %s", e.SchemaID, e.Message)
}

type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	for id, path := range sources {
		data, err := files.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", id, err)
		}
		if err := compiler.AddResource(schemaURL(id), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", id, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(sources))}
	for id := range sources {
		compiled, err := compiler.Compile(schemaURL(id))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", id, err)
		}
		v.schemas[id] = compiled
	}

	return v, nil
}

func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks any JSON-encodable value against the schema with the given id.
func (v *Validator) Validate(id string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &ValidationError{SchemaID: id, Message: fmt.Sprintf("payload is not JSON encodable: %v", err)}
	}
	return v.ValidateJSON(id, data)
}

func (v *Validator) ValidateJSON(id string, data []byte) error {
	compiled, ok := v.schemas[id]
	if !ok {
		return fmt.Errorf("unknown schema %s", id)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return &ValidationError{SchemaID: id, Message: "invalid JSON: " + err.Error()}
	}

	if err := compiled.Validate(doc); err != nil {
		return toValidationError(id, err)
	}
	return nil
}

func schemaURL(id string) string {
	return "mem://schemas/" + id + ".json"
}

func toValidationError(id string, err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{SchemaID: id, Message: err.Error()}
	}

	leaf := firstLeaf(ve)
	return &ValidationError{
		SchemaID: id,
		Path:     pointerToPath(leaf.InstanceLocation),
		Message:  leaf.Message,
	}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// pointerToPath turns "/pathParameters/status" into "pathParameters.status".
func pointerToPath(pointer string) string {
	return strings.ReplaceAll(strings.TrimPrefix(pointer, "/"), "/", ".")
}
