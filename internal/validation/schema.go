package validation

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidTask is wrapped by every task validation failure
var ErrInvalidTask = errors.New("invalid task")

//go:embed schemas/task.json
var taskSchemaJSON []byte

var (
	taskSchemaOnce sync.Once
	taskSchema     *gojsonschema.Schema
	taskSchemaErr  error
)

// LoadSchema compiles a JSON schema from raw bytes
func LoadSchema(schemaData []byte) (*gojsonschema.Schema, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return schema, nil
}

// TaskSchema returns the compiled schema for task request payloads
func TaskSchema() (*gojsonschema.Schema, error) {
	taskSchemaOnce.Do(func() {
		taskSchema, taskSchemaErr = LoadSchema(taskSchemaJSON)
	})
	return taskSchema, taskSchemaErr
}

// ValidateDocument validates a JSON document against a schema
func ValidateDocument(document []byte, schema *gojsonschema.Schema) error {
	documentLoader := gojsonschema.NewBytesLoader(document)
	result, err := schema.Validate(documentLoader)
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", ErrInvalidTask, err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidTask, strings.Join(problems, "; "))
	}

	return nil
}

// ValidateTaskPayload checks a raw task request body against the task schema
func ValidateTaskPayload(payload []byte) error {
	schema, err := TaskSchema()
	if err != nil {
		return err
	}
	return ValidateDocument(payload, schema)
}
