package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/meghashyamc/roomradar/property"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "catalog.json"

//go:embed schema.json
var schemaJSON []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// File is the on-disk shape of a seed catalog.
type File struct {
	Properties []property.Record `json:"properties"`
}

func catalogSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaResource, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("could not add catalog schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaResource)
	})
	return compiledSchema, compileErr
}

// ValidateCatalog checks raw catalog JSON against the embedded schema.
func ValidateCatalog(body []byte) error {
	schema, err := catalogSchema()
	if err != nil {
		return err
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("catalog is not valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

// LoadFile reads and validates a seed catalog file.
func LoadFile(path string) ([]property.Record, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog file: %w", err)
	}

	if err := ValidateCatalog(body); err != nil {
		return nil, err
	}

	var file File
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("could not decode catalog file: %w", err)
	}
	return file.Properties, nil
}
