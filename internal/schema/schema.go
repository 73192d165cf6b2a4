// Package schema validates serialized shipment records against the embedded
// output schema.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/shipment_records.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// recordsSchema compiles the embedded schema once per process.
func recordsSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schemas/shipment_records.json")
		if err != nil {
			compileErr = fmt.Errorf("read embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("shipment_records.json", bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("shipment_records.json")
	})
	return compiled, compileErr
}

// ValidateRecords checks that data is a JSON array of shipment records
// satisfying the output schema.
func ValidateRecords(data []byte) error {
	s, err := recordsSchema()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal records: %w", err)
	}

	if err := s.Validate(v); err != nil {
		return fmt.Errorf("records do not match schema: %w", err)
	}
	return nil
}
