// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output implements the JSON contract of the parse command: a
// single line holding either an array of student records or a one-element
// array with an error record.
package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/result-parser/internal/extract"
	"github.com/pdiddy/result-parser/pkg/types"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "output.schema.json"

var (
	// ErrNoInput is reported when the parse command gets no file path.
	ErrNoInput = errors.New(types.NoFileProvided)

	// ErrParseFailed marks parse output that holds an error record.
	ErrParseFailed = errors.New("parse output holds an error")
)

// Write encodes the outcome of a parse run to w. A failed run, or a
// success that cannot be encoded, is written as an error array, so w
// always receives valid JSON.
func Write(w io.Writer, o extract.Outcome) error {
	if o.Failed() {
		return WriteError(w, o.Err)
	}

	records := o.Records
	if records == nil {
		records = []types.StudentRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return WriteError(w, fmt.Errorf("encoding results: %w", err))
	}
	return writeLine(w, data)
}

// WriteError writes [{"error": err.Error()}] to w.
func WriteError(w io.Writer, err error) error {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	data, encErr := json.Marshal([]types.ErrorRecord{{Error: msg}})
	if encErr != nil {
		return encErr
	}
	return writeLine(w, data)
}

func writeLine(w io.Writer, data []byte) error {
	_, err := w.Write(append(data, '\n'))
	return err
}

// Schema returns the JSON Schema (draft 2020-12) of the parse output.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// Validate checks that data is a parse output document.
func Validate(data []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("does not match output schema: %w", err)
	}
	return nil
}

// Decode validates data and returns its student records. An error array
// yields an error wrapping ErrParseFailed with the recorded message.
func Decode(data []byte) ([]types.StudentRecord, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var failed []types.ErrorRecord
	if err := json.Unmarshal(data, &failed); err == nil && len(failed) == 1 && failed[0].Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, failed[0].Error)
	}

	records := []types.StudentRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return records, nil
}
