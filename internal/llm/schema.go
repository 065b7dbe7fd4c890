// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package llm

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Schema is a named JSON schema used as a strict response format.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Tool is a function the model may call.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// GenerateSchema reflects T into an inlined JSON schema with additional
// properties disallowed, as required by strict structured outputs.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("llm: marshal schema for %T: %v", v, err))
	}
	def := map[string]any{}
	if err := json.Unmarshal(raw, &def); err != nil {
		panic(fmt.Sprintf("llm: decode schema for %T: %v", v, err))
	}
	delete(def, "$schema")
	delete(def, "$id")
	return def
}

// NewSchema builds a response schema for T.
func NewSchema[T any](name, description string) *Schema {
	return &Schema{Name: name, Description: description, Definition: GenerateSchema[T]()}
}

// NewTool builds a function definition whose parameters are reflected from T.
func NewTool[T any](name, description string) Tool {
	return Tool{Name: name, Description: description, Parameters: GenerateSchema[T]()}
}
