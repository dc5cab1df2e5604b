// Package compiler turns raw definition documents into domain definitions.
//
// JSON and YAML documents are first decoded into generic maps and then
// mapped onto dto.Automaton with mapstructure, so both formats share one
// schema. HCL documents are decoded with gohcl and flattened into the same
// shape before compilation.
package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/thicket/internal/dto"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Compiler converts documents into definitions.
type Compiler struct {
	epsilonMarker string
}

// Option configures the Compiler.
type Option func(*Compiler)

// WithEpsilonMarker treats the given label key as an epsilon move, in
// addition to "". This is meant for documents written for tools that
// reserve a character such as "*"; in such documents the marker can no
// longer be used as a literal symbol.
func WithEpsilonMarker(marker string) Option {
	return func(c *Compiler) {
		c.epsilonMarker = marker
	}
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileJSON parses a JSON document.
func (c *Compiler) CompileJSON(data []byte) (*domain.Definition, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON definition: %w", err)
	}
	return c.CompileMap(raw)
}

// CompileYAML parses a YAML document.
func (c *Compiler) CompileYAML(data []byte) (*domain.Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML definition: %w", err)
	}
	return c.CompileMap(raw)
}

// CompileHCL parses an HCL document. filename is only used in diagnostics.
func (c *Compiler) CompileHCL(src []byte, filename string) (*domain.Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL definition %s: %w", filename, diags)
	}

	var doc dto.HCLAutomaton
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL definition %s: %w", filename, diags)
	}
	return c.Compile(doc.Flatten())
}

// CompileMap maps a generic document (as produced by JSON or YAML decoders)
// onto the definition schema.
func (c *Compiler) CompileMap(raw map[string]any) (*domain.Definition, error) {
	if raw == nil {
		return nil, &DocumentError{Field: "", Reason: "document is empty"}
	}

	var doc dto.Automaton
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &doc,
		// YAML reads keys such as 0 and 1 as integers; binary alphabets
		// are common enough to accept them as symbols.
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid definition document: %w", err)
	}
	return c.Compile(&doc)
}

// Compile converts the generic document into a definition.
// All label errors are reported together, in a stable order.
func (c *Compiler) Compile(doc *dto.Automaton) (*domain.Definition, error) {
	if doc.Start == "" {
		return nil, &DocumentError{Field: "start_state", Reason: "is required"}
	}

	def := domain.NewDefinition(doc.Start, doc.Accept...)
	def.Name = doc.Name
	def.Description = doc.Description

	var errs []error
	froms := make([]string, 0, len(doc.Transitions))
	for from := range doc.Transitions {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	for _, from := range froms {
		moves := doc.Transitions[from]
		keys := make([]string, 0, len(moves))
		for key := range moves {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			label, err := c.label(key)
			if err != nil {
				errs = append(errs, &DocumentError{
					Field:  fmt.Sprintf("transitions.%s.%s", from, key),
					Reason: err.Error(),
				})
				continue
			}
			def.AddTransition(from, label, moves[key]...)
		}
		if _, ok := def.Transitions[from]; !ok {
			// Keep states declared with an empty move map.
			def.Transitions[from] = make(map[domain.Label][]string)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return def, nil
}

func (c *Compiler) label(key string) (domain.Label, error) {
	if c.epsilonMarker != "" && key == c.epsilonMarker {
		return domain.Epsilon, nil
	}
	return domain.ParseLabel(key)
}
