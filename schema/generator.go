/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON schemas for the documents contextctl reads,
// so editors can validate conversation and test set files before upload.
package schema

import (
	"fmt"
	"slices"

	"chainguard.dev/getcontext/contextapi"
	"github.com/invopop/jsonschema"
)

// Kind names a document type accepted on the command line.
type Kind string

const (
	KindConversation Kind = "conversation"
	KindTestSet      Kind = "test-set"
)

var documents = map[Kind]struct {
	value       any
	title       string
	description string
}{
	KindConversation: {
		value:       &contextapi.Conversation{},
		title:       "Conversation",
		description: "A conversation logged with contextctl log conversation.",
	},
	KindTestSet: {
		value:       &contextapi.TestSet{},
		title:       "Test set",
		description: "A test set version created with contextctl log test-set.",
	},
}

// Kinds returns the supported document kinds in a stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(documents))
	for k := range documents {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Generator wraps jsonschema.Reflector with the defaults used for input files.
type Generator struct {
	reflector jsonschema.Reflector
}

// NewGenerator returns a generator producing self-contained schemas that
// reject unknown fields, matching the strict decoding of input files.
func NewGenerator() *Generator {
	return &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			DoNotReference:             true,
		},
	}
}

// Reflect returns the JSON schema for the provided value.
func (g *Generator) Reflect(v any) *jsonschema.Schema {
	return g.reflector.Reflect(v)
}

// For returns the titled schema of a document kind.
func (g *Generator) For(kind Kind) (*jsonschema.Schema, error) {
	doc, ok := documents[kind]
	if !ok {
		return nil, fmt.Errorf("unknown document kind %q, expected one of %v", kind, Kinds())
	}
	s := g.Reflect(doc.value)
	s.Title = doc.title
	s.Description = doc.description
	return s, nil
}

// For returns the schema of a document kind using a default generator.
func For(kind Kind) (*jsonschema.Schema, error) {
	return NewGenerator().For(kind)
}
