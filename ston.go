// Package ston implements the Structured Object Notation library:
// parsing, structural validation, document resolution, canonical
// serialization, and equivalence comparison for a richly-typed,
// JSON-like textual format. See spec.md for the format grammar and
// internal/*'s package docs for each layer's implementation.
package ston

import (
	"io"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/document"
	"github.com/oxhq/ston/internal/equiv"
	"github.com/oxhq/ston/internal/parser"
	"github.com/oxhq/ston/internal/writer"
)

// Entity is the parsed, validated abstract representation of one STON
// value: a simple value, a complex value, or a reference. It is
// immutable once returned by ParseEntity/ReadEntity.
type Entity = ast.Entity

// Document is a resolved entity tree: global identifiers, parent
// contexts, member maps, and references are all indexed and resolved,
// and the construction-dependency graph has been proven acyclic.
type Document = document.Document

// DocumentOptions configures extension-name acceptance and the lenient
// duplicate-handling mode described in SPEC_FULL.md.
type DocumentOptions = document.Options

// ParseEntity parses text as exactly one entity: a document text is a
// single entity followed by optional insignificant content and EOS.
func ParseEntity(text string) (Entity, error) {
	return parser.ParseEntity(text)
}

// ReadEntity parses the full contents of r as exactly one entity.
func ReadEntity(r io.Reader) (Entity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseEntity(string(data))
}

// ParseDocument parses text as a single entity and resolves it into a
// Document: global identifiers, parent contexts, member maps, every
// reference, and the construction order are all validated and indexed.
// Each extension policy parameter is independently optional; an
// extension name is accepted iff it is in the corresponding set or its
// predicate returns true.
func ParseDocument(
	text string,
	extensionTypesAllowed map[string]bool,
	extensionMembersAllowed map[string]bool,
	extensionTypePredicate func(string) bool,
	extensionMemberPredicate func(string) bool,
) (*Document, error) {
	e, err := ParseEntity(text)
	if err != nil {
		return nil, err
	}
	return document.New(e, DocumentOptions{
		ExtensionTypesAllowed:    extensionTypesAllowed,
		ExtensionMembersAllowed:  extensionMembersAllowed,
		ExtensionTypePredicate:   extensionTypePredicate,
		ExtensionMemberPredicate: extensionMemberPredicate,
	})
}

// ParseDocumentLenient is ParseDocument's additive lenient-mode entry
// point (SPEC_FULL.md): duplicate-member and duplicate-global-identifier
// conditions are demoted to Document.Diagnostics instead of aborting
// resolution. Cycles and unknown references still abort, since no
// coherent document exists to return in that case.
func ParseDocumentLenient(
	text string,
	extensionTypesAllowed map[string]bool,
	extensionMembersAllowed map[string]bool,
	extensionTypePredicate func(string) bool,
	extensionMemberPredicate func(string) bool,
) (*Document, error) {
	e, err := ParseEntity(text)
	if err != nil {
		return nil, err
	}
	return document.New(e, DocumentOptions{
		ExtensionTypesAllowed:    extensionTypesAllowed,
		ExtensionMembersAllowed:  extensionMembersAllowed,
		ExtensionTypePredicate:   extensionTypePredicate,
		ExtensionMemberPredicate: extensionMemberPredicate,
		Lenient:                  true,
	})
}

// ReadDocument parses the full contents of r and resolves it into a
// Document, per ParseDocument.
func ReadDocument(
	r io.Reader,
	extensionTypesAllowed map[string]bool,
	extensionMembersAllowed map[string]bool,
	extensionTypePredicate func(string) bool,
	extensionMemberPredicate func(string) bool,
) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseDocument(string(data), extensionTypesAllowed, extensionMembersAllowed, extensionTypePredicate, extensionMemberPredicate)
}

// WriteEntity writes e's canonical textual form to w.
func WriteEntity(w io.Writer, e Entity) error {
	return writer.WriteEntity(w, e)
}

// WriteDocument writes d's core entity's canonical textual form to w.
// The document's derived indices (globals, member maps, construction
// order) are resolution-time artifacts, not part of the persisted
// textual form; re-parsing the written text and re-resolving it
// reconstructs them.
func WriteDocument(w io.Writer, d *Document) error {
	return writer.WriteEntity(w, d.Core())
}

// ToCanonicalForm returns e's canonical textual form — the same writer
// that backs WriteEntity, so round-tripping and idempotence (spec.md §8)
// hold for this convenience exactly as they do for WriteEntity.
func ToCanonicalForm(e Entity) (string, error) {
	return writer.CanonicalString(e)
}

// ToCanonicalFormDocument is ToCanonicalForm for a resolved Document's
// core entity.
func ToCanonicalFormDocument(d *Document) (string, error) {
	return writer.CanonicalString(d.Core())
}

// ToPlainForm returns e's textual form with Number values expanded into
// plain positional notation instead of the canonical
// significand/exponent form. A number whose plain expansion would be
// unreasonably large (e.g. 1e1000000000) fails with an
// UnsupportedError. The output is not canonical; reparsing it and
// writing canonically recovers the canonical form.
func ToPlainForm(e Entity) (string, error) {
	return writer.String(e, writer.Options{PlainNumbers: true})
}

// EntitiesEqual reports whether a and b are semantically equivalent
// under d's resolution of any references they contain (spec.md §4.6).
func EntitiesEqual(d *Document, a, b Entity) bool {
	return equiv.EntitiesEqual(d, a, b)
}

// TypesEqual reports whether a and b are structurally the same type:
// named types compare by (isExtension, name, ordered parameters),
// collection types by element type, and union types by their ordered
// permitted-type sequence (spec.md §4.6). Type equivalence never depends
// on a document since types carry no references.
func TypesEqual(a, b ast.Type) bool {
	return equiv.TypesEqual(a, b)
}
