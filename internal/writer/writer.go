// Package writer implements the canonical textual writer of spec.md
// §4.5: a recursive traversal that emits the unique, deterministic
// normalized form used both as serialization output and as the basis
// for structural equivalence (spec.md §8's round-trip and idempotence
// properties both depend on this package alone, the same writer backing
// both WriteEntity and ToCanonicalForm per SPEC_FULL.md).
package writer

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
)

// Options selects output variations. The zero value is the canonical
// form.
type Options struct {
	// PlainNumbers renders Number values in plain positional notation
	// instead of the canonical significand/exponent form. A number whose
	// plain expansion would exceed maxPlainNumberLen digits fails with
	// an UnsupportedError. The output is no longer canonical.
	PlainNumbers bool
}

// maxPlainNumberLen bounds the digit count of a plain-form number
// expansion; 1e1000000000 in plain form is a gigabyte of zeros.
const maxPlainNumberLen = 1 << 20

// WriteEntity emits e's canonical textual form to w.
func WriteEntity(w io.Writer, e ast.Entity) error {
	return WriteEntityOptions(w, e, Options{})
}

// WriteEntityOptions emits e's textual form to w per opts.
func WriteEntityOptions(w io.Writer, e ast.Entity, opts Options) error {
	s, err := String(e, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// CanonicalString returns e's canonical textual form.
func CanonicalString(e ast.Entity) (string, error) {
	return String(e, Options{})
}

// String returns e's textual form per opts.
func String(e ast.Entity, opts Options) (string, error) {
	em := &emitter{opts: opts}
	if err := em.entity(e); err != nil {
		return "", err
	}
	return em.sb.String(), nil
}

type emitter struct {
	sb   strings.Builder
	opts Options
}

func (em *emitter) entity(e ast.Entity) error {
	if e == nil {
		return core.NewValueError("Cannot write a nil entity.")
	}
	if id := e.GlobalIdentifier(); id != nil {
		em.sb.WriteByte('&')
		em.sb.WriteString(*id)
		em.sb.WriteByte('=')
	}
	switch v := e.(type) {
	case *ast.ReferenceEntity:
		return em.address(v.Address)
	case *ast.SimpleEntity:
		if v.Type != nil {
			em.declaredType(v.Type)
		}
		return em.simpleValue(v.Value)
	case *ast.ComplexEntity:
		if v.Type != nil {
			em.declaredType(v.Type)
		}
		return em.complex(v)
	default:
		return core.NewImplementationError("ast.Entity", "unknown", []string{"*ast.SimpleEntity", "*ast.ComplexEntity", "*ast.ReferenceEntity"})
	}
}

func (em *emitter) declaredType(t ast.Type) {
	em.sb.WriteByte('<')
	em.typeExpr(t)
	em.sb.WriteByte('>')
}

// typeExpr writes t as it appears inside an enclosing `<...>` (or as a
// collection-suffixed bare atom), without adding its own outer
// delimiters — callers add those where the grammar calls for them.
func (em *emitter) typeExpr(t ast.Type) {
	switch v := t.(type) {
	case *ast.NamedType:
		if v.IsExtension {
			em.sb.WriteByte('!')
		}
		em.quotedString(v.Name)
		if len(v.Parameters) > 0 {
			em.sb.WriteByte('<')
			for i, p := range v.Parameters {
				if i > 0 {
					em.sb.WriteByte(',')
				}
				em.typeExpr(p)
			}
			em.sb.WriteByte('>')
		}
	case *ast.CollectionType:
		em.unionWrapped(v.Element)
		em.sb.WriteString("[...]")
	case *ast.UnionType:
		for i, p := range v.Permitted {
			if i > 0 {
				em.sb.WriteByte('|')
			}
			em.unionWrapped(p)
		}
	default:
		panic(core.NewImplementationError("ast.Type", "unknown", []string{"*ast.NamedType", "*ast.CollectionType", "*ast.UnionType"}))
	}
}

// unionWrapped writes t wrapped in `<...>` iff t is itself a union type
// (spec.md §4.5: collection element types and union members wrap an
// inner union this way; every other atom is written bare).
func (em *emitter) unionWrapped(t ast.Type) {
	if _, ok := t.(*ast.UnionType); ok {
		em.sb.WriteByte('<')
		em.typeExpr(t)
		em.sb.WriteByte('>')
		return
	}
	em.typeExpr(t)
}

func (em *emitter) simpleValue(v ast.SimpleValue) error {
	switch v.DataType {
	case ast.Null:
		em.sb.WriteString("null")
	case ast.Number:
		if em.opts.PlainNumbers {
			plain, err := plainNumber(v.Content)
			if err != nil {
				return err
			}
			em.sb.WriteString(plain)
			return nil
		}
		em.sb.WriteString(v.Content)
	case ast.Binary:
		em.binary(v.Content)
	case ast.Named:
		em.sb.WriteString(v.Content)
	case ast.Text:
		em.quotedString(v.Content)
	case ast.Code:
		em.codeLiteral(v.Content)
	default:
		return core.NewImplementationError("ast.DataType", v.DataType.String(), []string{"Null", "Number", "Binary", "Named", "Text", "Code"})
	}
	return nil
}

// plainNumber expands a normalized significand/exponent content into
// positional notation, e.g. "15e-1" into "1.5" and "12e3" into "12000".
func plainNumber(content string) (string, error) {
	if content == "0" {
		return "0", nil
	}
	sig, expStr, _ := strings.Cut(content, "e")
	neg := strings.HasPrefix(sig, "-")
	digits := strings.TrimPrefix(sig, "-")
	exp, ok := new(big.Int).SetString(expStr, 10)
	if !ok {
		return "", core.NewImplementationError("number content", content, []string{"normalized significand/exponent"})
	}
	if !exp.IsInt64() || exp.Int64() > maxPlainNumberLen || exp.Int64() < -maxPlainNumberLen {
		return "", core.NewUnsupportedError("A number literal is too large to write in plain form.")
	}
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	e := int(exp.Int64())
	switch {
	case e >= 0:
		if len(digits)+e > maxPlainNumberLen {
			return "", core.NewUnsupportedError("A number literal is too large to write in plain form.")
		}
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", e))
	case -e < len(digits):
		point := len(digits) + e
		sb.WriteString(digits[:point])
		sb.WriteByte('.')
		sb.WriteString(digits[point:])
	default:
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -e-len(digits)))
		sb.WriteString(digits)
	}
	return sb.String(), nil
}

func (em *emitter) binary(content string) {
	neg := strings.HasPrefix(content, "-")
	magnitude := content
	if neg {
		magnitude = content[1:]
	}
	if magnitude == "" {
		em.sb.WriteString("0n")
		return
	}
	if neg {
		em.sb.WriteByte('-')
	}
	em.sb.WriteString("0x")
	em.sb.WriteString(magnitude)
}

func (em *emitter) quotedString(content string) {
	em.sb.WriteByte('"')
	for _, r := range content {
		switch r {
		case '\\':
			em.sb.WriteString(`\\`)
		case '"':
			em.sb.WriteString(`\"`)
		case '\b':
			em.sb.WriteString(`\b`)
		case '\f':
			em.sb.WriteString(`\f`)
		case '\n':
			em.sb.WriteString(`\n`)
		case '\r':
			em.sb.WriteString(`\r`)
		case '\t':
			em.sb.WriteString(`\t`)
		default:
			if r < 0x20 || r >= 0x7f {
				fmt.Fprintf(&em.sb, `\u%04x`, r)
			} else {
				em.sb.WriteRune(r)
			}
		}
	}
	em.sb.WriteByte('"')
}

func (em *emitter) codeLiteral(content string) {
	em.sb.WriteByte('`')
	for _, r := range content {
		if r == '`' {
			em.sb.WriteString("\\`")
			continue
		}
		em.sb.WriteRune(r)
	}
	em.sb.WriteByte('`')
}

func (em *emitter) complex(e *ast.ComplexEntity) error {
	if e.Construction != nil {
		if err := em.construction(*e.Construction); err != nil {
			return err
		}
	}
	if e.MemberInit != nil {
		if err := em.memberInit(*e.MemberInit); err != nil {
			return err
		}
	}
	if e.CollectionInit != nil {
		if err := em.collectionInit(*e.CollectionInit); err != nil {
			return err
		}
	}
	return nil
}

func (em *emitter) construction(c ast.Construction) error {
	em.sb.WriteByte('(')
	first := true
	for _, p := range c.Positional {
		if !first {
			em.sb.WriteByte(',')
		}
		first = false
		em.sb.WriteByte(':')
		if err := em.entity(p); err != nil {
			return err
		}
	}
	for _, n := range c.Named {
		if !first {
			em.sb.WriteByte(',')
		}
		first = false
		em.quotedString(n.Name)
		em.sb.WriteByte(':')
		if err := em.entity(n.Value); err != nil {
			return err
		}
	}
	em.sb.WriteByte(')')
	return nil
}

func (em *emitter) memberInit(m ast.MemberInit) error {
	em.sb.WriteByte('{')
	for i, b := range m.Bindings {
		if i > 0 {
			em.sb.WriteByte(',')
		}
		if err := em.bindingKey(b.Key); err != nil {
			return err
		}
		em.sb.WriteByte(':')
		if err := em.entity(b.Value); err != nil {
			return err
		}
	}
	em.sb.WriteByte('}')
	return nil
}

func (em *emitter) collectionInit(l ast.CollectionInit) error {
	em.sb.WriteByte('[')
	for i, el := range l.Elements {
		if i > 0 {
			em.sb.WriteByte(',')
		}
		if err := em.entity(el); err != nil {
			return err
		}
	}
	em.sb.WriteByte(']')
	return nil
}

func (em *emitter) bindingKey(k ast.BindingKey) error {
	switch v := k.(type) {
	case *ast.BindingName:
		em.bindingName(v)
		return nil
	case *ast.BindingIndex:
		return em.bindingIndex(v)
	default:
		return core.NewImplementationError("ast.BindingKey", "unknown", []string{"*ast.BindingName", "*ast.BindingIndex"})
	}
}

func (em *emitter) bindingName(n *ast.BindingName) {
	if n.IsExtension {
		em.sb.WriteByte('!')
	}
	em.quotedString(n.Name)
}

func (em *emitter) bindingIndex(idx *ast.BindingIndex) error {
	em.sb.WriteByte('[')
	for i, p := range idx.Parameters {
		if i > 0 {
			em.sb.WriteByte(',')
		}
		if err := em.entity(p); err != nil {
			return err
		}
	}
	em.sb.WriteByte(']')
	return nil
}

func (em *emitter) address(a ast.Address) error {
	if err := em.initialContext(a.Initial); err != nil {
		return err
	}
	for _, seg := range a.Segments {
		if err := em.pathSegment(seg); err != nil {
			return err
		}
	}
	return nil
}

func (em *emitter) initialContext(ic ast.InitialContext) error {
	switch v := ic.(type) {
	case *ast.AncestorInitialContext:
		if v.Order == 0 {
			em.sb.WriteByte('$')
			return nil
		}
		for i := 0; i < v.Order; i++ {
			em.sb.WriteByte('^')
		}
		return nil
	case *ast.GlobalInitialContext:
		if v.ID == "" {
			em.sb.WriteString("^*")
			return nil
		}
		em.sb.WriteByte('@')
		em.sb.WriteString(v.ID)
		return nil
	default:
		return core.NewImplementationError("ast.InitialContext", "unknown", []string{"*ast.AncestorInitialContext", "*ast.GlobalInitialContext"})
	}
}

func (em *emitter) pathSegment(seg ast.PathSegment) error {
	switch v := seg.(type) {
	case *ast.AncestorSegment:
		em.sb.WriteByte('.')
		for i := 0; i < v.Order; i++ {
			em.sb.WriteByte('^')
		}
		return nil
	case *ast.MemberSegment:
		switch key := v.Key.(type) {
		case *ast.BindingName:
			em.sb.WriteByte('.')
			em.bindingName(key)
			return nil
		case *ast.BindingIndex:
			return em.bindingIndex(key)
		default:
			return core.NewImplementationError("ast.BindingKey", "unknown", []string{"*ast.BindingName", "*ast.BindingIndex"})
		}
	case *ast.CollectionElementSegment:
		em.sb.WriteString("[#")
		if err := em.entity(v.Index); err != nil {
			return err
		}
		em.sb.WriteByte(']')
		return nil
	default:
		return core.NewImplementationError("ast.PathSegment", "unknown", []string{"*ast.AncestorSegment", "*ast.MemberSegment", "*ast.CollectionElementSegment"})
	}
}
