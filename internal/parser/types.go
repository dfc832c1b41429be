package parser

import (
	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/token"
)

// wrappedType parses a `<...>` type definition, where `<>` (no inner
// expression) denotes an explicit absence of a declared type.
func (p *Parser) wrappedType() (ast.Type, error) {
	if err := p.r.ExpectRune('<', core.CTTypeOpen); err != nil {
		return nil, err
	}
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if ok && ru == '>' {
		if err := p.r.ExpectRune('>', core.CTTypeClose); err != nil {
			return nil, err
		}
		return nil, nil
	}
	t, err := p.typeExpr()
	if err != nil {
		return nil, err
	}
	if err := p.r.ExpectRune('>', core.CTTypeClose); err != nil {
		return nil, err
	}
	return t, nil
}

// nestedWrappedType parses a `<...>` type expression that is itself a
// type parameter or union member, where the empty `<>` form is not
// permitted (there is no "absent type" inside a type expression).
func (p *Parser) nestedWrappedType() (ast.Type, error) {
	t, err := p.wrappedType()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, core.NewValueError("A nested type expression cannot be the empty wrapped type.")
	}
	return t, nil
}

// typeExpr parses a union of one or more collection-suffixed atom types,
// separated by `|`.
func (p *Parser) typeExpr() (ast.Type, error) {
	first, err := p.collectionSuffixedType()
	if err != nil {
		return nil, err
	}
	permitted := []ast.Type{first}
	for {
		ru, ok, err := p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if !ok || ru != '|' {
			break
		}
		if err := p.r.ExpectRune('|', core.CTUnionTypeSeparator); err != nil {
			return nil, err
		}
		next, err := p.collectionSuffixedType()
		if err != nil {
			return nil, err
		}
		permitted = append(permitted, next)
	}
	if len(permitted) == 1 {
		return permitted[0], nil
	}
	return ast.NewUnionType(permitted)
}

// collectionSuffixedType parses an atom type followed by zero or more
// unambiguous `[...]` collection suffixes (unambiguous because, inside a
// wrapped type definition, `[` can never start anything but a collection
// suffix).
func (p *Parser) collectionSuffixedType() (ast.Type, error) {
	t, err := p.atomType()
	if err != nil {
		return nil, err
	}
	for {
		ru, ok, err := p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if !ok || ru != '[' {
			break
		}
		if err := p.r.ExpectRune('[', core.CTCollectionSuffixBegin); err != nil {
			return nil, err
		}
		for i := 0; i < 3; i++ {
			if err := p.r.ExpectRune('.', core.CTCollectionSuffixContinue); err != nil {
				return nil, err
			}
		}
		if err := p.r.ExpectRune(']', core.CTIndexClose); err != nil {
			return nil, err
		}
		t, err = ast.NewCollectionType(t)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// atomType parses one type atom: a nested wrapped type, or a (possibly
// `!`-extension) named type with optional `<...>` type parameters.
func (p *Parser) atomType() (ast.Type, error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.r.Unexpected(core.CTCanunBegin | core.CTTypeOpen | core.CTExtension | core.CTTextDelimiter)
	}
	if ru == '<' {
		return p.nestedWrappedType()
	}
	isExt := false
	if ru == '!' {
		if err := p.r.ExpectRune('!', core.CTExtension); err != nil {
			return nil, err
		}
		isExt = true
	}
	name, err := p.typeName()
	if err != nil {
		return nil, err
	}
	params, err := p.typeParameters()
	if err != nil {
		return nil, err
	}
	return ast.NewNamedType(name, params, isExt)
}

// typeName reads a type's name, accepting either a quoted string literal
// (the writer's canonical form) or a bare dotted CANUN path.
func (p *Parser) typeName() (string, error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return "", err
	}
	if ok && token.Classify(ru).Has(core.CTTextDelimiter) {
		s, _, err := p.r.ReadSingleStringLiteral()
		return s, err
	}
	return p.readDottedCanun()
}

// typeParameters parses an optional `<t1,t2,...>` type-parameter list.
func (p *Parser) typeParameters() ([]ast.Type, error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if !ok || ru != '<' {
		return nil, nil
	}
	if err := p.r.ExpectRune('<', core.CTTypeOpen); err != nil {
		return nil, err
	}
	var params []ast.Type
	for {
		t, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, t)
		ru, ok, err = p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if ok && ru == ',' {
			if err := p.r.ExpectRune(',', core.CTSequenceSeparator); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.r.ExpectRune('>', core.CTTypeClose); err != nil {
		return nil, err
	}
	return params, nil
}

// bareTypeTail parses the remainder of a bare (unwrapped) type
// definition once its leading name has already been read: an optional
// `<...>` parameter list, then zero or more ambiguous `[...]` collection
// suffixes (probed, since a bare value could itself start with `[` as a
// collection-init), then, only if no suffix was consumed, an optional
// `|`-separated union continuation.
func (p *Parser) bareTypeTail(name string, isExt bool) (ast.Type, error) {
	params, err := p.typeParameters()
	if err != nil {
		return nil, err
	}
	var t ast.Type
	t, err = ast.NewNamedType(name, params, isExt)
	if err != nil {
		return nil, err
	}

	suffixCount := 0
	for {
		ru, ok, err := p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if !ok || ru != '[' {
			break
		}
		mark := p.r.Mark()
		matched, err := p.r.ProbeCollectionTypeSuffix()
		if err != nil {
			return nil, err
		}
		if !matched {
			p.r.Reset(mark)
			break
		}
		t, err = ast.NewCollectionType(t)
		if err != nil {
			return nil, err
		}
		suffixCount++
	}
	if suffixCount > 0 {
		return t, nil
	}

	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if !ok || ru != '|' {
		return t, nil
	}
	permitted := []ast.Type{t}
	for {
		ru, ok, err = p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if !ok || ru != '|' {
			break
		}
		if err := p.r.ExpectRune('|', core.CTUnionTypeSeparator); err != nil {
			return nil, err
		}
		next, err := p.collectionSuffixedType()
		if err != nil {
			return nil, err
		}
		permitted = append(permitted, next)
	}
	return ast.NewUnionType(permitted)
}
