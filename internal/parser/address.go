package parser

import (
	"strings"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
)

// address parses a reference address: an initial context (`$`, `^...^`,
// `^*`, or `@`CANUN) followed by zero or more path segments.
func (p *Parser) address() (ast.Address, error) {
	initial, err := p.initialContext()
	if err != nil {
		return ast.Address{}, err
	}
	var segments []ast.PathSegment
	for {
		ru, ok, err := p.r.PeekSignificant()
		if err != nil {
			return ast.Address{}, err
		}
		if !ok {
			break
		}
		if ru == '.' {
			seg, err := p.dotSegment()
			if err != nil {
				return ast.Address{}, err
			}
			segments = append(segments, seg)
			continue
		}
		if ru == '[' {
			seg, err := p.bracketSegment()
			if err != nil {
				return ast.Address{}, err
			}
			segments = append(segments, seg)
			continue
		}
		break
	}
	return ast.NewAddress(initial, segments)
}

func (p *Parser) initialContext() (ast.InitialContext, error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	switch {
	case ok && ru == '$':
		if err := p.r.ExpectRune('$', core.CTAddressBegin); err != nil {
			return nil, err
		}
		return ast.NewAncestorInitialContext(0)
	case ok && ru == '^':
		if err := p.r.ExpectRune('^', core.CTAncestorAccess); err != nil {
			return nil, err
		}
		next, ok2, err := p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if ok2 && next == '*' {
			if err := p.r.ExpectRune('*', core.CTAddressBegin); err != nil {
				return nil, err
			}
			return ast.NewGlobalInitialContext(""), nil
		}
		order := 1
		for {
			c, ok3 := p.r.Peek()
			if !ok3 || c != '^' {
				break
			}
			p.r.Advance()
			order++
		}
		return ast.NewAncestorInitialContext(order)
	case ok && ru == '@':
		if err := p.r.ExpectRune('@', core.CTIdentifierSigil); err != nil {
			return nil, err
		}
		name, err := p.r.ReadCanun()
		if err != nil {
			return nil, err
		}
		return ast.NewGlobalInitialContext(name), nil
	default:
		return nil, p.r.Unexpected(core.CTAddressBegin)
	}
}

// dotSegment parses `.` followed by either an ancestor continuation
// (`^...^`) or a member binding name.
func (p *Parser) dotSegment() (ast.PathSegment, error) {
	if err := p.r.ExpectRune('.', core.CTPathSegmentBegin); err != nil {
		return nil, err
	}
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if ok && ru == '^' {
		if err := p.r.ExpectRune('^', core.CTAncestorAccess); err != nil {
			return nil, err
		}
		order := 1
		for {
			c, ok2 := p.r.Peek()
			if !ok2 || c != '^' {
				break
			}
			p.r.Advance()
			order++
		}
		return ast.NewAncestorSegment(order)
	}
	key, err := p.bindingNameKey()
	if err != nil {
		return nil, err
	}
	return ast.NewMemberSegment(key)
}

// bracketSegment parses `[index params]` (a member segment) or
// `[#element index]` (a collection element segment).
func (p *Parser) bracketSegment() (ast.PathSegment, error) {
	mark := p.r.Mark()
	if err := p.r.ExpectRune('[', core.CTIndexOpen); err != nil {
		return nil, err
	}
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if ok && ru == '#' {
		if err := p.r.ExpectRune('#', core.CTPathSegmentCollection); err != nil {
			return nil, err
		}
		pos := p.r.Pos()
		idx, err := p.Entity()
		if err != nil {
			return nil, err
		}
		if se, isSimple := idx.(*ast.SimpleEntity); isSimple && strings.HasPrefix(se.Value.Content, "-") {
			return nil, core.NewParsingError("A collection element index cannot be negative.", '-', false, core.CTDigit, pos)
		}
		if err := p.r.ExpectRune(']', core.CTIndexClose); err != nil {
			return nil, err
		}
		return ast.NewCollectionElementSegment(idx)
	}
	p.r.Reset(mark)
	key, err := p.bindingIndexKey()
	if err != nil {
		return nil, err
	}
	return ast.NewMemberSegment(key)
}
