// Package parser implements the recursive-descent regular parser of
// spec.md §4.4: entity grammar, the bare-vs-wrapped type ambiguity, and
// complex-value component ordering, built on top of internal/token's
// character classifier and buffered reader.
package parser

import (
	"strings"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/token"
	"github.com/oxhq/ston/internal/validate"
)

// Parser holds the single token.Reader cursor driving one parse.
type Parser struct {
	r *token.Reader
}

// New returns a Parser positioned at the start of src.
func New(src string) *Parser {
	return &Parser{r: token.NewReader(src)}
}

// ParseEntity parses src as exactly one entity, failing if anything but
// insignificant input follows it. The parsed tree is run through the
// structural validator before being returned, so invariants the ast
// constructors cannot check on their own (union permitted-type
// distinctness, chiefly) hold for every parsed entity, not only for
// those resolved into a document.
func ParseEntity(src string) (ast.Entity, error) {
	p := New(src)
	e, err := p.Entity()
	if err != nil {
		return nil, err
	}
	if err := p.r.ExpectEOS(); err != nil {
		return nil, err
	}
	if err := validate.Entity(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Entity parses one entity starting at the cursor's current position,
// per spec.md §4.4's five-step grammar: optional global identifier,
// optional leading CANUN disambiguation, optional reference address,
// optional type definition, then exactly one value form.
func (p *Parser) Entity() (ast.Entity, error) {
	globalID, err := p.globalIdentifier()
	if err != nil {
		return nil, err
	}

	for {
		ru, ok, err := p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if ok && (ru == '$' || ru == '^' || ru == '@') {
			addr, err := p.address()
			if err != nil {
				return nil, err
			}
			return ast.NewReferenceEntity(addr, globalID), nil
		}

		declaredType, pendingWord, havePending, err := p.leadingTypeOrValue(ru, ok)
		if err != nil {
			return nil, err
		}
		if !havePending {
			return p.value(declaredType, globalID)
		}
		// A leading CANUN immediately followed by `=` declares the
		// entity's global identifier without the `&` sigil; the rest of
		// the entity (address, type, value) follows.
		next, ok2, err := p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if ok2 && next == '=' && globalID == nil && !strings.Contains(pendingWord, ".") && pendingWord != "null" {
			if err := p.r.ExpectRune('=', core.CTIdentifierAssign); err != nil {
				return nil, err
			}
			word := pendingWord
			globalID = &word
			continue
		}
		return p.namedOrNullValue(pendingWord, nil, globalID)
	}
}

// globalIdentifier consumes an optional `&` CANUN `=` prefix.
func (p *Parser) globalIdentifier() (*string, error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if !ok || ru != '&' {
		return nil, nil
	}
	if err := p.r.ExpectRune('&', core.CTIdentifierSigil); err != nil {
		return nil, err
	}
	name, err := p.r.ReadCanun()
	if err != nil {
		return nil, err
	}
	if err := p.r.ExpectRune('=', core.CTIdentifierAssign); err != nil {
		return nil, err
	}
	return &name, nil
}

// leadingTypeOrValue resolves step 2 and step 4 of the entity grammar
// together: a leading `!` or `<` unambiguously starts a type definition;
// a leading CANUN word is ambiguous between a bare type name and a
// named/null simple value, resolved by looking past the full dotted path
// for a following `<`, `[`, `|`, or the start of a value form. When the
// word turns out to be the value itself (or a sigil-less global
// identifier, decided by the caller), it is returned as pendingWord with
// havePending true and declaredType nil.
func (p *Parser) leadingTypeOrValue(ru rune, ok bool) (declaredType ast.Type, pendingWord string, havePending bool, err error) {
	if !ok {
		return nil, "", false, nil
	}
	if ru == '<' {
		t, err := p.wrappedType()
		return t, "", false, err
	}
	if ru == '!' {
		if err := p.r.ExpectRune('!', core.CTExtension); err != nil {
			return nil, "", false, err
		}
		name, err := p.readDottedCanun()
		if err != nil {
			return nil, "", false, err
		}
		t, err := p.bareTypeTail(name, true)
		return t, "", false, err
	}
	if !token.Classify(ru).Has(core.CTCanunBegin) {
		return nil, "", false, nil
	}
	word, err := p.readDottedCanun()
	if err != nil {
		return nil, "", false, err
	}
	next, ok2, err := p.r.PeekSignificant()
	if err != nil {
		return nil, "", false, err
	}
	if ok2 && word != "null" {
		if next == '<' || next == '[' || next == '|' {
			t, err := p.bareTypeTail(word, false)
			return t, "", false, err
		}
		// A CANUN word directly followed by the start of a value form
		// (e.g. `int 0`, `friendly entity`, `Point(1,2)`) is a bare type
		// name; the value itself is parsed by the caller.
		if startsValue(next) {
			t, err := ast.NewNamedType(word, nil, false)
			return t, "", false, err
		}
	}
	return nil, word, true, nil
}

// startsValue reports whether ru can open step 5's value form: a complex
// component, a (possibly chained) string/code literal, a number/binary
// literal, or a named/null word.
func startsValue(ru rune) bool {
	if token.Classify(ru).Any(core.CTCanunBegin | core.CTDigit | core.CTSign | core.CTTextDelimiter | core.CTCodeDelimiter | core.CTConstructionOpen | core.CTMemberInitOpen) {
		return true
	}
	return ru == '>'
}

// namedOrNullValue builds the simple entity denoted by a CANUN path
// already read as a value: the reserved word "null" yields Null content,
// anything else yields Named content verbatim.
func (p *Parser) namedOrNullValue(word string, declaredType ast.Type, globalID *string) (ast.Entity, error) {
	dataType := ast.Named
	content := word
	if word == "null" {
		dataType = ast.Null
		content = ""
	}
	value, err := ast.NewSimpleValue(dataType, content)
	if err != nil {
		return nil, err
	}
	return ast.NewSimpleEntity(value, declaredType, globalID)
}

// readDottedCanun reads one CANUN, then greedily extends it with
// `.` CANUN continuations as long as a dot is actually followed by
// another CANUN; a trailing dot not followed by one is left unconsumed
// for the caller.
func (p *Parser) readDottedCanun() (string, error) {
	first, err := p.r.ReadCanun()
	if err != nil {
		return "", err
	}
	path := first
	for {
		mark := p.r.Mark()
		ru, ok, err := p.r.PeekSignificant()
		if err != nil {
			return "", err
		}
		if !ok || ru != '.' {
			break
		}
		if err := p.r.ExpectRune('.', core.CTNameSeparator); err != nil {
			return "", err
		}
		seg, err := p.r.ReadCanun()
		if err != nil {
			p.r.Reset(mark)
			break
		}
		path = path + "." + seg
	}
	return path, nil
}

// value parses step 5 of the entity grammar: exactly one of a complex
// value, a (possibly chained) string/code value, a number/binary value,
// or a named/null value, given a declared type already resolved by the
// caller (nil if none was written).
func (p *Parser) value(declaredType ast.Type, globalID *string) (ast.Entity, error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.r.Unexpected(core.CTConstructionOpen | core.CTMemberInitOpen | core.CTCollectionInitOpen | core.CTTextDelimiter | core.CTCodeDelimiter | core.CTDigit | core.CTSign | core.CTCanunBegin)
	}
	switch {
	case ru == '(' || ru == '{' || ru == '[':
		return p.complexValue(declaredType, globalID)
	case ru == '>':
		if err := p.r.ExpectRune('>', core.CTStringChainOpen); err != nil {
			return nil, err
		}
		s, delim, err := p.r.ReadStringLiteral()
		if err != nil {
			return nil, err
		}
		return p.stringValue("\n"+s, delim, declaredType, globalID)
	case token.Classify(ru).Any(core.CTTextDelimiter | core.CTCodeDelimiter):
		s, delim, err := p.r.ReadStringLiteral()
		if err != nil {
			return nil, err
		}
		return p.stringValue(s, delim, declaredType, globalID)
	case ru == '+' || ru == '-' || token.Classify(ru).Has(core.CTDigit):
		return p.numberOrBinaryValue(declaredType, globalID)
	case token.Classify(ru).Has(core.CTCanunBegin):
		word, err := p.readDottedCanun()
		if err != nil {
			return nil, err
		}
		return p.namedOrNullValue(word, declaredType, globalID)
	default:
		return nil, p.r.Unexpected(core.CTConstructionOpen | core.CTMemberInitOpen | core.CTCollectionInitOpen | core.CTTextDelimiter | core.CTCodeDelimiter | core.CTDigit | core.CTSign | core.CTCanunBegin)
	}
}

func (p *Parser) stringValue(content string, delim rune, declaredType ast.Type, globalID *string) (ast.Entity, error) {
	dataType := ast.Text
	if delim == '`' {
		dataType = ast.Code
	}
	value, err := ast.NewSimpleValue(dataType, content)
	if err != nil {
		return nil, err
	}
	return ast.NewSimpleEntity(value, declaredType, globalID)
}

// numberOrBinaryValue disambiguates a leading `0` followed immediately
// by a base identifier (binary) from a plain number, without
// double-handling the optional leading sign.
func (p *Parser) numberOrBinaryValue(declaredType ast.Type, globalID *string) (ast.Entity, error) {
	start := p.r.Mark()
	neg := false
	if ru, ok := p.r.Peek(); ok && (ru == '+' || ru == '-') {
		neg = ru == '-'
		p.r.Advance()
	}
	if ru, ok := p.r.Peek(); ok && ru == '0' {
		beforeZero := p.r.Mark()
		p.r.Advance()
		if base, ok2 := p.r.Peek(); ok2 && token.Classify(base).Has(core.CTBaseIdentifier) {
			p.r.Advance()
			magnitude, err := p.r.ReadBinaryContent(base)
			if err != nil {
				return nil, err
			}
			content := magnitude
			if neg {
				if magnitude == "" {
					return nil, core.NewValueError("A binary value's magnitude may be empty only when no sign is present.")
				}
				content = "-" + magnitude
			}
			value, err := ast.NewSimpleValue(ast.Binary, content)
			if err != nil {
				return nil, err
			}
			return ast.NewSimpleEntity(value, declaredType, globalID)
		}
		p.r.Reset(beforeZero)
	}
	p.r.Reset(start)
	content, err := p.r.ReadNumberContent()
	if err != nil {
		return nil, err
	}
	value, err := ast.NewSimpleValue(ast.Number, content)
	if err != nil {
		return nil, err
	}
	return ast.NewSimpleEntity(value, declaredType, globalID)
}

// complexValue parses any non-empty combination of construction,
// member-init, and collection-init in one of the orderings spec.md §4.4
// allows: construction, if present, always comes first; member-init and
// collection-init may then follow in either order.
func (p *Parser) complexValue(declaredType ast.Type, globalID *string) (ast.Entity, error) {
	var construction *ast.Construction
	var memberInit *ast.MemberInit
	var collectionInit *ast.CollectionInit

	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if ok && ru == '(' {
		c, err := p.construction()
		if err != nil {
			return nil, err
		}
		construction = &c
	}
	for i := 0; i < 2; i++ {
		ru, ok, err = p.r.PeekSignificant()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if ru == '{' && memberInit == nil {
			m, err := p.memberInit()
			if err != nil {
				return nil, err
			}
			memberInit = &m
			continue
		}
		if ru == '[' && collectionInit == nil {
			l, err := p.collectionInit()
			if err != nil {
				return nil, err
			}
			collectionInit = &l
			continue
		}
		break
	}
	if construction == nil && memberInit == nil && collectionInit == nil {
		return nil, core.NewValueError("A complex entity must have at least one of construction, member init, or collection init.")
	}
	return ast.NewComplexEntity(construction, memberInit, collectionInit, declaredType, globalID)
}

// construction parses `(` constructionItem ","* `)`, where each item is
// either an explicitly-named parameter ((CANUN | stringLiteral) ":" entity)
// or a positional parameter, which is just an entity — an optional leading
// ":" before a positional entity is accepted but not required, matching the
// canonical writer's always-prefixed ":a" form as well as the bare "a" form
// valid STON input may use.
func (p *Parser) construction() (ast.Construction, error) {
	if err := p.r.ExpectRune('(', core.CTConstructionOpen); err != nil {
		return ast.Construction{}, err
	}
	var positional []ast.Entity
	var named []ast.NamedParameter
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return ast.Construction{}, err
	}
	if ok && ru != ')' {
		for {
			name, value, isNamed, err := p.constructionItem()
			if err != nil {
				return ast.Construction{}, err
			}
			if isNamed {
				named = append(named, ast.NamedParameter{Name: name, Value: value})
			} else {
				positional = append(positional, value)
			}
			ru, ok, err = p.r.PeekSignificant()
			if err != nil {
				return ast.Construction{}, err
			}
			if ok && ru == ',' {
				if err := p.r.ExpectRune(',', core.CTSequenceSeparator); err != nil {
					return ast.Construction{}, err
				}
				continue
			}
			break
		}
	}
	if err := p.r.ExpectRune(')', core.CTConstructionClose); err != nil {
		return ast.Construction{}, err
	}
	return ast.NewConstruction(positional, named)
}

// constructionItem parses one construction parameter. A quoted string or
// bare CANUN immediately followed by ":" is a named parameter's name; an
// explicit leading ":" marks an unnamed positional parameter; anything else
// is parsed as a whole entity and supplied positionally.
func (p *Parser) constructionItem() (name string, value ast.Entity, isNamed bool, err error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return "", nil, false, err
	}
	if ok && ru == ':' {
		if err := p.r.ExpectRune(':', core.CTValuePrompt); err != nil {
			return "", nil, false, err
		}
		v, err := p.Entity()
		if err != nil {
			return "", nil, false, err
		}
		return "", v, false, nil
	}
	if ok && token.Classify(ru).Has(core.CTTextDelimiter) {
		mark := p.r.Mark()
		n, _, err := p.r.ReadStringLiteral()
		if err != nil {
			return "", nil, false, err
		}
		next, ok, err := p.r.PeekSignificant()
		if err != nil {
			return "", nil, false, err
		}
		if ok && next == ':' {
			if err := p.r.ExpectRune(':', core.CTValuePrompt); err != nil {
				return "", nil, false, err
			}
			v, err := p.Entity()
			if err != nil {
				return "", nil, false, err
			}
			return n, v, true, nil
		}
		p.r.Reset(mark)
	} else if ok && token.Classify(ru).Has(core.CTCanunBegin) {
		mark := p.r.Mark()
		n, err := p.r.ReadCanun()
		if err != nil {
			return "", nil, false, err
		}
		next, ok, err := p.r.PeekSignificant()
		if err != nil {
			return "", nil, false, err
		}
		if ok && next == ':' {
			if err := p.r.ExpectRune(':', core.CTValuePrompt); err != nil {
				return "", nil, false, err
			}
			v, err := p.Entity()
			if err != nil {
				return "", nil, false, err
			}
			return n, v, true, nil
		}
		p.r.Reset(mark)
	}
	v, err := p.Entity()
	if err != nil {
		return "", nil, false, err
	}
	return "", v, false, nil
}

// memberInit parses `{` (bindingKey ":" entity) ","* `}`.
func (p *Parser) memberInit() (ast.MemberInit, error) {
	if err := p.r.ExpectRune('{', core.CTMemberInitOpen); err != nil {
		return ast.MemberInit{}, err
	}
	var bindings []ast.MemberBinding
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return ast.MemberInit{}, err
	}
	if ok && ru != '}' {
		for {
			key, err := p.bindingKey()
			if err != nil {
				return ast.MemberInit{}, err
			}
			if err := p.r.ExpectRune(':', core.CTValuePrompt); err != nil {
				return ast.MemberInit{}, err
			}
			v, err := p.Entity()
			if err != nil {
				return ast.MemberInit{}, err
			}
			bindings = append(bindings, ast.MemberBinding{Key: key, Value: v})
			ru, ok, err = p.r.PeekSignificant()
			if err != nil {
				return ast.MemberInit{}, err
			}
			if ok && ru == ',' {
				if err := p.r.ExpectRune(',', core.CTSequenceSeparator); err != nil {
					return ast.MemberInit{}, err
				}
				continue
			}
			break
		}
	}
	if err := p.r.ExpectRune('}', core.CTMemberInitClose); err != nil {
		return ast.MemberInit{}, err
	}
	return ast.NewMemberInit(bindings)
}

// collectionInit parses `[` entity ","* `]`.
func (p *Parser) collectionInit() (ast.CollectionInit, error) {
	if err := p.r.ExpectRune('[', core.CTCollectionInitOpen); err != nil {
		return ast.CollectionInit{}, err
	}
	var elements []ast.Entity
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return ast.CollectionInit{}, err
	}
	if ok && ru != ']' {
		for {
			e, err := p.Entity()
			if err != nil {
				return ast.CollectionInit{}, err
			}
			elements = append(elements, e)
			ru, ok, err = p.r.PeekSignificant()
			if err != nil {
				return ast.CollectionInit{}, err
			}
			if ok && ru == ',' {
				if err := p.r.ExpectRune(',', core.CTSequenceSeparator); err != nil {
					return ast.CollectionInit{}, err
				}
				continue
			}
			break
		}
	}
	if err := p.r.ExpectRune(']', core.CTCollectionInitClose); err != nil {
		return ast.CollectionInit{}, err
	}
	return ast.NewCollectionInit(elements)
}

// bindingKey parses a member-init binding key: either an index form
// `[entity,...]` or a (possibly `!`-extension) name form.
func (p *Parser) bindingKey() (ast.BindingKey, error) {
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if ok && ru == '[' {
		return p.bindingIndexKey()
	}
	return p.bindingNameKey()
}

func (p *Parser) bindingNameKey() (ast.BindingKey, error) {
	isExt := false
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if ok && ru == '!' {
		if err := p.r.ExpectRune('!', core.CTExtension); err != nil {
			return nil, err
		}
		isExt = true
	}
	ru, ok, err = p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	var name string
	if ok && token.Classify(ru).Has(core.CTTextDelimiter) {
		name, _, err = p.r.ReadStringLiteral()
	} else {
		name, err = p.r.ReadCanun()
	}
	if err != nil {
		return nil, err
	}
	return ast.NewBindingName(name, isExt)
}

func (p *Parser) bindingIndexKey() (ast.BindingKey, error) {
	if err := p.r.ExpectRune('[', core.CTIndexOpen); err != nil {
		return nil, err
	}
	var params []ast.Entity
	ru, ok, err := p.r.PeekSignificant()
	if err != nil {
		return nil, err
	}
	if ok && ru != ']' {
		for {
			e, err := p.Entity()
			if err != nil {
				return nil, err
			}
			params = append(params, e)
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
	}
	if err := p.r.ExpectRune(']', core.CTIndexClose); err != nil {
		return nil, err
	}
	return ast.NewBindingIndex(params)
}
