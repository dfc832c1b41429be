package ast

import (
	"regexp"
	"strings"

	"github.com/oxhq/ston/internal/core"
)

// DataType enumerates the lexical kinds a SimpleValue's content can take.
// STON does not interpret these beyond their textual form (spec.md
// Non-goals): a Number is a normalized significand/exponent string, not a
// float64.
type DataType int

const (
	Null DataType = iota
	Number
	Binary
	Named
	Text
	Code
)

func (d DataType) String() string {
	switch d {
	case Null:
		return "Null"
	case Number:
		return "Number"
	case Binary:
		return "Binary"
	case Named:
		return "Named"
	case Text:
		return "Text"
	case Code:
		return "Code"
	default:
		return "Unknown"
	}
}

// SimpleValue is the (data type, content) pair carried by every simple
// entity. Content is already normalized by the time a SimpleValue is
// constructed; NewSimpleValue re-checks the per-data-type invariants of
// spec.md §3 rather than trusting the caller.
type SimpleValue struct {
	DataType DataType
	Content  string
}

var (
	numberRe = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(e-?[0-9]+)?$`)
	canunRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// NewSimpleValue validates content against the invariants for dataType
// and returns the constructed value.
func NewSimpleValue(dataType DataType, content string) (SimpleValue, error) {
	switch dataType {
	case Null:
		if content != "" {
			return SimpleValue{}, core.NewValueError("A null value must have empty content.")
		}
	case Number:
		if !isValidNumberContent(content) {
			return SimpleValue{}, core.NewValueError("Number content is not in normalized significand/exponent form.")
		}
	case Binary:
		if err := validateBinaryContent(content); err != nil {
			return SimpleValue{}, err
		}
	case Named:
		if err := validateNamedContent(content); err != nil {
			return SimpleValue{}, err
		}
	case Text, Code:
		// No additional structural constraint beyond being a valid string;
		// escaping/control-character rules are enforced by the token
		// reader while scanning the literal, not here.
	default:
		return SimpleValue{}, core.NewImplementationError("DataType", dataType.String(), []string{"Null", "Number", "Binary", "Named", "Text", "Code"})
	}
	return SimpleValue{DataType: dataType, Content: content}, nil
}

func isValidNumberContent(content string) bool {
	if content == "0" {
		return true
	}
	if !numberRe.MatchString(content) {
		return false
	}
	// Non-zero numbers must carry an exponent (spec.md §3).
	if !strings.Contains(content, "e") {
		return false
	}
	sig, exp, _ := strings.Cut(content, "e")
	sig = strings.TrimPrefix(sig, "-")
	if sig == "0" {
		return false // zero must use canonical content "0", never "0e..."
	}
	if len(sig) > 1 && sig[0] == '0' {
		return false
	}
	if strings.HasSuffix(sig, "0") {
		return false // no trailing zeros in a non-zero significand
	}
	expDigits := strings.TrimPrefix(exp, "-")
	if expDigits == "" {
		return false
	}
	if len(expDigits) > 1 && expDigits[0] == '0' {
		return false
	}
	return true
}

func validateBinaryContent(content string) error {
	neg := strings.HasPrefix(content, "-")
	magnitude := content
	if neg {
		magnitude = content[1:]
	}
	if magnitude == "" {
		if neg {
			return core.NewValueError("A binary value's magnitude may be empty only when no sign is present.")
		}
		return nil
	}
	if len(magnitude)%2 != 0 {
		return core.NewValueError("Binary content must be a lowercase-hex string of even length.")
	}
	for _, r := range magnitude {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return core.NewValueError("Binary content must use lowercase hex digits.")
		}
	}
	return nil
}

func validateNamedContent(content string) error {
	if content == "" {
		return core.NewValueError("Named content must be a non-empty CANUN path.")
	}
	for _, part := range strings.Split(content, ".") {
		if !canunRe.MatchString(part) {
			return core.NewValueError("Named content must be a CANUN path: identifiers separated by '.'.")
		}
	}
	return nil
}
