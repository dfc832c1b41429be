package document

import (
	"math/big"
	"strings"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
)

// maxElementIndex is the largest collection-element index the resolver
// supports (2^31 - 1, spec.md §4.7); anything larger is a "not
// supported" error rather than silently truncated.
const maxElementIndex = int64(1<<31 - 1)

// elementIndexToInt converts a resolved, implicitly-typed Number or
// Binary simple value into the non-negative, non-fractional integer
// index spec.md §4.7's collection-element rules require, using math/big
// so an astronomically large exponent or hex magnitude fails cleanly
// instead of overflowing a machine integer.
func elementIndexToInt(se *ast.SimpleEntity) (int, error) {
	switch se.Value.DataType {
	case ast.Number:
		return numberContentToIndex(se.Value.Content)
	case ast.Binary:
		return binaryContentToIndex(se.Value.Content)
	default:
		return 0, core.NewValueError("A collection element index must be a Number or Binary simple value.")
	}
}

func numberContentToIndex(content string) (int, error) {
	if content == "0" {
		return 0, nil
	}
	if strings.HasPrefix(content, "-") {
		return 0, core.NewValueError("A collection element index may not be negative.")
	}
	sig, expStr, _ := strings.Cut(content, "e")
	exp, ok := new(big.Int).SetString(expStr, 10)
	if !ok {
		return 0, core.NewImplementationError("number content", content, []string{"normalized significand/exponent"})
	}
	if exp.Sign() < 0 {
		return 0, core.NewValueError("A collection element index may not be fractional.")
	}
	// maxElementIndex has 10 decimal digits, so a nonzero significand
	// scaled by 10^10 or more always overflows; refusing here also keeps
	// big.Exp from materializing an astronomically long value.
	if !exp.IsInt64() || exp.Int64() >= 10 {
		return 0, core.NewUnsupportedError("A collection element index exceeds the supported range (2^31-1).")
	}
	sigInt, ok := new(big.Int).SetString(sig, 10)
	if !ok {
		return 0, core.NewImplementationError("number content", content, []string{"normalized significand/exponent"})
	}
	scale := new(big.Int).Exp(big.NewInt(10), exp, nil)
	value := new(big.Int).Mul(sigInt, scale)
	return bigToBoundedInt(value)
}

func binaryContentToIndex(content string) (int, error) {
	if strings.HasPrefix(content, "-") {
		return 0, core.NewValueError("A collection element index may not be negative.")
	}
	if content == "" {
		return 0, nil
	}
	value, ok := new(big.Int).SetString(content, 16)
	if !ok {
		return 0, core.NewImplementationError("binary content", content, []string{"lowercase hex"})
	}
	return bigToBoundedInt(value)
}

func bigToBoundedInt(value *big.Int) (int, error) {
	if value.Sign() < 0 {
		return 0, core.NewValueError("A collection element index may not be negative.")
	}
	if !value.IsInt64() || value.Int64() > maxElementIndex {
		return 0, core.NewUnsupportedError("A collection element index exceeds the supported range (2^31-1).")
	}
	return int(value.Int64()), nil
}
