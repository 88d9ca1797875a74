package ast

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// BinaryResultType implements the arithmetic/bitwise/comparison typing
// rules of spec.md §4.4. Concatenation via `+` on arrays or compound
// literals is handled separately by the caller (Expr.Resolve), since it
// needs the expression trees, not just the types.
func BinaryResultType(r *types.Registry, op token.Kind, lt, rt *types.Type) (*types.Type, error) {
	lt = r.Canonicalize(lt)
	rt = r.Canonicalize(rt)

	switch op {
	case token.ANDAND, token.OROR:
		if lt.Kind != types.Bool || rt.Kind != types.Bool {
			return nil, fmt.Errorf("operator %s requires bool operands, got %s and %s", op, lt, rt)
		}
		return r.Primitive(types.Bool), nil

	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		if !types.TypesSame(r, lt, rt) && !types.CanConvert(r, lt, rt) && !types.CanConvert(r, rt, lt) {
			return nil, fmt.Errorf("operator %s requires compatible operands, got %s and %s", op, lt, rt)
		}
		return r.Primitive(types.Bool), nil

	case token.AMP, token.PIPE, token.CARET:
		if !lt.Kind.IsInteger() || !rt.Kind.IsInteger() {
			return nil, fmt.Errorf("operator %s requires integer operands, got %s and %s", op, lt, rt)
		}
		return wideningResult(lt, rt), nil

	case token.SHL, token.SHR:
		if !lt.Kind.IsInteger() || !rt.Kind.IsInteger() {
			return nil, fmt.Errorf("operator %s requires integer operands, got %s and %s", op, lt, rt)
		}
		return lt, nil

	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if !lt.Kind.IsNumeric() || !rt.Kind.IsNumeric() {
			return nil, fmt.Errorf("operator %s requires numeric operands, got %s and %s", op, lt, rt)
		}
		if op == token.PERCENT && (lt.Kind.IsFloat() || rt.Kind.IsFloat()) {
			return nil, fmt.Errorf("operator %% requires integer operands, got %s and %s", lt, rt)
		}
		return wideningResult(lt, rt), nil

	default:
		return nil, fmt.Errorf("operator %s is not a binary operator", op)
	}
}

// wideningResult implements "float dominates; else the wider integer type
// dominates; on a tie, the unsigned type wins" (spec.md §4.4).
func wideningResult(lt, rt *types.Type) *types.Type {
	if lt.Kind.IsFloat() || rt.Kind.IsFloat() {
		if lt.Kind == types.Float64 || rt.Kind == types.Float64 {
			if lt.Kind == types.Float64 {
				return lt
			}
			return rt
		}
		if lt.Kind.IsFloat() {
			return lt
		}
		return rt
	}
	lw, rw := lt.Kind.Width(), rt.Kind.Width()
	if lw > rw {
		return lt
	}
	if rw > lw {
		return rt
	}
	if lt.Kind.IsUnsigned() {
		return lt
	}
	if rt.Kind.IsUnsigned() {
		return rt
	}
	return lt
}

// UnaryResultType implements the unary operator typing rules of
// spec.md §4.4: `-` on a signed numeric type, `!` on bool, `~` on an
// integer type.
func UnaryResultType(r *types.Registry, op token.Kind, operand *types.Type) (*types.Type, error) {
	operand = r.Canonicalize(operand)
	switch op {
	case token.MINUS:
		if !operand.Kind.IsNumeric() {
			return nil, fmt.Errorf("unary - requires a numeric operand, got %s", operand)
		}
		if operand.Kind.IsUnsigned() {
			return nil, fmt.Errorf("unary - cannot be applied to unsigned type %s", operand)
		}
		return operand, nil
	case token.NOT:
		if operand.Kind != types.Bool {
			return nil, fmt.Errorf("unary ! requires a bool operand, got %s", operand)
		}
		return operand, nil
	case token.TILDE:
		if !operand.Kind.IsInteger() {
			return nil, fmt.Errorf("unary ~ requires an integer operand, got %s", operand)
		}
		return operand, nil
	default:
		return nil, fmt.Errorf("operator %s is not a unary operator", op)
	}
}
