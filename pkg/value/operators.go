package value

import (
	"math"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
)

// EvaluateBinary applies a binary operator to two values.
//
// Arithmetic is numeric-only, except that + concatenates strings and
// appends arrays. Relational operators require both operands to be the same
// primitive type. Equality is deep and structural. The logical operators
// return the deciding operand unchanged; short-circuiting of the right
// operand is the compiler's job.
func EvaluateBinary(op ast.BinaryOp, lhs, rhs Value) (Value, error) {
	switch op {
	case ast.OpAdd:
		if l, ok := lhs.(String); ok {
			if r, ok := rhs.(String); ok {
				return NewString(l.Value + r.Value), nil
			}
		}
		if l, ok := lhs.(*Array); ok {
			if r, ok := rhs.(*Array); ok {
				items := make([]Value, 0, len(l.Items)+len(r.Items))
				items = append(items, l.Items...)
				items = append(items, r.Items...)
				return NewArray(items), nil
			}
		}
		return numericOp(op, lhs, rhs)

	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return numericOp(op, lhs, rhs)

	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		cmp, err := comparePrimitives(lhs, rhs)
		if err != nil {
			return nil, err
		}
		switch op {
		case ast.OpLt:
			return NewBool(cmp < 0), nil
		case ast.OpLtEq:
			return NewBool(cmp <= 0), nil
		case ast.OpGt:
			return NewBool(cmp > 0), nil
		default:
			return NewBool(cmp >= 0), nil
		}

	case ast.OpEqEq:
		return NewBool(Equals(lhs, rhs)), nil
	case ast.OpNeq:
		return NewBool(!Equals(lhs, rhs)), nil

	case ast.OpAnd:
		if !Truthiness(lhs) {
			return lhs, nil
		}
		return rhs, nil
	case ast.OpOr:
		if Truthiness(lhs) {
			return lhs, nil
		}
		return rhs, nil
	}

	return nil, diagnostics.Errorf(diagnostics.InvalidOperand, string(op), TypeName(lhs))
}

func numericOp(op ast.BinaryOp, lhs, rhs Value) (Value, error) {
	l, lok := lhs.(Number)
	r, rok := rhs.(Number)
	if !lok {
		return nil, diagnostics.Errorf(diagnostics.InvalidOperand, string(op), TypeName(lhs))
	}
	if !rok {
		return nil, diagnostics.Errorf(diagnostics.InvalidOperand, string(op), TypeName(rhs))
	}

	switch op {
	case ast.OpAdd:
		return NewNumber(l.Value + r.Value), nil
	case ast.OpSub:
		return NewNumber(l.Value - r.Value), nil
	case ast.OpMul:
		return NewNumber(l.Value * r.Value), nil
	case ast.OpDiv:
		if r.Value == 0 {
			return nil, diagnostics.Errorf(diagnostics.DivisionByZero)
		}
		return NewNumber(l.Value / r.Value), nil
	case ast.OpMod:
		if r.Value == 0 {
			return nil, diagnostics.Errorf(diagnostics.ModuloByZero)
		}
		return NewNumber(math.Mod(l.Value, r.Value)), nil
	}
	return nil, diagnostics.Errorf(diagnostics.InvalidOperand, string(op), TypeName(lhs))
}

// comparePrimitives orders two values of the same primitive type. Mixed or
// non-primitive operands are incomparable.
func comparePrimitives(lhs, rhs Value) (int, error) {
	switch l := lhs.(type) {
	case Number:
		if r, ok := rhs.(Number); ok {
			switch {
			case l.Value < r.Value:
				return -1, nil
			case l.Value > r.Value:
				return 1, nil
			}
			return 0, nil
		}
	case String:
		if r, ok := rhs.(String); ok {
			switch {
			case l.Value < r.Value:
				return -1, nil
			case l.Value > r.Value:
				return 1, nil
			}
			return 0, nil
		}
	case Bool:
		if r, ok := rhs.(Bool); ok {
			switch {
			case !l.Value && r.Value:
				return -1, nil
			case l.Value && !r.Value:
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, diagnostics.Errorf(diagnostics.IncomparableTypes, TypeName(lhs), TypeName(rhs))
}

// EvaluateUnary applies a unary operator to a value. Negation requires a
// number; not coerces through truthiness.
func EvaluateUnary(op ast.UnaryOp, v Value) (Value, error) {
	switch op {
	case ast.OpNeg:
		n, ok := v.(Number)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.InvalidOperand, string(op), TypeName(v))
		}
		return NewNumber(-n.Value), nil
	case ast.OpNot:
		return NewBool(!Truthiness(v)), nil
	}
	return nil, diagnostics.Errorf(diagnostics.InvalidOperand, string(op), TypeName(v))
}

// Increment adjusts a numeric value by delta; the ++ and -- statement forms
// compile down to this.
func Increment(v Value, delta float64, opName string) (Value, error) {
	n, ok := v.(Number)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.InvalidOperand, opName, TypeName(v))
	}
	return NewNumber(n.Value + delta), nil
}
