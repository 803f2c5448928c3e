package compiler

import (
	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

func (c *compiler) compileExpr(expr ast.Expr) exprFn {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		v := value.NewNumber(e.Value)
		return func(*execution.Context, *env) (value.Value, error) { return v, nil }

	case *ast.StringLiteral:
		v := value.NewString(e.Value)
		return func(*execution.Context, *env) (value.Value, error) { return v, nil }

	case *ast.BoolLiteral:
		v := value.NewBool(e.Value)
		return func(*execution.Context, *env) (value.Value, error) { return v, nil }

	case *ast.NullLiteral:
		return func(*execution.Context, *env) (value.Value, error) { return value.NewNull(), nil }

	case *ast.Identifier:
		name := e.Name
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			cl := sc.lookup(name)
			if cl == nil {
				return nil, diagnostics.Errorf(diagnostics.UndeclaredVariable, name)
			}
			return cl.val, nil
		}

	case *ast.PropertyExpr:
		obj := c.compileExpr(e.Object)
		name := e.Name
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			target, err := obj(ec, sc)
			if err != nil {
				return nil, err
			}
			return value.GetProperty(target, name)
		}

	case *ast.IndexExpr:
		target := c.compileExpr(e.Target)
		index := c.compileExpr(e.Index)
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			t, err := target(ec, sc)
			if err != nil {
				return nil, err
			}
			i, err := index(ec, sc)
			if err != nil {
				return nil, err
			}
			return value.GetIndex(t, i)
		}

	case *ast.ArrayLiteral:
		elements := make([]exprFn, len(e.Elements))
		for i, elem := range e.Elements {
			elements[i] = c.compileExpr(elem)
		}
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			items := make([]value.Value, len(elements))
			for i, elem := range elements {
				v, err := elem(ec, sc)
				if err != nil {
					return nil, err
				}
				items[i] = v
			}
			return value.NewArray(items), nil
		}

	case *ast.ObjectLiteral:
		keys := make([]string, len(e.Entries))
		vals := make([]exprFn, len(e.Entries))
		for i, entry := range e.Entries {
			keys[i] = entry.Key
			vals[i] = c.compileExpr(entry.Value)
		}
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			obj := value.NewObject()
			for i, valFn := range vals {
				v, err := valFn(ec, sc)
				if err != nil {
					return nil, err
				}
				obj.Set(keys[i], v)
			}
			return obj, nil
		}

	case *ast.BinaryExpr:
		return c.compileBinary(e)

	case *ast.UnaryExpr:
		operand := c.compileExpr(e.Operand)
		op := e.Op
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			v, err := operand(ec, sc)
			if err != nil {
				return nil, err
			}
			return value.EvaluateUnary(op, v)
		}

	case *ast.TypeTestExpr:
		operand := c.compileExpr(e.Value)
		hint := e.Hint
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			v, err := operand(ec, sc)
			if err != nil {
				return nil, err
			}
			return value.NewBool(value.HintMatches(v, hint)), nil
		}

	case *ast.CallExpr:
		return c.compileCall(e)

	case *ast.LambdaExpr:
		return c.compileLambda(e)
	}

	return func(*execution.Context, *env) (value.Value, error) {
		return nil, diagnostics.Errorf(diagnostics.RuntimeError, "unsupported expression")
	}
}

// compileBinary lowers a binary operator. The logical forms short-circuit:
// the right operand is only evaluated when the left does not decide.
func (c *compiler) compileBinary(e *ast.BinaryExpr) exprFn {
	left := c.compileExpr(e.Left)
	right := c.compileExpr(e.Right)
	op := e.Op

	switch op {
	case ast.OpAnd:
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			l, err := left(ec, sc)
			if err != nil {
				return nil, err
			}
			if !value.Truthiness(l) {
				return l, nil
			}
			return right(ec, sc)
		}
	case ast.OpOr:
		return func(ec *execution.Context, sc *env) (value.Value, error) {
			l, err := left(ec, sc)
			if err != nil {
				return nil, err
			}
			if value.Truthiness(l) {
				return l, nil
			}
			return right(ec, sc)
		}
	}

	return func(ec *execution.Context, sc *env) (value.Value, error) {
		l, err := left(ec, sc)
		if err != nil {
			return nil, err
		}
		r, err := right(ec, sc)
		if err != nil {
			return nil, err
		}
		return value.EvaluateBinary(op, l, r)
	}
}

// compileCall binds the call site to its resolved function. Argument
// expressions evaluate left to right; the call itself runs inside the
// call-depth account.
func (c *compiler) compileCall(e *ast.CallExpr) exprFn {
	fn, _ := c.table.Lookup(e.Name)
	args := make([]exprFn, len(e.Args))
	for i, arg := range e.Args {
		args[i] = c.compileExpr(arg)
	}
	name := e.Name

	return func(ec *execution.Context, sc *env) (value.Value, error) {
		if fn == nil {
			return nil, diagnostics.Errorf(diagnostics.UndefinedFunction, name, "")
		}
		argv := make([]value.Value, len(args))
		for i, argFn := range args {
			v, err := argFn(ec, sc)
			if err != nil {
				return nil, err
			}
			argv[i] = v
		}
		if err := functions.CheckArgTypes(fn.Signature(), argv); err != nil {
			return nil, err
		}
		if err := ec.EnterCall(); err != nil {
			return nil, err
		}
		defer ec.ExitCall()
		result, err := fn.Call(ec, argv)
		if err != nil {
			return nil, wrapCallError(name, err)
		}
		if result == nil {
			result = value.NewNull()
		}
		return result, nil
	}
}

// wrapCallError turns a builtin's plain Go error into a function runtime
// error; domain errors pass through so their codes survive.
func wrapCallError(name string, err error) error {
	if _, ok := err.(*diagnostics.ScriptError); ok {
		return err
	}
	return diagnostics.Errorf(diagnostics.FunctionRuntimeError, name, err.Error())
}

// compileLambda closes over the creating scope; captures are by reference
// through the scope's cells. Each invocation accounts one call depth.
func (c *compiler) compileLambda(e *ast.LambdaExpr) exprFn {
	body := c.compileExpr(e.Body)
	params := e.Params

	return func(ec *execution.Context, sc *env) (value.Value, error) {
		captured := sc
		return &value.Lambda{
			Arity: len(params),
			Invoke: func(args []value.Value) (value.Value, error) {
				if err := ec.EnterCall(); err != nil {
					return nil, err
				}
				defer ec.ExitCall()
				inner := captured.child()
				for i, param := range params {
					var v value.Value = value.NewNull()
					if i < len(args) {
						v = args[i]
					}
					inner.declare(param, ast.HintAny, v)
				}
				return body(ec, inner)
			},
		}, nil
	}
}

// lvalue is an evaluated assignment path: one read and one write through
// the same base.
type lvalue struct {
	get func() (value.Value, error)
	set func(v value.Value) error
}

type targetFn func(ec *execution.Context, sc *env) (*lvalue, error)

// compileTarget lowers an assignment target. The base expressions evaluate
// once per statement; compound assignment reads and writes through the same
// evaluated path.
func (c *compiler) compileTarget(target ast.Expr) targetFn {
	switch t := target.(type) {
	case *ast.Identifier:
		name := t.Name
		return func(ec *execution.Context, sc *env) (*lvalue, error) {
			cl := sc.lookup(name)
			if cl == nil {
				return nil, diagnostics.Errorf(diagnostics.UndeclaredVariable, name)
			}
			return &lvalue{
				get: func() (value.Value, error) { return cl.val, nil },
				set: func(v value.Value) error {
					coerced, err := value.CoerceToType(v, cl.hint, name)
					if err != nil {
						return err
					}
					cl.val = coerced
					return nil
				},
			}, nil
		}

	case *ast.PropertyExpr:
		obj := c.compileExpr(t.Object)
		name := t.Name
		return func(ec *execution.Context, sc *env) (*lvalue, error) {
			base, err := obj(ec, sc)
			if err != nil {
				return nil, err
			}
			return &lvalue{
				get: func() (value.Value, error) { return value.GetProperty(base, name) },
				set: func(v value.Value) error { return value.SetProperty(base, name, v) },
			}, nil
		}

	case *ast.IndexExpr:
		targetExpr := c.compileExpr(t.Target)
		indexExpr := c.compileExpr(t.Index)
		return func(ec *execution.Context, sc *env) (*lvalue, error) {
			base, err := targetExpr(ec, sc)
			if err != nil {
				return nil, err
			}
			idx, err := indexExpr(ec, sc)
			if err != nil {
				return nil, err
			}
			return &lvalue{
				get: func() (value.Value, error) { return value.GetIndex(base, idx) },
				set: func(v value.Value) error { return value.SetIndex(base, idx, v) },
			}, nil
		}
	}

	return func(*execution.Context, *env) (*lvalue, error) {
		return nil, diagnostics.Errorf(diagnostics.RuntimeError, "invalid assignment target")
	}
}
