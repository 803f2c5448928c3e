// Package compiler lowers a validated, linked AST to an executable closure
// tree and evaluates it. Resource checks are woven in at statement, loop
// iteration, and call boundaries, and every statement is wrapped so that a
// propagating error without a source location picks up the statement's.
package compiler

import (
	"errors"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

// ctrl is the control-flow signal a statement hands back to its block.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

type stmtFn func(ec *execution.Context, sc *env) (ctrl, error)
type exprFn func(ec *execution.Context, sc *env) (value.Value, error)

// Program is the executable form of a script. It is immutable and may be
// executed any number of times, each run with its own execution context.
type Program struct {
	root []stmtFn
}

type compiler struct {
	table *functions.Registry
}

// Compile lowers a program against the merged function table. The AST must
// already have passed validation and linking; Compile itself cannot fail.
func Compile(program *ast.Program, table *functions.Registry) *Program {
	c := &compiler{table: table}
	root := make([]stmtFn, len(program.Statements))
	for i, stmt := range program.Statements {
		root[i] = c.compileStmt(stmt)
	}
	return &Program{root: root}
}

// compileStmt wraps the lowered statement with the statement-boundary
// account and the source-location guard.
func (c *compiler) compileStmt(stmt ast.Stmt) stmtFn {
	body := c.compileStmtBody(stmt)
	loc := diagnostics.LocationFromSpan(stmt.NodeSpan())
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		if err := ec.AccountStatement(); err != nil {
			return ctrlNone, locate(err, loc)
		}
		ctl, err := body(ec, sc)
		if err != nil {
			return ctl, locate(err, loc)
		}
		return ctl, nil
	}
}

// locate attaches loc to a domain error that carries no location; errors
// with a location pass through unchanged, and foreign errors are wrapped as
// a general runtime error at loc.
func locate(err error, loc *diagnostics.Location) error {
	var se *diagnostics.ScriptError
	if errors.As(err, &se) {
		return se.WithLocation(loc)
	}
	return diagnostics.Errorf(diagnostics.RuntimeError, err.Error()).WithLocation(loc)
}

func (c *compiler) compileStmtBody(stmt ast.Stmt) stmtFn {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		return c.compileVarDecl(s)
	case *ast.AssignStmt:
		return c.compileAssign(s)
	case *ast.IncDecStmt:
		return c.compileIncDec(s)
	case *ast.IfStmt:
		return c.compileIf(s)
	case *ast.SwitchStmt:
		return c.compileSwitch(s)
	case *ast.WhileStmt:
		return c.compileWhile(s)
	case *ast.ForStmt:
		return c.compileFor(s)
	case *ast.ForEachStmt:
		return c.compileForEach(s)
	case *ast.ReturnStmt:
		return c.compileReturn(s)
	case *ast.FailStmt:
		return c.compileFail(s)
	case *ast.BreakStmt:
		return func(*execution.Context, *env) (ctrl, error) { return ctrlBreak, nil }
	case *ast.ContinueStmt:
		return func(*execution.Context, *env) (ctrl, error) { return ctrlContinue, nil }
	case *ast.ExprStmt:
		e := c.compileExpr(s.Expr)
		return func(ec *execution.Context, sc *env) (ctrl, error) {
			_, err := e(ec, sc)
			return ctrlNone, err
		}
	}
	// Unknown statements cannot appear in a validated AST.
	return func(*execution.Context, *env) (ctrl, error) {
		return ctrlNone, diagnostics.Errorf(diagnostics.RuntimeError, "unsupported statement")
	}
}

// compileBlock lowers a block body. Each run opens a fresh scope.
func (c *compiler) compileBlock(block *ast.Block) stmtFn {
	if block == nil {
		return func(*execution.Context, *env) (ctrl, error) { return ctrlNone, nil }
	}
	stmts := make([]stmtFn, len(block.Statements))
	for i, stmt := range block.Statements {
		stmts[i] = c.compileStmt(stmt)
	}
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		inner := sc.child()
		return runStmts(stmts, ec, inner)
	}
}

// accountIteration marks one loop-iteration boundary. An iteration also
// accounts a statement, so a loop with an empty body still drains the
// statement budget and polls cancellation.
func accountIteration(ec *execution.Context) error {
	if err := ec.AccountStatement(); err != nil {
		return err
	}
	return ec.AccountLoopIteration()
}

func runStmts(stmts []stmtFn, ec *execution.Context, sc *env) (ctrl, error) {
	for _, stmt := range stmts {
		ctl, err := stmt(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		if ctl != ctrlNone {
			return ctl, nil
		}
	}
	return ctrlNone, nil
}

func (c *compiler) compileVarDecl(s *ast.VarDeclStmt) stmtFn {
	var init exprFn
	if s.Init != nil {
		init = c.compileExpr(s.Init)
	}
	name, hint := s.Name, s.Hint
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		var val value.Value = value.NewNull()
		if init != nil {
			v, err := init(ec, sc)
			if err != nil {
				return ctrlNone, err
			}
			v, err = value.CoerceToType(v, hint, name)
			if err != nil {
				return ctrlNone, err
			}
			val = v
		}
		sc.declare(name, hint, val)
		return ctrlNone, nil
	}
}

func (c *compiler) compileAssign(s *ast.AssignStmt) stmtFn {
	target := c.compileTarget(s.Target)
	val := c.compileExpr(s.Value)
	binOp := s.Op.BinaryOp()
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		lv, err := target(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		rhs, err := val(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		if binOp != "" {
			current, err := lv.get()
			if err != nil {
				return ctrlNone, err
			}
			rhs, err = value.EvaluateBinary(binOp, current, rhs)
			if err != nil {
				return ctrlNone, err
			}
		}
		return ctrlNone, lv.set(rhs)
	}
}

func (c *compiler) compileIncDec(s *ast.IncDecStmt) stmtFn {
	target := c.compileTarget(s.Target)
	delta, opName := 1.0, "++"
	if s.Decrement {
		delta, opName = -1.0, "--"
	}
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		lv, err := target(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		current, err := lv.get()
		if err != nil {
			return ctrlNone, err
		}
		next, err := value.Increment(current, delta, opName)
		if err != nil {
			return ctrlNone, err
		}
		return ctrlNone, lv.set(next)
	}
}

func (c *compiler) compileIf(s *ast.IfStmt) stmtFn {
	type arm struct {
		cond exprFn
		body stmtFn
	}
	arms := []arm{{c.compileExpr(s.Cond), c.compileBlock(s.Then)}}
	for _, elif := range s.ElseIfs {
		arms = append(arms, arm{c.compileExpr(elif.Cond), c.compileBlock(elif.Body)})
	}
	var elseBody stmtFn
	if s.Else != nil {
		elseBody = c.compileBlock(s.Else)
	}
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		for _, a := range arms {
			cond, err := a.cond(ec, sc)
			if err != nil {
				return ctrlNone, err
			}
			if value.Truthiness(cond) {
				return a.body(ec, sc)
			}
		}
		if elseBody != nil {
			return elseBody(ec, sc)
		}
		return ctrlNone, nil
	}
}

func (c *compiler) compileSwitch(s *ast.SwitchStmt) stmtFn {
	subject := c.compileExpr(s.Subject)
	type caseArm struct {
		values []exprFn
		body   stmtFn
	}
	arms := make([]caseArm, len(s.Cases))
	for i, cs := range s.Cases {
		values := make([]exprFn, len(cs.Values))
		for j, v := range cs.Values {
			values[j] = c.compileExpr(v)
		}
		arms[i] = caseArm{values: values, body: c.compileBlock(cs.Body)}
	}
	var defaultBody stmtFn
	if s.Default != nil {
		defaultBody = c.compileBlock(s.Default)
	}
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		scrutinee, err := subject(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		for _, arm := range arms {
			for _, valFn := range arm.values {
				comparand, err := valFn(ec, sc)
				if err != nil {
					return ctrlNone, err
				}
				if value.Equals(scrutinee, comparand) {
					return arm.body(ec, sc)
				}
			}
		}
		if defaultBody != nil {
			return defaultBody(ec, sc)
		}
		return ctrlNone, nil
	}
}

func (c *compiler) compileWhile(s *ast.WhileStmt) stmtFn {
	cond := c.compileExpr(s.Cond)
	body := c.compileBlock(s.Body)
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		for {
			v, err := cond(ec, sc)
			if err != nil {
				return ctrlNone, err
			}
			if !value.Truthiness(v) {
				return ctrlNone, nil
			}
			if err := accountIteration(ec); err != nil {
				return ctrlNone, err
			}
			ctl, err := body(ec, sc)
			if err != nil {
				return ctrlNone, err
			}
			if ctl == ctrlBreak {
				return ctrlNone, nil
			}
			if ctl == ctrlReturn {
				return ctl, nil
			}
		}
	}
}

func (c *compiler) compileFor(s *ast.ForStmt) stmtFn {
	from := c.compileExpr(s.From)
	to := c.compileExpr(s.To)
	var step exprFn
	if s.Step != nil {
		step = c.compileExpr(s.Step)
	}
	body := c.compileBlock(s.Body)
	name := s.Var
	descending := s.Descending
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		fromVal, err := from(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		start, ok := fromVal.(value.Number)
		if !ok {
			return ctrlNone, diagnostics.Errorf(diagnostics.InvalidOperand, "for", value.TypeName(fromVal))
		}
		toVal, err := to(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		end, ok := toVal.(value.Number)
		if !ok {
			return ctrlNone, diagnostics.Errorf(diagnostics.InvalidOperand, "for", value.TypeName(toVal))
		}

		// The step is evaluated once at loop entry and must be a strictly
		// positive integer.
		stride := 1.0
		if step != nil {
			stepVal, err := step(ec, sc)
			if err != nil {
				return ctrlNone, err
			}
			n, ok := stepVal.(value.Number)
			if !ok {
				return ctrlNone, diagnostics.Errorf(diagnostics.NonNegativeIntegerRequired, value.TypeName(stepVal))
			}
			if !n.IsInteger() || n.Value <= 0 {
				return ctrlNone, diagnostics.Errorf(diagnostics.NonNegativeIntegerRequired, value.FormatNumber(n.Value))
			}
			stride = n.Value
		}
		if descending {
			stride = -stride
		}

		loopScope := sc.child()
		counter := loopScope.declare(name, ast.HintNumber, start)

		for {
			cur := counter.val.(value.Number).Value
			if descending {
				if cur < end.Value {
					return ctrlNone, nil
				}
			} else {
				if cur > end.Value {
					return ctrlNone, nil
				}
			}
			if err := accountIteration(ec); err != nil {
				return ctrlNone, err
			}
			ctl, err := body(ec, loopScope)
			if err != nil {
				return ctrlNone, err
			}
			if ctl == ctrlBreak {
				return ctrlNone, nil
			}
			if ctl == ctrlReturn {
				return ctl, nil
			}
			// continue lands here so the counter still advances
			counter.val = value.NewNumber(counter.val.(value.Number).Value + stride)
		}
	}
}

func (c *compiler) compileForEach(s *ast.ForEachStmt) stmtFn {
	coll := c.compileExpr(s.Collection)
	body := c.compileBlock(s.Body)
	name := s.Var
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		collVal, err := coll(ec, sc)
		if err != nil {
			return ctrlNone, err
		}
		items, err := value.ToIterable(collVal)
		if err != nil {
			return ctrlNone, err
		}
		for _, item := range items {
			if err := accountIteration(ec); err != nil {
				return ctrlNone, err
			}
			// A fresh cell per iteration so captures see the iteration's value.
			loopScope := sc.child()
			loopScope.declare(name, ast.HintAny, item)
			ctl, err := body(ec, loopScope)
			if err != nil {
				return ctrlNone, err
			}
			if ctl == ctrlBreak {
				return ctrlNone, nil
			}
			if ctl == ctrlReturn {
				return ctl, nil
			}
		}
		return ctrlNone, nil
	}
}

func (c *compiler) compileReturn(s *ast.ReturnStmt) stmtFn {
	var message exprFn
	if s.Message != nil {
		message = c.compileExpr(s.Message)
	}
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		if message != nil {
			v, err := message(ec, sc)
			if err != nil {
				return ctrlNone, err
			}
			ec.SetReturnValue(v)
			ec.SetCompletionMessage(value.ToDisplayString(v))
		}
		return ctrlReturn, nil
	}
}

func (c *compiler) compileFail(s *ast.FailStmt) stmtFn {
	var message exprFn
	if s.Message != nil {
		message = c.compileExpr(s.Message)
	}
	return func(ec *execution.Context, sc *env) (ctrl, error) {
		msg := "unspecified"
		if message != nil {
			v, err := message(ec, sc)
			if err != nil {
				return ctrlNone, err
			}
			msg = value.ToDisplayString(v)
		}
		ec.SetCompletionMessage(msg)
		return ctrlNone, diagnostics.Errorf(diagnostics.ScriptFailure, msg)
	}
}
