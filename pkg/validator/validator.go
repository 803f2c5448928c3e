// Package validator implements semantic validation of Jyro AST programs.
package validator

import (
	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
)

// DataVariable is the ambient input binding every script starts with.
const DataVariable = "data"

// MaxLoopNesting bounds statically nested loops.
const MaxLoopNesting = 16

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) hasLocal(name string) bool {
	return s.bindings[name]
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	diags     []diagnostics.Diagnostic
	loopDepth int
}

// Validate performs scope and control-flow analysis on a program and
// returns the accumulated diagnostics. Execution must not proceed when any
// of them is error severity.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{}
	root := newScope(nil)
	root.add(DataVariable)
	v.validateStmts(program.Statements, root)
	return v.diags
}

func (v *validator) addError(code diagnostics.Code, span ast.Span, args ...any) {
	v.diags = append(v.diags, diagnostics.NewError(code, diagnostics.LocationFromSpan(span), args...))
}

func (v *validator) addWarning(code diagnostics.Code, span ast.Span, args ...any) {
	v.diags = append(v.diags, diagnostics.NewWarning(code, diagnostics.LocationFromSpan(span), args...))
}

// validateStmts validates a statement list in an existing scope and flags
// statements that can never run.
func (v *validator) validateStmts(stmts []ast.Stmt, sc *scope) {
	terminated := false
	for _, stmt := range stmts {
		if terminated {
			v.addWarning(diagnostics.UnreachableCode, stmt.NodeSpan())
			terminated = false // one warning per dead region
		}
		v.validateStmt(stmt, sc)
		switch stmt.(type) {
		case *ast.ReturnStmt, *ast.FailStmt, *ast.BreakStmt, *ast.ContinueStmt:
			terminated = true
		}
	}
}

func (v *validator) validateBlock(block *ast.Block, sc *scope) {
	if block == nil {
		return
	}
	v.validateStmts(block.Statements, newScope(sc))
}

func (v *validator) validateStmt(stmt ast.Stmt, sc *scope) {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		if s.Name == DataVariable {
			v.addError(diagnostics.ReservedName, s.Span, s.Name)
			return
		}
		if sc.hasLocal(s.Name) {
			v.addError(diagnostics.VariableRedeclaration, s.Span, s.Name)
		}
		if s.Init != nil {
			v.validateExpr(s.Init, sc)
		}
		sc.add(s.Name)

	case *ast.AssignStmt:
		v.validateTarget(s.Target, sc)
		v.validateExpr(s.Value, sc)

	case *ast.IncDecStmt:
		v.validateTarget(s.Target, sc)

	case *ast.IfStmt:
		v.validateExpr(s.Cond, sc)
		v.validateBlock(s.Then, sc)
		for _, elif := range s.ElseIfs {
			v.validateExpr(elif.Cond, sc)
			v.validateBlock(elif.Body, sc)
		}
		v.validateBlock(s.Else, sc)

	case *ast.SwitchStmt:
		v.validateExpr(s.Subject, sc)
		for _, c := range s.Cases {
			for _, val := range c.Values {
				v.validateExpr(val, sc)
			}
			v.validateBlock(c.Body, sc)
		}
		v.validateBlock(s.Default, sc)

	case *ast.WhileStmt:
		v.validateExpr(s.Cond, sc)
		v.enterLoop(s.Span)
		v.validateBlock(s.Body, sc)
		v.loopDepth--

	case *ast.ForStmt:
		v.validateExpr(s.From, sc)
		v.validateExpr(s.To, sc)
		if s.Step != nil {
			v.validateExpr(s.Step, sc)
		}
		v.enterLoop(s.Span)
		body := newScope(sc)
		body.add(s.Var)
		if s.Body != nil {
			v.validateStmts(s.Body.Statements, body)
		}
		v.loopDepth--

	case *ast.ForEachStmt:
		v.validateExpr(s.Collection, sc)
		v.enterLoop(s.Span)
		body := newScope(sc)
		body.add(s.Var)
		if s.Body != nil {
			v.validateStmts(s.Body.Statements, body)
		}
		v.loopDepth--

	case *ast.ReturnStmt:
		if s.Message != nil {
			v.validateExpr(s.Message, sc)
		}

	case *ast.FailStmt:
		if s.Message != nil {
			v.validateExpr(s.Message, sc)
		}

	case *ast.BreakStmt:
		if v.loopDepth == 0 {
			v.addError(diagnostics.BreakOutsideLoop, s.Span)
		}

	case *ast.ContinueStmt:
		if v.loopDepth == 0 {
			v.addError(diagnostics.ContinueOutsideLoop, s.Span)
		}

	case *ast.ExprStmt:
		if _, ok := s.Expr.(*ast.CallExpr); !ok {
			v.addError(diagnostics.ExpressionNotAllowed, s.Span)
			return
		}
		v.validateExpr(s.Expr, sc)
	}
}

func (v *validator) enterLoop(span ast.Span) {
	v.loopDepth++
	if v.loopDepth == MaxLoopNesting+1 {
		v.addError(diagnostics.LoopNestingTooDeep, span, MaxLoopNesting)
	}
}

// validateTarget checks the root binding of an assignment path. Writes to
// data itself and to paths under any declared variable are fine.
func (v *validator) validateTarget(target ast.Expr, sc *scope) {
	switch t := target.(type) {
	case *ast.Identifier:
		if !sc.has(t.Name) {
			v.addError(diagnostics.UndeclaredVariable, t.Span, t.Name)
		}
	case *ast.PropertyExpr:
		v.validateExpr(t.Object, sc)
	case *ast.IndexExpr:
		v.validateExpr(t.Target, sc)
		v.validateExpr(t.Index, sc)
	}
}

func (v *validator) validateExpr(expr ast.Expr, sc *scope) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NullLiteral:
		// literals are always valid

	case *ast.Identifier:
		if !sc.has(e.Name) {
			v.addError(diagnostics.UndeclaredVariable, e.Span, e.Name)
		}

	case *ast.PropertyExpr:
		v.validateExpr(e.Object, sc)

	case *ast.IndexExpr:
		v.validateExpr(e.Target, sc)
		v.validateExpr(e.Index, sc)

	case *ast.ArrayLiteral:
		for _, elem := range e.Elements {
			v.validateExpr(elem, sc)
		}

	case *ast.ObjectLiteral:
		for _, entry := range e.Entries {
			v.validateExpr(entry.Value, sc)
		}

	case *ast.BinaryExpr:
		v.validateExpr(e.Left, sc)
		v.validateExpr(e.Right, sc)

	case *ast.UnaryExpr:
		v.validateExpr(e.Operand, sc)

	case *ast.TypeTestExpr:
		v.validateExpr(e.Value, sc)

	case *ast.CallExpr:
		for _, arg := range e.Args {
			v.validateExpr(arg, sc)
		}

	case *ast.LambdaExpr:
		body := newScope(sc)
		for _, param := range e.Params {
			body.add(param)
		}
		v.validateExpr(e.Body, body)
	}
}
