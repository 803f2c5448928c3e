// Package linker resolves call sites against the merged builtin-plus-host
// function table and checks arity and lambda obligations.
package linker

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/functions"
)

type linker struct {
	table *functions.Registry
	diags []diagnostics.Diagnostic
}

// Link resolves every call expression in the program against the function
// table. Arity is checked against each signature's [min, max] bounds, and
// lambda-typed parameters require a lambda literal at the call site.
// Linking happens once per program; a precompiled artifact must be linked
// again against the current host's table.
func Link(program *ast.Program, table *functions.Registry) []diagnostics.Diagnostic {
	l := &linker{table: table}
	for _, stmt := range program.Statements {
		l.linkStmt(stmt)
	}
	return l.diags
}

func (l *linker) addError(code diagnostics.Code, span ast.Span, args ...any) {
	l.diags = append(l.diags, diagnostics.NewError(code, diagnostics.LocationFromSpan(span), args...))
}

func (l *linker) linkBlock(block *ast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		l.linkStmt(stmt)
	}
}

func (l *linker) linkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		l.linkExpr(s.Init)
	case *ast.AssignStmt:
		l.linkExpr(s.Target)
		l.linkExpr(s.Value)
	case *ast.IncDecStmt:
		l.linkExpr(s.Target)
	case *ast.IfStmt:
		l.linkExpr(s.Cond)
		l.linkBlock(s.Then)
		for _, elif := range s.ElseIfs {
			l.linkExpr(elif.Cond)
			l.linkBlock(elif.Body)
		}
		l.linkBlock(s.Else)
	case *ast.SwitchStmt:
		l.linkExpr(s.Subject)
		for _, c := range s.Cases {
			for _, val := range c.Values {
				l.linkExpr(val)
			}
			l.linkBlock(c.Body)
		}
		l.linkBlock(s.Default)
	case *ast.WhileStmt:
		l.linkExpr(s.Cond)
		l.linkBlock(s.Body)
	case *ast.ForStmt:
		l.linkExpr(s.From)
		l.linkExpr(s.To)
		l.linkExpr(s.Step)
		l.linkBlock(s.Body)
	case *ast.ForEachStmt:
		l.linkExpr(s.Collection)
		l.linkBlock(s.Body)
	case *ast.ReturnStmt:
		l.linkExpr(s.Message)
	case *ast.FailStmt:
		l.linkExpr(s.Message)
	case *ast.ExprStmt:
		l.linkExpr(s.Expr)
	}
}

func (l *linker) linkExpr(expr ast.Expr) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *ast.PropertyExpr:
		l.linkExpr(e.Object)
	case *ast.IndexExpr:
		l.linkExpr(e.Target)
		l.linkExpr(e.Index)
	case *ast.ArrayLiteral:
		for _, elem := range e.Elements {
			l.linkExpr(elem)
		}
	case *ast.ObjectLiteral:
		for _, entry := range e.Entries {
			l.linkExpr(entry.Value)
		}
	case *ast.BinaryExpr:
		l.linkExpr(e.Left)
		l.linkExpr(e.Right)
	case *ast.UnaryExpr:
		l.linkExpr(e.Operand)
	case *ast.TypeTestExpr:
		l.linkExpr(e.Value)
	case *ast.LambdaExpr:
		l.linkExpr(e.Body)
	case *ast.CallExpr:
		l.linkCall(e)
	}
}

func (l *linker) linkCall(call *ast.CallExpr) {
	fn, ok := l.table.Lookup(call.Name)
	if !ok {
		l.addError(diagnostics.UndefinedFunction, call.NameSpan, call.Name, l.suggestion(call.Name))
	} else {
		sig := fn.Signature()
		if err := functions.CheckArity(sig, len(call.Args)); err != nil {
			code := diagnostics.TooFewArguments
			if len(call.Args) > sig.MaxArity() {
				code = diagnostics.TooManyArguments
			}
			min := sig.MinArity()
			if code == diagnostics.TooManyArguments {
				min = sig.MaxArity()
			}
			l.addError(code, call.Span, sig.Name, min, len(call.Args))
		}
		for _, idx := range sig.LambdaParams() {
			if idx >= len(call.Args) {
				continue
			}
			if _, isLambda := call.Args[idx].(*ast.LambdaExpr); !isLambda {
				l.addError(diagnostics.LambdaRequired, call.Args[idx].NodeSpan(), sig.Name, idx+1)
			}
		}
	}

	for _, arg := range call.Args {
		l.linkExpr(arg)
	}
}

// suggestion finds the closest registered name for a "did you mean" hint.
func (l *linker) suggestion(name string) string {
	matches := fuzzy.RankFindNormalizedFold(name, l.table.Names())
	if len(matches) == 0 {
		return ""
	}
	sort.Sort(matches)
	return " (did you mean '" + matches[0].Target + "'?)"
}
