package parser_test

import (
	"testing"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(src)
	if prog == nil {
		t.Fatalf("parse errors: %s", diagnostics.FormatAll(diags, true))
	}
	return prog
}

func parseErr(t *testing.T, src string, code diagnostics.Code) {
	t.Helper()
	prog, diags := parser.Parse(src)
	if prog != nil {
		t.Fatalf("%q: expected parse error %s", src, code)
	}
	for _, d := range diags {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("%q: diagnostics %s do not include %s", src, diagnostics.FormatAll(diags, true), code)
}

func TestVarDecl(t *testing.T) {
	prog := parse(t, `var x: number = 1`)
	decl, ok := prog.Statements[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("statement is %T", prog.Statements[0])
	}
	if decl.Name != "x" || decl.Hint != ast.HintNumber || decl.Init == nil {
		t.Errorf("decl = %+v", decl)
	}
}

func TestVarDeclNoHintNoInit(t *testing.T) {
	prog := parse(t, `var x`)
	decl := prog.Statements[0].(*ast.VarDeclStmt)
	if decl.Hint != "" || decl.Init != nil {
		t.Errorf("decl = %+v", decl)
	}
}

func TestAssignmentTargets(t *testing.T) {
	prog := parse(t, `
data.a = 1
data["k"] = 2
data.items[0].name = "x"
data.n += 3
`)
	if len(prog.Statements) != 4 {
		t.Fatalf("got %d statements", len(prog.Statements))
	}
	first := prog.Statements[0].(*ast.AssignStmt)
	if _, ok := first.Target.(*ast.PropertyExpr); !ok {
		t.Errorf("first target is %T", first.Target)
	}
	second := prog.Statements[1].(*ast.AssignStmt)
	if _, ok := second.Target.(*ast.IndexExpr); !ok {
		t.Errorf("second target is %T", second.Target)
	}
	third := prog.Statements[2].(*ast.AssignStmt)
	if _, ok := third.Target.(*ast.PropertyExpr); !ok {
		t.Errorf("third target is %T", third.Target)
	}
	fourth := prog.Statements[3].(*ast.AssignStmt)
	if fourth.Op != ast.AssignAdd {
		t.Errorf("fourth op = %v", fourth.Op)
	}
}

func TestInvalidAssignTarget(t *testing.T) {
	parseErr(t, `Foo() = 3`, diagnostics.InvalidAssignTarget)
	parseErr(t, `Foo()++`, diagnostics.InvalidAssignTarget)
}

func TestIfElseChain(t *testing.T) {
	prog := parse(t, `
if a > 1 {
    b = 1
} else if a > 0 {
    b = 2
} else {
    b = 3
}
`)
	stmt := prog.Statements[0].(*ast.IfStmt)
	if len(stmt.ElseIfs) != 1 || stmt.Else == nil {
		t.Errorf("if = %+v", stmt)
	}
}

func TestSwitchCases(t *testing.T) {
	prog := parse(t, `
switch data.kind {
    case "a", "b":
        data.x = 1
    case 3:
        data.x = 2
    default:
        data.x = 3
}
`)
	stmt := prog.Statements[0].(*ast.SwitchStmt)
	if len(stmt.Cases) != 2 {
		t.Fatalf("cases = %d", len(stmt.Cases))
	}
	if len(stmt.Cases[0].Values) != 2 {
		t.Errorf("first case comparands = %d", len(stmt.Cases[0].Values))
	}
	if stmt.Default == nil {
		t.Error("default missing")
	}
}

func TestForLoopForms(t *testing.T) {
	prog := parse(t, `
for i from 1 to 10 { }
for j from 10 to 1 step 2 descending { }
`)
	first := prog.Statements[0].(*ast.ForStmt)
	if first.Step != nil || first.Descending {
		t.Errorf("first = %+v", first)
	}
	second := prog.Statements[1].(*ast.ForStmt)
	if second.Step == nil || !second.Descending {
		t.Errorf("second = %+v", second)
	}
}

func TestForEach(t *testing.T) {
	prog := parse(t, `foreach item in data.items { data.n = item }`)
	stmt := prog.Statements[0].(*ast.ForEachStmt)
	if stmt.Var != "item" {
		t.Errorf("var = %q", stmt.Var)
	}
}

func TestReturnMessageSameLineOnly(t *testing.T) {
	prog := parse(t, "return \"done\"")
	ret := prog.Statements[0].(*ast.ReturnStmt)
	if ret.Message == nil {
		t.Error("same-line message not parsed")
	}

	prog = parse(t, "return\ndata.n = 1")
	ret = prog.Statements[0].(*ast.ReturnStmt)
	if ret.Message != nil {
		t.Error("next-line expression mistaken for message")
	}
	if len(prog.Statements) != 2 {
		t.Errorf("statements = %d", len(prog.Statements))
	}
}

func TestLambdaForms(t *testing.T) {
	prog := parse(t, `data.out = Map(data.items, x => x * 2)`)
	assign := prog.Statements[0].(*ast.AssignStmt)
	call := assign.Value.(*ast.CallExpr)
	lambda, ok := call.Args[1].(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("second arg is %T", call.Args[1])
	}
	if len(lambda.Params) != 1 || lambda.Params[0] != "x" {
		t.Errorf("params = %v", lambda.Params)
	}

	prog = parse(t, `data.out = Reduce(data.items, (acc, item) => acc + item, 0)`)
	call = prog.Statements[0].(*ast.AssignStmt).Value.(*ast.CallExpr)
	lambda = call.Args[1].(*ast.LambdaExpr)
	if len(lambda.Params) != 2 {
		t.Errorf("params = %v", lambda.Params)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	prog := parse(t, `data.x = 1 + 2 * 3 == 7 and true`)
	expr := prog.Statements[0].(*ast.AssignStmt).Value.(*ast.BinaryExpr)
	if expr.Op != ast.OpAnd {
		t.Fatalf("top op = %v", expr.Op)
	}
	eq := expr.Left.(*ast.BinaryExpr)
	if eq.Op != ast.OpEqEq {
		t.Fatalf("left op = %v", eq.Op)
	}
	add := eq.Left.(*ast.BinaryExpr)
	if add.Op != ast.OpAdd {
		t.Fatalf("inner op = %v", add.Op)
	}
	if mul := add.Right.(*ast.BinaryExpr); mul.Op != ast.OpMul {
		t.Errorf("multiplication did not bind tighter")
	}
}

func TestTypeTest(t *testing.T) {
	prog := parse(t, `data.ok = data.n is number`)
	test := prog.Statements[0].(*ast.AssignStmt).Value.(*ast.TypeTestExpr)
	if test.Hint != ast.HintNumber {
		t.Errorf("hint = %v", test.Hint)
	}
}

func TestLiteralExpressions(t *testing.T) {
	prog := parse(t, `data.all = [1, "two", true, null, {name: "n", "quoted": 2}]`)
	arr := prog.Statements[0].(*ast.AssignStmt).Value.(*ast.ArrayLiteral)
	if len(arr.Elements) != 5 {
		t.Fatalf("elements = %d", len(arr.Elements))
	}
	obj := arr.Elements[4].(*ast.ObjectLiteral)
	if len(obj.Entries) != 2 || obj.Entries[0].Key != "name" || obj.Entries[1].Key != "quoted" {
		t.Errorf("entries = %+v", obj.Entries)
	}
}

func TestUnknownTypeName(t *testing.T) {
	parseErr(t, `var x: integer = 1`, diagnostics.UnknownTypeName)
	parseErr(t, `data.ok = data.n is float`, diagnostics.UnknownTypeName)
}

func TestParseErrors(t *testing.T) {
	parseErr(t, `var = 1`, diagnostics.ExpectedToken)
	parseErr(t, `if x {`, diagnostics.ExpectedToken)
	parseErr(t, `data.x = `, diagnostics.ExpectedExpression)
	parseErr(t, `for x in y { }`, diagnostics.ExpectedToken)
	parseErr(t, `45`, diagnostics.ExpectedStatement)
}

func TestStatementSpans(t *testing.T) {
	prog := parse(t, "data.a = 1\ndata.b = 2")
	second := prog.Statements[1]
	if second.NodeSpan().StartLine != 2 {
		t.Errorf("second statement span = %+v", second.NodeSpan())
	}
}
