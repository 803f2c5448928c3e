package compiler

import (
	"context"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/validator"
	"github.com/meschsystems/jyro/pkg/value"
)

// Result holds the outcome of one execution.
type Result struct {
	// Value is the data graph after the script ran.
	Value value.Value
	// CompletionMessage is the optional reason recorded by return or fail.
	CompletionMessage string
	// Statements and LoopIterations are the accounted totals.
	Statements     int64
	LoopIterations int64
}

// Execute evaluates the compiled program against the input value bound to
// the data identifier. A nil opts runs unbounded; otherwise the limiter's
// timer starts now and is linked with ctx so either side can cancel.
// Failures come back as a *diagnostics.ScriptError.
func (p *Program) Execute(ctx context.Context, data value.Value, opts *execution.Options) (*Result, error) {
	ec := execution.NewContext(ctx, opts)
	defer ec.Close()
	return p.ExecuteWithContext(ec, data)
}

// ExecuteWithContext runs against a caller-owned execution context, for
// hosts that need to inspect counters or share the context with their own
// functions.
func (p *Program) ExecuteWithContext(ec *execution.Context, data value.Value) (*Result, error) {
	if data == nil {
		data = value.NewNull()
	}
	root := newEnv(nil)
	dataCell := root.declare(validator.DataVariable, ast.HintAny, data)

	if _, err := runStmts(p.root, ec, root); err != nil {
		return nil, err
	}

	resultVal := dataCell.val
	if explicit, ok := ec.ReturnValue(); ok {
		resultVal = explicit
	}
	msg, _ := ec.CompletionMessage()
	return &Result{
		Value:             resultVal,
		CompletionMessage: msg,
		Statements:        ec.Statements(),
		LoopIterations:    ec.LoopIterations(),
	}, nil
}
