// Package stdlib provides the builtin Jyro function registry.
package stdlib

import (
	"fmt"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

// Default builds a registry with every builtin registered.
func Default() *functions.Registry {
	r := functions.NewRegistry()
	registerArrayOps(r)
	registerCombinators(r)
	registerMathOps(r)
	registerStringOps(r)
	registerDateTimeOps(r)
	registerRegexOps(r)
	registerSchemaOps(r)
	registerUtilOps(r)
	return r
}

// --- registration helpers ---

func register(r *functions.Registry, s *functions.Signature, fn func(ec *execution.Context, args []value.Value) (value.Value, error)) {
	r.Register(&functions.GoFunc{Sig: s, Fn: fn})
}

func sig(name string, ret functions.ParamType, params ...functions.Parameter) *functions.Signature {
	return &functions.Signature{Name: name, Params: params, ReturnType: ret}
}

func req(name string, t functions.ParamType) functions.Parameter {
	return functions.Parameter{Name: name, Type: t}
}

func opt(name string, t functions.ParamType) functions.Parameter {
	return functions.Parameter{Name: name, Type: t, Optional: true}
}

// --- argument helpers; the compiler checks declared types before Call ---

func argAt(args []value.Value, i int) (value.Value, bool) {
	if i >= len(args) {
		return nil, false
	}
	if _, isNull := args[i].(value.Null); isNull {
		return args[i], false
	}
	return args[i], true
}

func numberArg(args []value.Value, i int) float64 {
	return args[i].(value.Number).Value
}

func intArg(args []value.Value, i int) (int, error) {
	n := args[i].(value.Number)
	if !n.IsInteger() {
		return 0, fmt.Errorf("expected an integer but got %s", value.FormatNumber(n.Value))
	}
	return int(n.Value), nil
}

func stringArg(args []value.Value, i int) string {
	return args[i].(value.String).Value
}

func arrayArg(args []value.Value, i int) *value.Array {
	return args[i].(*value.Array)
}

func objectArg(args []value.Value, i int) *value.Object {
	return args[i].(*value.Object)
}

func lambdaArg(args []value.Value, i int) *value.Lambda {
	return args[i].(*value.Lambda)
}
