package compiler

import (
	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/value"
)

// cell is one variable binding. Lambdas capture cells by reference, so a
// write through any capture is visible everywhere.
type cell struct {
	val  value.Value
	hint ast.TypeHint
}

// env is a scoped environment of variable cells with parent-chained lookup.
type env struct {
	vars   map[string]*cell
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: make(map[string]*cell), parent: parent}
}

func (e *env) child() *env {
	return newEnv(e)
}

// declare binds a fresh cell in this scope, shadowing any outer binding.
func (e *env) declare(name string, hint ast.TypeHint, val value.Value) *cell {
	c := &cell{val: val, hint: hint}
	e.vars[name] = c
	return c
}

// lookup resolves a name to the innermost visible cell.
func (e *env) lookup(name string) *cell {
	if c, ok := e.vars[name]; ok {
		return c
	}
	if e.parent != nil {
		return e.parent.lookup(name)
	}
	return nil
}
