package functions

import (
	"sort"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/value"
)

// Function is one callable in the merged table. Implementations receive the
// argument list already evaluated and a reference to the execution context;
// lambda arguments arrive as *value.Lambda handles whose invocation bumps
// the call-depth counter.
type Function interface {
	Signature() *Signature
	Call(ec *execution.Context, args []value.Value) (value.Value, error)
}

// GoFunc adapts a Go closure into a Function.
type GoFunc struct {
	Sig *Signature
	Fn  func(ec *execution.Context, args []value.Value) (value.Value, error)
}

func (f *GoFunc) Signature() *Signature {
	return f.Sig
}

func (f *GoFunc) Call(ec *execution.Context, args []value.Value) (value.Value, error) {
	return f.Fn(ec, args)
}

// Registry is a named function table.
type Registry struct {
	fns map[string]Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Function)}
}

// Register adds a function under its signature name. A later registration
// of the same name replaces the earlier one.
func (r *Registry) Register(fn Function) {
	r.fns[fn.Signature().Name] = fn
}

// Lookup retrieves a function by name.
func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge combines the builtin table with host-provided functions. A host
// function that shadows a builtin wins the binding; the collision is
// surfaced to the caller as a FunctionOverride warning.
func Merge(builtins *Registry, host []Function) (*Registry, []diagnostics.Diagnostic) {
	merged := NewRegistry()
	if builtins != nil {
		for name, fn := range builtins.fns {
			merged.fns[name] = fn
		}
	}

	var warnings []diagnostics.Diagnostic
	for _, fn := range host {
		name := fn.Signature().Name
		if builtins != nil {
			if _, shadowed := builtins.fns[name]; shadowed {
				warnings = append(warnings, diagnostics.NewWarning(diagnostics.FunctionOverride, nil, name))
			}
		}
		merged.fns[name] = fn
	}
	return merged, warnings
}

// CheckArity validates an argument count against the signature bounds.
func CheckArity(sig *Signature, argc int) *diagnostics.ScriptError {
	if argc < sig.MinArity() {
		return diagnostics.Errorf(diagnostics.TooFewArguments, sig.Name, sig.MinArity(), argc)
	}
	if argc > sig.MaxArity() {
		return diagnostics.Errorf(diagnostics.TooManyArguments, sig.Name, sig.MaxArity(), argc)
	}
	return nil
}

// CheckArgTypes validates evaluated argument values against the declared
// parameter types. Any accepts everything; null is accepted for optional
// parameters.
func CheckArgTypes(sig *Signature, args []value.Value) *diagnostics.ScriptError {
	for i, arg := range args {
		if i >= len(sig.Params) {
			break
		}
		p := sig.Params[i]
		if typeMatches(p.Type, arg) {
			continue
		}
		if p.Optional {
			if _, isNull := arg.(value.Null); isNull {
				continue
			}
		}
		return diagnostics.Errorf(diagnostics.FunctionRuntimeError, sig.Name,
			"argument '"+p.Name+"' expects "+string(p.Type)+" but got "+value.TypeName(arg))
	}
	return nil
}

func typeMatches(t ParamType, v value.Value) bool {
	if t == ParamAny {
		return true
	}
	return string(t) == value.TypeName(v)
}
