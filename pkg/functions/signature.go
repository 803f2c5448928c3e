// Package functions defines callable signatures and the merged
// builtin-plus-host function table the linker resolves against.
package functions

// ParamType names a declared parameter or return type.
type ParamType string

const (
	ParamAny     ParamType = "any"
	ParamBoolean ParamType = "boolean"
	ParamNumber  ParamType = "number"
	ParamString  ParamType = "string"
	ParamArray   ParamType = "array"
	ParamObject  ParamType = "object"
	ParamLambda  ParamType = "lambda"
	ParamNull    ParamType = "null"
)

// Parameter is one declared parameter of a callable.
type Parameter struct {
	Name     string
	Type     ParamType
	Optional bool
}

// Signature describes a callable: its name, ordered parameter list, and
// declared return type. Min and max arity derive from the parameter list;
// optional parameters must trail required ones.
type Signature struct {
	Name       string
	Params     []Parameter
	ReturnType ParamType
}

// MinArity returns the number of required parameters.
func (s *Signature) MinArity() int {
	n := 0
	for _, p := range s.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}

// MaxArity returns the total number of declared parameters.
func (s *Signature) MaxArity() int {
	return len(s.Params)
}

// LambdaParams returns the zero-based positions of lambda-typed parameters.
// The linker uses them to require lambda literals at those argument slots.
func (s *Signature) LambdaParams() []int {
	var idx []int
	for i, p := range s.Params {
		if p.Type == ParamLambda {
			idx = append(idx, i)
		}
	}
	return idx
}
