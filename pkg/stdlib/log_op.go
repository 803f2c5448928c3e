package stdlib

import (
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

// LogFunction builds the Log builtin bound to a host sink. It is only
// registered when the host configures one.
func LogFunction(sink func(string)) functions.Function {
	return &functions.GoFunc{
		Sig: sig("Log", functions.ParamNull, req("message", functions.ParamAny)),
		Fn: func(ec *execution.Context, args []value.Value) (value.Value, error) {
			sink(value.ToDisplayString(args[0]))
			return value.NewNull(), nil
		},
	}
}
