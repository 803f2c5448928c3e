package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

// MaxPaddedLength is the hard cap on the result of PadLeft and PadRight.
const MaxPaddedLength = 1 << 16

func registerStringOps(r *functions.Registry) {
	register(r, sig("Upper", functions.ParamString, req("value", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(strings.ToUpper(stringArg(args, 0))), nil
		})

	register(r, sig("Lower", functions.ParamString, req("value", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(strings.ToLower(stringArg(args, 0))), nil
		})

	register(r, sig("Trim", functions.ParamString, req("value", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(strings.TrimSpace(stringArg(args, 0))), nil
		})

	register(r, sig("Split", functions.ParamArray, req("value", functions.ParamString), req("separator", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			parts := strings.Split(stringArg(args, 0), stringArg(args, 1))
			items := make([]value.Value, len(parts))
			for i, part := range parts {
				items[i] = value.NewString(part)
			}
			return value.NewArray(items), nil
		})

	register(r, sig("Replace", functions.ParamString, req("value", functions.ParamString), req("old", functions.ParamString), req("new", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(strings.ReplaceAll(stringArg(args, 0), stringArg(args, 1), stringArg(args, 2))), nil
		})

	register(r, sig("StartsWith", functions.ParamBoolean, req("value", functions.ParamString), req("prefix", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewBool(strings.HasPrefix(stringArg(args, 0), stringArg(args, 1))), nil
		})

	register(r, sig("EndsWith", functions.ParamBoolean, req("value", functions.ParamString), req("suffix", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewBool(strings.HasSuffix(stringArg(args, 0), stringArg(args, 1))), nil
		})

	register(r, sig("Substring", functions.ParamString, req("value", functions.ParamString), req("start", functions.ParamNumber), opt("length", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			runes := []rune(stringArg(args, 0))
			start, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			if start < 0 || start > len(runes) {
				return nil, fmt.Errorf("start %d is out of range for length %d", start, len(runes))
			}
			end := len(runes)
			if _, present := argAt(args, 2); present {
				length, err := intArg(args, 2)
				if err != nil {
					return nil, err
				}
				if length < 0 {
					return nil, fmt.Errorf("length must not be negative")
				}
				if start+length < end {
					end = start + length
				}
			}
			return value.NewString(string(runes[start:end])), nil
		})

	register(r, sig("PadLeft", functions.ParamString, req("value", functions.ParamString), req("width", functions.ParamNumber), opt("pad", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return pad(args, true)
		})

	register(r, sig("PadRight", functions.ParamString, req("value", functions.ParamString), req("width", functions.ParamNumber), opt("pad", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return pad(args, false)
		})

	register(r, sig("ToString", functions.ParamString, req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(value.ToDisplayString(args[0])), nil
		})

	register(r, sig("ToNumber", functions.ParamNumber, req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			switch v := args[0].(type) {
			case value.Number:
				return v, nil
			case value.String:
				f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
				if err != nil {
					return nil, fmt.Errorf("cannot convert %q to a number", v.Value)
				}
				return value.NewNumber(f), nil
			case value.Bool:
				if v.Value {
					return value.NewNumber(1), nil
				}
				return value.NewNumber(0), nil
			}
			return nil, fmt.Errorf("cannot convert %s to a number", value.TypeName(args[0]))
		})
}

func pad(args []value.Value, left bool) (value.Value, error) {
	runes := []rune(stringArg(args, 0))
	width, err := intArg(args, 1)
	if err != nil {
		return nil, err
	}
	if width > MaxPaddedLength {
		return nil, fmt.Errorf("padded length %d exceeds the maximum of %d", width, MaxPaddedLength)
	}
	padStr := " "
	if _, present := argAt(args, 2); present {
		padStr = stringArg(args, 2)
		if padStr == "" {
			return nil, fmt.Errorf("pad string must not be empty")
		}
	}
	if width <= len(runes) {
		return value.NewString(string(runes)), nil
	}
	fill := []rune(strings.Repeat(padStr, (width-len(runes))/len([]rune(padStr))+1))[:width-len(runes)]
	if left {
		return value.NewString(string(fill) + string(runes)), nil
	}
	return value.NewString(string(runes) + string(fill)), nil
}
