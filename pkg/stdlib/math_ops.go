package stdlib

import (
	"fmt"
	"math"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

func registerMathOps(r *functions.Registry) {
	unary := func(name string, fn func(float64) float64) {
		register(r, sig(name, functions.ParamNumber, req("value", functions.ParamNumber)),
			func(ec *execution.Context, args []value.Value) (value.Value, error) {
				return value.NewNumber(fn(numberArg(args, 0))), nil
			})
	}

	unary("Abs", math.Abs)
	unary("Floor", math.Floor)
	unary("Ceil", math.Ceil)
	unary("Round", math.Round)

	register(r, sig("Min", functions.ParamNumber, req("first", functions.ParamNumber), req("second", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewNumber(math.Min(numberArg(args, 0), numberArg(args, 1))), nil
		})

	register(r, sig("Max", functions.ParamNumber, req("first", functions.ParamNumber), req("second", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewNumber(math.Max(numberArg(args, 0), numberArg(args, 1))), nil
		})

	register(r, sig("Pow", functions.ParamNumber, req("base", functions.ParamNumber), req("exponent", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewNumber(math.Pow(numberArg(args, 0), numberArg(args, 1))), nil
		})

	register(r, sig("Sqrt", functions.ParamNumber, req("value", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			n := numberArg(args, 0)
			if n < 0 {
				return nil, fmt.Errorf("cannot take the square root of %s", value.FormatNumber(n))
			}
			return value.NewNumber(math.Sqrt(n)), nil
		})

	register(r, sig("Clamp", functions.ParamNumber, req("value", functions.ParamNumber), req("min", functions.ParamNumber), req("max", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			v, lo, hi := numberArg(args, 0), numberArg(args, 1), numberArg(args, 2)
			if lo > hi {
				return nil, fmt.Errorf("min %s is greater than max %s", value.FormatNumber(lo), value.FormatNumber(hi))
			}
			return value.NewNumber(math.Min(math.Max(v, lo), hi)), nil
		})

	// --- aggregation over numeric arrays ---

	register(r, sig("Sum", functions.ParamNumber, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			nums, err := numericItems(arrayArg(args, 0))
			if err != nil {
				return nil, err
			}
			total := 0.0
			for _, n := range nums {
				total += n
			}
			return value.NewNumber(total), nil
		})

	register(r, sig("Average", functions.ParamNumber, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			nums, err := numericItems(arrayArg(args, 0))
			if err != nil {
				return nil, err
			}
			if len(nums) == 0 {
				return nil, fmt.Errorf("cannot average an empty array")
			}
			total := 0.0
			for _, n := range nums {
				total += n
			}
			return value.NewNumber(total / float64(len(nums))), nil
		})

	register(r, sig("MinOf", functions.ParamNumber, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return aggregate(arrayArg(args, 0), math.Min)
		})

	register(r, sig("MaxOf", functions.ParamNumber, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return aggregate(arrayArg(args, 0), math.Max)
		})
}

func numericItems(arr *value.Array) ([]float64, error) {
	nums := make([]float64, len(arr.Items))
	for i, item := range arr.Items {
		n, ok := item.(value.Number)
		if !ok {
			return nil, fmt.Errorf("expected an array of numbers but element %d is %s", i, value.TypeName(item))
		}
		nums[i] = n.Value
	}
	return nums, nil
}

func aggregate(arr *value.Array, pick func(a, b float64) float64) (value.Value, error) {
	nums, err := numericItems(arr)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("cannot aggregate an empty array")
	}
	best := nums[0]
	for _, n := range nums[1:] {
		best = pick(best, n)
	}
	return value.NewNumber(best), nil
}
