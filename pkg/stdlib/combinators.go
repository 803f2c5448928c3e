package stdlib

import (
	"sort"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

// The higher-order combinators. Lambda arguments arrive as invocable
// handles; every invocation runs through the call-depth account.
func registerCombinators(r *functions.Registry) {
	register(r, sig("Map", functions.ParamArray, req("array", functions.ParamArray), req("selector", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			items := make([]value.Value, len(arr.Items))
			for i, item := range arr.Items {
				mapped, err := fn.Invoke([]value.Value{item, value.NewNumber(float64(i))})
				if err != nil {
					return nil, err
				}
				items[i] = mapped
			}
			return value.NewArray(items), nil
		})

	register(r, sig("Where", functions.ParamArray, req("array", functions.ParamArray), req("predicate", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			var items []value.Value
			for i, item := range arr.Items {
				keep, err := fn.Invoke([]value.Value{item, value.NewNumber(float64(i))})
				if err != nil {
					return nil, err
				}
				if value.Truthiness(keep) {
					items = append(items, item)
				}
			}
			return value.NewArray(items), nil
		})

	register(r, sig("All", functions.ParamBoolean, req("array", functions.ParamArray), req("predicate", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			for _, item := range arr.Items {
				ok, err := fn.Invoke([]value.Value{item})
				if err != nil {
					return nil, err
				}
				if !value.Truthiness(ok) {
					return value.NewBool(false), nil
				}
			}
			return value.NewBool(true), nil
		})

	register(r, sig("Any", functions.ParamBoolean, req("array", functions.ParamArray), req("predicate", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			for _, item := range arr.Items {
				ok, err := fn.Invoke([]value.Value{item})
				if err != nil {
					return nil, err
				}
				if value.Truthiness(ok) {
					return value.NewBool(true), nil
				}
			}
			return value.NewBool(false), nil
		})

	register(r, sig("Find", functions.ParamAny, req("array", functions.ParamArray), req("predicate", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			for _, item := range arr.Items {
				ok, err := fn.Invoke([]value.Value{item})
				if err != nil {
					return nil, err
				}
				if value.Truthiness(ok) {
					return item, nil
				}
			}
			return value.NewNull(), nil
		})

	register(r, sig("Reduce", functions.ParamAny, req("array", functions.ParamArray), req("reducer", functions.ParamLambda), opt("initial", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			var acc value.Value = value.NewNull()
			start := 0
			if v, present := argAt(args, 2); present {
				acc = v
			} else if len(arr.Items) > 0 {
				acc = arr.Items[0]
				start = 1
			}
			for _, item := range arr.Items[start:] {
				next, err := fn.Invoke([]value.Value{acc, item})
				if err != nil {
					return nil, err
				}
				acc = next
			}
			return acc, nil
		})

	register(r, sig("Each", functions.ParamNull, req("array", functions.ParamArray), req("action", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			for i, item := range arr.Items {
				if _, err := fn.Invoke([]value.Value{item, value.NewNumber(float64(i))}); err != nil {
					return nil, err
				}
			}
			return value.NewNull(), nil
		})

	register(r, sig("Count", functions.ParamNumber, req("array", functions.ParamArray), req("predicate", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			count := 0
			for _, item := range arr.Items {
				ok, err := fn.Invoke([]value.Value{item})
				if err != nil {
					return nil, err
				}
				if value.Truthiness(ok) {
					count++
				}
			}
			return value.NewNumber(float64(count)), nil
		})

	register(r, sig("SortBy", functions.ParamArray, req("array", functions.ParamArray), req("selector", functions.ParamLambda)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr, fn := arrayArg(args, 0), lambdaArg(args, 1)
			type keyed struct {
				item value.Value
				key  value.Value
			}
			pairs := make([]keyed, len(arr.Items))
			for i, item := range arr.Items {
				key, err := fn.Invoke([]value.Value{item})
				if err != nil {
					return nil, err
				}
				pairs[i] = keyed{item: item, key: key}
			}
			var sortErr error
			sort.SliceStable(pairs, func(i, j int) bool {
				cmp, err := compareForSort(pairs[i].key, pairs[j].key)
				if err != nil && sortErr == nil {
					sortErr = err
				}
				return cmp < 0
			})
			if sortErr != nil {
				return nil, sortErr
			}
			items := make([]value.Value, len(pairs))
			for i, p := range pairs {
				items[i] = p.item
			}
			return value.NewArray(items), nil
		})
}
