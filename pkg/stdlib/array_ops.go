package stdlib

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

func registerArrayOps(r *functions.Registry) {
	register(r, sig("Append", functions.ParamArray, req("array", functions.ParamArray), req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			items := make([]value.Value, len(arr.Items)+1)
			copy(items, arr.Items)
			items[len(arr.Items)] = args[1]
			return value.NewArray(items), nil
		})

	register(r, sig("Insert", functions.ParamArray, req("array", functions.ParamArray), req("index", functions.ParamNumber), req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			idx, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx > len(arr.Items) {
				return nil, fmt.Errorf("index %d is out of range for length %d", idx, len(arr.Items))
			}
			items := make([]value.Value, 0, len(arr.Items)+1)
			items = append(items, arr.Items[:idx]...)
			items = append(items, args[2])
			items = append(items, arr.Items[idx:]...)
			return value.NewArray(items), nil
		})

	register(r, sig("RemoveAt", functions.ParamArray, req("array", functions.ParamArray), req("index", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			idx, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx >= len(arr.Items) {
				return nil, fmt.Errorf("index %d is out of range for length %d", idx, len(arr.Items))
			}
			items := make([]value.Value, 0, len(arr.Items)-1)
			items = append(items, arr.Items[:idx]...)
			items = append(items, arr.Items[idx+1:]...)
			return value.NewArray(items), nil
		})

	register(r, sig("IndexOf", functions.ParamNumber, req("array", functions.ParamArray), req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			for i, item := range arr.Items {
				if value.Equals(item, args[1]) {
					return value.NewNumber(float64(i)), nil
				}
			}
			return value.NewNumber(-1), nil
		})

	register(r, sig("Contains", functions.ParamBoolean, req("collection", functions.ParamAny), req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			switch coll := args[0].(type) {
			case *value.Array:
				for _, item := range coll.Items {
					if value.Equals(item, args[1]) {
						return value.NewBool(true), nil
					}
				}
				return value.NewBool(false), nil
			case *value.Object:
				key, ok := args[1].(value.String)
				if !ok {
					return nil, fmt.Errorf("object containment expects a string key but got %s", value.TypeName(args[1]))
				}
				return value.NewBool(coll.Has(key.Value)), nil
			case value.String:
				needle, ok := args[1].(value.String)
				if !ok {
					return nil, fmt.Errorf("string containment expects a string but got %s", value.TypeName(args[1]))
				}
				return value.NewBool(strings.Contains(coll.Value, needle.Value)), nil
			}
			return nil, fmt.Errorf("expected an array, object, or string but got %s", value.TypeName(args[0]))
		})

	register(r, sig("Reverse", functions.ParamArray, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			items := make([]value.Value, len(arr.Items))
			for i, item := range arr.Items {
				items[len(arr.Items)-1-i] = item
			}
			return value.NewArray(items), nil
		})

	register(r, sig("Sort", functions.ParamArray, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			items := make([]value.Value, len(arr.Items))
			copy(items, arr.Items)
			var sortErr error
			sort.SliceStable(items, func(i, j int) bool {
				cmp, err := compareForSort(items[i], items[j])
				if err != nil && sortErr == nil {
					sortErr = err
				}
				return cmp < 0
			})
			if sortErr != nil {
				return nil, sortErr
			}
			return value.NewArray(items), nil
		})

	register(r, sig("Concatenate", functions.ParamArray, req("first", functions.ParamArray), req("second", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			a, b := arrayArg(args, 0), arrayArg(args, 1)
			// Shallow: elements are shared with the source arrays.
			items := make([]value.Value, 0, len(a.Items)+len(b.Items))
			items = append(items, a.Items...)
			items = append(items, b.Items...)
			return value.NewArray(items), nil
		})

	register(r, sig("Flatten", functions.ParamArray, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			// Shallow: one level deep, leaf elements shared.
			items := make([]value.Value, 0, len(arr.Items))
			for _, item := range arr.Items {
				if nested, ok := item.(*value.Array); ok {
					items = append(items, nested.Items...)
				} else {
					items = append(items, item)
				}
			}
			return value.NewArray(items), nil
		})

	register(r, sig("Slice", functions.ParamArray, req("array", functions.ParamArray), req("start", functions.ParamNumber), opt("end", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			start, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			end := len(arr.Items)
			if _, present := argAt(args, 2); present {
				end, err = intArg(args, 2)
				if err != nil {
					return nil, err
				}
			}
			if start < 0 {
				start += len(arr.Items)
			}
			if end < 0 {
				end += len(arr.Items)
			}
			if start < 0 {
				start = 0
			}
			if end > len(arr.Items) {
				end = len(arr.Items)
			}
			if start >= end {
				return value.NewArray(nil), nil
			}
			items := make([]value.Value, end-start)
			copy(items, arr.Items[start:end])
			return value.NewArray(items), nil
		})

	register(r, sig("Unique", functions.ParamArray, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			var items []value.Value
			for _, item := range arr.Items {
				seen := false
				for _, kept := range items {
					if value.Equals(kept, item) {
						seen = true
						break
					}
				}
				if !seen {
					items = append(items, item)
				}
			}
			return value.NewArray(items), nil
		})

	register(r, sig("Range", functions.ParamArray, req("start", functions.ParamNumber), req("end", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			start, err := intArg(args, 0)
			if err != nil {
				return nil, err
			}
			end, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			var items []value.Value
			for i := start; i <= end; i++ {
				items = append(items, value.NewNumber(float64(i)))
			}
			return value.NewArray(items), nil
		})

	register(r, sig("Join", functions.ParamString, req("array", functions.ParamArray), req("separator", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			parts := make([]string, len(arr.Items))
			for i, item := range arr.Items {
				parts[i] = value.ToDisplayString(item)
			}
			return value.NewString(strings.Join(parts, stringArg(args, 1))), nil
		})

	register(r, sig("Length", functions.ParamNumber, req("collection", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			switch coll := args[0].(type) {
			case *value.Array:
				return value.NewNumber(float64(len(coll.Items))), nil
			case *value.Object:
				return value.NewNumber(float64(coll.Len())), nil
			case value.String:
				return value.NewNumber(float64(len([]rune(coll.Value)))), nil
			}
			return nil, fmt.Errorf("expected an array, object, or string but got %s", value.TypeName(args[0]))
		})

	register(r, sig("First", functions.ParamAny, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			if len(arr.Items) == 0 {
				return value.NewNull(), nil
			}
			return arr.Items[0], nil
		})

	register(r, sig("Last", functions.ParamAny, req("array", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			arr := arrayArg(args, 0)
			if len(arr.Items) == 0 {
				return value.NewNull(), nil
			}
			return arr.Items[len(arr.Items)-1], nil
		})
}

// compareForSort orders primitives; mixed or container elements are an
// error so Sort stays deterministic.
func compareForSort(a, b value.Value) (int, error) {
	switch av := a.(type) {
	case value.Number:
		if bv, ok := b.(value.Number); ok {
			switch {
			case av.Value < bv.Value:
				return -1, nil
			case av.Value > bv.Value:
				return 1, nil
			}
			return 0, nil
		}
	case value.String:
		if bv, ok := b.(value.String); ok {
			return strings.Compare(av.Value, bv.Value), nil
		}
	case value.Bool:
		if bv, ok := b.(value.Bool); ok {
			switch {
			case !av.Value && bv.Value:
				return -1, nil
			case av.Value && !bv.Value:
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("cannot order %s against %s", value.TypeName(a), value.TypeName(b))
}
