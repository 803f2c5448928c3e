package value

import (
	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
)

// GetProperty reads a named property. Objects return the mapped value or
// null when the key is absent; every other type is an error.
func GetProperty(v Value, key string) (Value, error) {
	switch val := v.(type) {
	case *Object:
		if got, ok := val.Get(key); ok {
			return got, nil
		}
		return NewNull(), nil
	case Null, nil:
		return nil, diagnostics.Errorf(diagnostics.PropertyAccessOnNull, key)
	default:
		return nil, diagnostics.Errorf(diagnostics.PropertyAccessInvalidType, key, TypeName(v))
	}
}

// SetProperty writes a named property. Only objects accept property writes.
func SetProperty(v Value, key string, val Value) error {
	obj, ok := v.(*Object)
	if !ok {
		return diagnostics.Errorf(diagnostics.SetPropertyOnNonObject, key, TypeName(v))
	}
	obj.Set(key, val)
	return nil
}

// GetIndex reads an indexed element. Arrays and strings take an integer
// index with negative values wrapping from the end; objects take a string
// index and behave as GetProperty.
func GetIndex(v Value, idx Value) (Value, error) {
	switch target := v.(type) {
	case *Array:
		i, err := integerIndex(target, idx)
		if err != nil {
			return nil, err
		}
		i, err = resolveIndex(i, len(target.Items))
		if err != nil {
			return nil, err
		}
		return target.Items[i], nil

	case String:
		n, ok := idx.(Number)
		if !ok || !n.IsInteger() {
			return nil, diagnostics.Errorf(diagnostics.InvalidIndexType, TypeName(v), TypeName(idx))
		}
		runes := []rune(target.Value)
		i, err := resolveIndex(int(n.Value), len(runes))
		if err != nil {
			return nil, err
		}
		return NewString(string(runes[i])), nil

	case *Object:
		key, ok := idx.(String)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.InvalidIndexType, TypeName(v), TypeName(idx))
		}
		return GetProperty(v, key.Value)

	case Null, nil:
		return nil, diagnostics.Errorf(diagnostics.IndexAccessOnNull)
	}
	return nil, diagnostics.Errorf(diagnostics.InvalidIndexType, TypeName(v), TypeName(idx))
}

// SetIndex writes an indexed element. Writes are stricter than reads:
// negative indices are rejected and only containers are writable.
func SetIndex(v Value, idx Value, val Value) error {
	switch target := v.(type) {
	case *Array:
		i, err := integerIndex(target, idx)
		if err != nil {
			return err
		}
		if i < 0 {
			return diagnostics.Errorf(diagnostics.NegativeIndex, i)
		}
		if i >= len(target.Items) {
			return diagnostics.Errorf(diagnostics.IndexOutOfRange, i, len(target.Items))
		}
		target.Items[i] = val
		return nil

	case *Object:
		key, ok := idx.(String)
		if !ok {
			return diagnostics.Errorf(diagnostics.InvalidIndexType, TypeName(v), TypeName(idx))
		}
		target.Set(key.Value, val)
		return nil
	}
	return diagnostics.Errorf(diagnostics.SetIndexOnNonContainer, TypeName(v))
}

func integerIndex(target *Array, idx Value) (int, error) {
	n, ok := idx.(Number)
	if !ok || !n.IsInteger() {
		return 0, diagnostics.Errorf(diagnostics.InvalidIndexType, TypeName(target), TypeName(idx))
	}
	return int(n.Value), nil
}

// resolveIndex maps a possibly negative read index into [0, length).
func resolveIndex(i, length int) (int, error) {
	resolved := i
	if resolved < 0 {
		resolved += length
	}
	if resolved < 0 || resolved >= length {
		return 0, diagnostics.Errorf(diagnostics.IndexOutOfRange, i, length)
	}
	return resolved, nil
}

// CoerceToType checks a value against a declared type hint, naming the
// variable in the error. Any passes everything through.
func CoerceToType(v Value, hint ast.TypeHint, varName string) (Value, error) {
	if HintMatches(v, hint) {
		return v, nil
	}
	return nil, diagnostics.Errorf(diagnostics.InvalidType, varName, string(hint), TypeName(v))
}

// ToIterable materializes the foreach view of a value: array elements in
// order, object {key, value} pairs in insertion order, or single-character
// strings.
func ToIterable(v Value) ([]Value, error) {
	switch val := v.(type) {
	case *Array:
		return val.Items, nil
	case *Object:
		fields := val.Fields()
		items := make([]Value, len(fields))
		for i, f := range fields {
			pair := NewObject()
			pair.Set("key", NewString(f.Key))
			pair.Set("value", f.Value)
			items[i] = pair
		}
		return items, nil
	case String:
		runes := []rune(val.Value)
		items := make([]Value, len(runes))
		for i, r := range runes {
			items[i] = NewString(string(r))
		}
		return items, nil
	}
	return nil, diagnostics.Errorf(diagnostics.NotIterable, TypeName(v))
}
