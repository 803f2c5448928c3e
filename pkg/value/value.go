// Package value implements the closed Jyro value universe and its operator,
// coercion, and equality semantics.
package value

import (
	"math"
	"strconv"

	"github.com/meschsystems/jyro/pkg/ast"
)

// Value is the interface for all Jyro runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	jyroValue() // sealed marker
}

// Null represents the null value.
type Null struct{}

func (Null) jyroValue() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) jyroValue() {}

// Number represents a numeric value (IEEE-754 double).
type Number struct {
	Value float64
}

func (Number) jyroValue() {}

// IsInteger reports whether the number is finite with a zero fractional part.
func (n Number) IsInteger() bool {
	return !math.IsInf(n.Value, 0) && !math.IsNaN(n.Value) && n.Value == math.Trunc(n.Value)
}

// String represents a string value.
type String struct {
	Value string
}

func (String) jyroValue() {}

// Array represents an ordered sequence of values. Arrays are held by pointer
// so index writes are visible through every reference to the same array.
type Array struct {
	Items []Value
}

func (*Array) jyroValue() {}

// Field is a key-value pair in an ordered object.
type Field struct {
	Key   string
	Value Value
}

// Object represents an insertion-ordered map of string keys to values.
// Objects are held by pointer so property writes are visible through every
// reference to the same object.
type Object struct {
	fields []Field
	index  map[string]int // lazy index for lookups
}

func (*Object) jyroValue() {}

// Lambda is an invocable closure compiled in place at a call site. It
// participates in the value universe so higher-order builtins can receive it
// as an ordinary argument; it is not serializable and never equal to
// anything but itself.
type Lambda struct {
	Arity  int
	Invoke func(args []Value) (Value, error)
}

func (*Lambda) jyroValue() {}

// NewNull creates a null value.
func NewNull() Value {
	return Null{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewArray creates an array value owning items.
func NewArray(items []Value) *Array {
	if items == nil {
		items = []Value{}
	}
	return &Array{Items: items}
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// NewObjectFromFields creates an object from ordered fields. Later duplicate
// keys overwrite earlier ones without disturbing insertion order.
func NewObjectFromFields(fields []Field) *Object {
	o := NewObject()
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o
}

// Truthiness returns the boolean interpretation of a value. The rule is
// total: null and false are falsy, zero, empty strings, and empty containers
// are falsy, everything else is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case Null, nil:
		return false
	case Bool:
		return val.Value
	case Number:
		return val.Value != 0
	case String:
		return val.Value != ""
	case *Array:
		return len(val.Items) > 0
	case *Object:
		return val.Len() > 0
	default:
		return true
	}
}

// TypeName returns the user-facing type name of a value.
func TypeName(v Value) string {
	switch v.(type) {
	case Null, nil:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *Array:
		return "array"
	case *Object:
		return "object"
	case *Lambda:
		return "lambda"
	}
	return "unknown"
}

// HintMatches reports whether a value satisfies a declared type hint.
func HintMatches(v Value, hint ast.TypeHint) bool {
	if hint == ast.HintAny || hint == "" {
		return true
	}
	return string(hint) == TypeName(v)
}

// FormatNumber renders a number the way scripts see it: integers without a
// decimal point.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ToDisplayString renders a value for message coercion (return/fail
// messages, string concatenation via ToString).
func ToDisplayString(v Value) string {
	switch val := v.(type) {
	case Null, nil:
		return "null"
	case Bool:
		if val.Value {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(val.Value)
	case String:
		return val.Value
	default:
		b, err := ToJSON(v)
		if err != nil {
			return TypeName(v)
		}
		return string(b)
	}
}
