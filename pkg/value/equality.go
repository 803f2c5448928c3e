package value

// Equals is the deep structural equality used by ==, switch cases, and the
// standard library. Two nulls compare equal. Arrays are equal iff same
// length and positionwise equal; objects iff same key set and per-key equal
// (insertion order does not matter for equality). Lambdas are only equal to
// themselves.
func Equals(a, b Value) bool {
	switch av := a.(type) {
	case Null, nil:
		_, isNull := b.(Null)
		return isNull || b == nil
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equals(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, f := range av.Fields() {
			other, present := bv.Get(f.Key)
			if !present || !Equals(f.Value, other) {
				return false
			}
		}
		return true
	case *Lambda:
		return a == b
	}
	return false
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func Clone(v Value) Value {
	switch val := v.(type) {
	case *Array:
		items := make([]Value, len(val.Items))
		for i, item := range val.Items {
			items[i] = Clone(item)
		}
		return NewArray(items)
	case *Object:
		out := NewObject()
		for _, f := range val.Fields() {
			out.Set(f.Key, Clone(f.Value))
		}
		return out
	default:
		// Null, Bool, Number, String, and Lambda are immutable.
		return v
	}
}
