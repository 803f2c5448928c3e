package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ToJSON marshals a value to JSON bytes. Objects preserve key order and
// integral numbers are written without a decimal point. NaN and infinities
// are not representable and return an error.
func ToJSON(v Value) ([]byte, error) {
	raw, err := valueToRaw(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func valueToRaw(v Value) (any, error) {
	switch val := v.(type) {
	case Null, nil:
		return nil, nil

	case Bool:
		return val.Value, nil

	case Number:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			return nil, fmt.Errorf("number %v is not representable in JSON", val.Value)
		}
		// Output integers without a decimal point.
		if val.Value == math.Trunc(val.Value) && val.Value >= math.MinInt64 && val.Value <= math.MaxInt64 {
			return int64(val.Value), nil
		}
		return val.Value, nil

	case String:
		return val.Value, nil

	case *Array:
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			raw, err := valueToRaw(item)
			if err != nil {
				return nil, err
			}
			items[i] = raw
		}
		return items, nil

	case *Object:
		return &orderedObject{fields: val.Fields()}, nil
	}

	return nil, fmt.Errorf("%s is not representable in JSON", TypeName(v))
}

// orderedObject preserves key order in JSON output.
type orderedObject struct {
	fields []Field
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	if len(o.fields) == 0 {
		return []byte("{}"), nil
	}

	buf := []byte{'{'}
	for i, f := range o.fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')

		raw, err := valueToRaw(f.Value)
		if err != nil {
			return nil, err
		}
		valBytes, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// FromJSON parses JSON bytes into the value universe, preserving object key
// order. The stock decoder's map[string]any would lose it, so objects are
// rebuilt from the token stream.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	// Reject trailing content.
	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing JSON content")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return NewNumber(f), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return NewArray(items), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
