package value

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromGo converts a host-native Go value into the value universe. Maps
// become objects (map[string]any iterates in unspecified order, so keys are
// sorted for a deterministic result), slices become arrays, and primitives
// map straightforwardly.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return NewNull(), nil
	case Value:
		return val, nil
	case bool:
		return NewBool(val), nil
	case int:
		return NewNumber(float64(val)), nil
	case int32:
		return NewNumber(float64(val)), nil
	case int64:
		return NewNumber(float64(val)), nil
	case uint:
		return NewNumber(float64(val)), nil
	case uint64:
		return NewNumber(float64(val)), nil
	case float32:
		return NewNumber(float64(val)), nil
	case float64:
		return NewNumber(val), nil
	case string:
		return NewString(val), nil

	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			converted, err := FromGo(item)
			if err != nil {
				return nil, err
			}
			items[i] = converted
		}
		return NewArray(items), nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			converted, err := FromGo(val[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, converted)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("cannot convert %T into a script value", v)
}

// ToGo converts a value back into plain Go data: objects become
// map[string]any, arrays []any, numbers float64.
func ToGo(v Value) any {
	switch val := v.(type) {
	case Null, nil:
		return nil
	case Bool:
		return val.Value
	case Number:
		return val.Value
	case String:
		return val.Value
	case *Array:
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			items[i] = ToGo(item)
		}
		return items
	case *Object:
		out := make(map[string]any, val.Len())
		for _, f := range val.Fields() {
			out[f.Key] = ToGo(f.Value)
		}
		return out
	}
	return nil
}

// FromYAML parses a YAML document into the value universe. Decoding goes
// through yaml.Node so mapping key order survives.
func FromYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewNull(), nil
	}
	return yamlNodeToValue(doc.Content[0])
}

func yamlNodeToValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return NewNull(), nil
		case "!!bool":
			b, err := strconv.ParseBool(node.Value)
			if err != nil {
				return nil, err
			}
			return NewBool(b), nil
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return nil, err
			}
			return NewNumber(f), nil
		default:
			return NewString(node.Value), nil
		}

	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			converted, err := yamlNodeToValue(child)
			if err != nil {
				return nil, err
			}
			items[i] = converted
		}
		return NewArray(items), nil

	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			val, err := yamlNodeToValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, val)
		}
		return obj, nil

	case yaml.AliasNode:
		return yamlNodeToValue(node.Alias)
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
}
