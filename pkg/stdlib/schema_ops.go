package stdlib

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

func registerSchemaOps(r *functions.Registry) {
	// ValidateSchema is the lightweight structural check: every name in
	// required must be present on the object.
	register(r, sig("ValidateSchema", functions.ParamObject, req("value", functions.ParamObject), req("required", functions.ParamArray)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			obj := objectArg(args, 0)
			required := arrayArg(args, 1)
			var missing []value.Value
			for _, item := range required.Items {
				name, ok := item.(value.String)
				if !ok {
					return nil, fmt.Errorf("required field names must be strings but got %s", value.TypeName(item))
				}
				if !obj.Has(name.Value) {
					missing = append(missing, name)
				}
			}
			result := value.NewObject()
			result.Set("valid", value.NewBool(len(missing) == 0))
			result.Set("missing", value.NewArray(missing))
			return result, nil
		})

	// ValidateJsonSchema runs a full JSON-Schema document against the value.
	register(r, sig("ValidateJsonSchema", functions.ParamObject, req("value", functions.ParamAny), req("schema", functions.ParamObject)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			schemaJSON, err := value.ToJSON(args[1])
			if err != nil {
				return nil, fmt.Errorf("schema is not JSON-representable: %v", err)
			}

			compiler := jsonschema.NewCompiler()
			if err := compiler.AddResource("schema.json", strings.NewReader(string(schemaJSON))); err != nil {
				return nil, fmt.Errorf("cannot load schema: %v", err)
			}
			schema, err := compiler.Compile("schema.json")
			if err != nil {
				return nil, fmt.Errorf("cannot compile schema: %v", err)
			}

			validationErr := schema.Validate(value.ToGo(args[0]))
			result := value.NewObject()
			result.Set("valid", value.NewBool(validationErr == nil))
			var errItems []value.Value
			if ve, ok := validationErr.(*jsonschema.ValidationError); ok {
				for _, cause := range flattenCauses(ve) {
					entry := value.NewObject()
					entry.Set("path", value.NewString(cause.InstanceLocation))
					entry.Set("message", value.NewString(cause.Message))
					errItems = append(errItems, entry)
				}
			} else if validationErr != nil {
				entry := value.NewObject()
				entry.Set("path", value.NewString(""))
				entry.Set("message", value.NewString(validationErr.Error()))
				errItems = append(errItems, entry)
			}
			result.Set("errors", value.NewArray(errItems))
			return result, nil
		})
}

// flattenCauses walks the validation error tree to its leaves.
func flattenCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		leaves = append(leaves, flattenCauses(cause)...)
	}
	return leaves
}
