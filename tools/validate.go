package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentcore/reactor/agenterr"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// validateArgs validates args against schemaBytes (a JSON Schema document).
// An empty schema disables validation. Mirrors the registry's payload
// validation pattern: unmarshal both documents into `any`, compile the
// schema as an in-memory resource, then validate.
func validateArgs(schemaBytes []byte, args map[string]any) error {
	if len(schemaBytes) == 0 {
		return nil
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return agenterr.Wrap(agenterr.KindToolExecution, "tools: unmarshal input schema", err)
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return agenterr.Wrap(agenterr.KindToolExecution, "tools: marshal arguments", err)
	}
	var argsDoc any
	if err := json.Unmarshal(argsJSON, &argsDoc); err != nil {
		return agenterr.Wrap(agenterr.KindToolExecution, "tools: unmarshal arguments", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("input_schema.json", schemaDoc); err != nil {
		return agenterr.Wrap(agenterr.KindToolExecution, "tools: add schema resource", err)
	}
	schema, err := c.Compile("input_schema.json")
	if err != nil {
		return agenterr.Wrap(agenterr.KindToolExecution, "tools: compile input schema", err)
	}
	if err := schema.Validate(argsDoc); err != nil {
		if missingRequired(err) {
			return agenterr.New(agenterr.KindToolExecution, fmt.Sprintf("missing argument: %s", err))
		}
		return agenterr.Wrap(agenterr.KindToolExecution, "tools: arguments failed schema validation", err)
	}
	return nil
}

// missingRequired reports whether any node of a validation error tree is a
// missing-required-property failure, which gets the distinguished "missing
// argument" reason; every other schema violation (type, enum, format)
// surfaces its own cause.
func missingRequired(err error) bool {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return hasRequiredKind(ve)
}

func hasRequiredKind(ve *jsonschema.ValidationError) bool {
	if _, ok := ve.ErrorKind.(*kind.Required); ok {
		return true
	}
	for _, cause := range ve.Causes {
		if hasRequiredKind(cause) {
			return true
		}
	}
	return false
}
