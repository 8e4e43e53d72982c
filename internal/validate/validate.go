package validate

import (
	"context"
	"strconv"
	"strings"

	"github.com/fintechrail/paygate/internal/gatewayerr"
	"github.com/fintechrail/paygate/internal/uetr"
)

// Validator satisfies flow.Validator.
type Validator struct{}

// New returns a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate implements flow.Validator. A Required field missing from
// msg is a fatal ValidationFailed; any other missing field is
// returned as a warning and msg still passes.
func (v *Validator) Validate(ctx context.Context, messageType string, msg uetr.Message) ([]string, error) {
	schema, ok := schemas[strings.ToLower(messageType)]
	if !ok {
		return nil, gatewayerr.New(gatewayerr.ValidationFailed, "", "no structural schema registered for message type "+messageType)
	}

	var warnings []string
	tree := map[string]any(msg)
	for _, f := range schema.Fields {
		if _, found := get(tree, f.Path); found {
			continue
		}
		if f.Required {
			return warnings, gatewayerr.New(gatewayerr.ValidationFailed, "", "missing required field").WithFieldPath(pathString(f.Path))
		}
		warnings = append(warnings, pathString(f.Path))
	}

	if sp := schema.SelfTransferPaths; sp != nil {
		from, fromOK := get(tree, sp.From)
		to, toOK := get(tree, sp.To)
		if fromOK && toOK && from == to {
			return warnings, gatewayerr.New(gatewayerr.ValidationFailed, "", "debtor and creditor account are the same account").WithFieldPath(pathString(sp.To))
		}
	}

	return warnings, nil
}

// get walks tree along path the same way internal/transform's own
// walker does: nested maps, with a "0" segment against a map treated
// as a singleton collapse rather than a lookup failure.
func get(tree map[string]any, path []string) (any, bool) {
	var cur any = tree
	for _, segment := range path {
		switch v := cur.(type) {
		case map[string]any:
			if idx, err := strconv.Atoi(segment); err == nil {
				if idx != 0 {
					return nil, false
				}
				continue
			}
			next, ok := v[segment]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func pathString(path []string) string {
	return strings.Join(path, ".")
}
