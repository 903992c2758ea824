package runtime

import (
	"fmt"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/schema"
)

// ResolveParameters walks a raw parameter tree and evaluates every eligible
// producer exactly once, returning a fresh tree. Eligibility is driven by
// the plugin's schema: a key declared function-typed keeps its value
// verbatim (producer or not) so the plugin can invoke it later. A producer's
// return value is taken as-is; there is no chained re-resolution, matching
// the rule that dynamic parameters are evaluated once at trial start.
//
// Resolution must not depend on sibling order: producers see no partial
// results, only whatever ambient state their closures captured.
func ResolveParameters(params map[string]any, sch schema.Schema) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}

	out := make(map[string]any, len(params))
	for key, value := range params {
		if sch.ExpectsFunction(key) {
			// Pass through exactly, unresolved.
			out[key] = value
			continue
		}
		resolved, err := resolveNode(value, sch[key], key)
		if err != nil {
			return nil, err
		}
		out[key] = resolved
	}
	return out, nil
}

// resolveNode applies the eligibility rule to one node. declared is the
// schema type for this position (nil when the schema says nothing, which
// means "resolve normally").
func resolveNode(value any, declared schema.Type, keyPath string) (any, error) {
	if schema.IsFunction(declared) {
		return value, nil
	}

	if producer, ok := domain.AsProducer(value); ok {
		return invokeProducer(producer, keyPath)
	}

	switch node := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for key, v := range node {
			resolved, err := resolveNode(v, schema.FieldType(declared, key), keyPath+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil

	case []any:
		elem := schema.ElemType(declared)
		out := make([]any, len(node))
		for i, v := range node {
			resolved, err := resolveNode(v, elem, fmt.Sprintf("%s[%d]", keyPath, i))
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	default:
		// Literal (including typed slices, which cannot hold producers).
		return value, nil
	}
}

// invokeProducer evaluates a producer once, converting both returned errors
// and panics into a ParameterResolutionError carrying the key path.
func invokeProducer(producer domain.Producer, keyPath string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.ParameterResolutionError{
				KeyPath: keyPath,
				Cause:   fmt.Errorf("producer panicked: %v", r),
			}
		}
	}()

	result, perr := producer()
	if perr != nil {
		return nil, &domain.ParameterResolutionError{KeyPath: keyPath, Cause: perr}
	}
	return result, nil
}
