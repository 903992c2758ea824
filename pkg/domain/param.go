package domain

// Producer is a parameter value expressed as a deferred computation.
// The resolver (or a plugin, for function-typed parameters) invokes it with
// no arguments exactly once; the returned value is used verbatim.
type Producer func() (any, error)

// AsProducer reports whether v is a deferred parameter and normalizes it.
// Both the named Producer type and a bare func literal with the same shape
// are accepted, so callers can write inline closures in parameter maps
// without casting.
func AsProducer(v any) (Producer, bool) {
	switch fn := v.(type) {
	case Producer:
		return fn, true
	case func() (any, error):
		return fn, true
	case func() any:
		// Convenience shape for producers that cannot fail.
		return func() (any, error) { return fn(), nil }, true
	default:
		return nil, false
	}
}

// CloneParams returns a shallow-per-level copy of a parameter tree.
// Maps and slices are copied recursively so mutations on the resolved trial
// never leak back into the authored spec; leaf values (including producers)
// are shared.
func CloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneParams(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
