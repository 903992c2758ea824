package schema

import (
	"github.com/florandr/trialflow/pkg/domain"
)

// Schema is a map of parameter names to their expected types.
// Example: {"stimulus": String(), "choices": Optional(Slice(String()))}
type Schema map[string]Type

// ExpectsFunction reports whether the schema declares key as function-typed,
// i.e. a producer stored there must be passed through unresolved.
func (s Schema) ExpectsFunction(key string) bool {
	return IsFunction(s[key])
}

// Validate checks if params conform to the schema.
// Optional fields may be absent; present values are always type-checked.
// Keys not declared in the schema are left alone (plugins tolerate extras).
// Returns an error aggregating all failures found.
func Validate(schema Schema, params map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error

	for fieldName, fieldType := range schema {
		value, exists := params[fieldName]
		if !exists {
			if IsOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		// Function-typed fields validate the raw value (must be a producer);
		// everything else validates the literal. A producer at a non-function
		// key is fine here: it hasn't been resolved yet, so its shape is
		// unknown until trial start.
		if !IsFunction(fieldType) {
			if _, deferred := domain.AsProducer(value); deferred {
				continue
			}
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}
