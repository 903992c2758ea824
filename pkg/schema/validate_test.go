package schema

import (
	"errors"
	"testing"

	"github.com/florandr/trialflow/pkg/domain"
)

func TestValidate_Success(t *testing.T) {
	sch := Schema{
		"stimulus":            String(),
		"trial_duration":      Int(),
		"stimulus_opacity":    Float(),
		"response_ends_trial": Bool(),
		"choices":             Slice(String()),
	}

	params := map[string]any{
		"stimulus":            "<<<<<",
		"trial_duration":      1000,
		"stimulus_opacity":    0.8,
		"response_ends_trial": true,
		"choices":             []string{"f", "j"},
	}

	if err := Validate(sch, params); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingRequiredField(t *testing.T) {
	sch := Schema{
		"stimulus": String(),
		"choices":  Slice(String()),
	}

	params := map[string]any{
		"stimulus": "<<<<<",
		// missing choices
	}

	err := Validate(sch, params)
	if err == nil {
		t.Fatal("Validate() should return error for missing field")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}

	if len(aggr.Errors) != 1 {
		t.Errorf("Validate() = %d errors, want 1", len(aggr.Errors))
	}

	validErr, ok := aggr.Errors[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", aggr.Errors[0])
	}

	if validErr.Key != "choices" {
		t.Errorf("error Key = %q, want choices", validErr.Key)
	}
}

func TestValidate_OptionalFieldMayBeAbsent(t *testing.T) {
	sch := Schema{
		"stimulus": String(),
		"prompt":   Optional(String()),
	}

	params := map[string]any{
		"stimulus": "+",
	}

	if err := Validate(sch, params); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_OptionalFieldStillTypeChecked(t *testing.T) {
	sch := Schema{
		"prompt": Optional(String()),
	}

	params := map[string]any{
		"prompt": 42,
	}

	if err := Validate(sch, params); err == nil {
		t.Fatal("Validate() should reject a present optional field of the wrong type")
	}
}

func TestValidate_ProducerAtValueKeySkipped(t *testing.T) {
	// A producer at a non-function key has an unknown shape until trial
	// start, so validation must not reject it.
	sch := Schema{
		"stimulus": String(),
	}

	params := map[string]any{
		"stimulus": domain.Producer(func() (any, error) { return "<<<<<", nil }),
	}

	if err := Validate(sch, params); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_FunctionFieldRequiresProducer(t *testing.T) {
	sch := Schema{
		"func": Function(),
	}

	err := Validate(sch, map[string]any{"func": "not a function"})
	if err == nil {
		t.Fatal("Validate() should reject a non-producer at a function-typed key")
	}

	ok := Validate(sch, map[string]any{
		"func": func() (any, error) { return 1, nil },
	})
	if ok != nil {
		t.Errorf("Validate() error = %v, want nil for a bare func literal", ok)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	sch := Schema{
		"stimulus":       String(),
		"trial_duration": Int(),
		"choices":        Slice(String()),
	}

	params := map[string]any{
		// missing stimulus
		"trial_duration": "not an int",
		"choices":        "not a slice",
	}

	err := Validate(sch, params)
	if err == nil {
		t.Fatal("Validate() should return error")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}

	if len(aggr.Errors) != 3 {
		t.Errorf("Validate() = %d errors, want 3", len(aggr.Errors))
	}
}

func TestValidationErrors(t *testing.T) {
	sch := Schema{
		"stimulus": String(),
		"choices":  Slice(String()),
	}

	failures := ValidationErrors(Validate(sch, map[string]any{}))
	if len(failures) != 2 {
		t.Errorf("ValidationErrors() = %d failures, want 2", len(failures))
	}

	if got := ValidationErrors(nil); got != nil {
		t.Errorf("ValidationErrors(nil) = %v, want nil", got)
	}
	if got := ValidationErrors(errors.New("boom")); got != nil {
		t.Errorf("ValidationErrors(plain error) = %v, want nil", got)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(Schema{}, map[string]any{"stimulus": "x"}); err != nil {
		t.Errorf("Validate() with empty schema should return nil, got %v", err)
	}

	var nilSchema Schema
	if err := Validate(nilSchema, map[string]any{"stimulus": "x"}); err != nil {
		t.Errorf("Validate() with nil schema should return nil, got %v", err)
	}
}

func TestValidate_ObjectType(t *testing.T) {
	sch := Schema{
		"questions": Slice(Object(map[string]Type{
			"prompt":   String(),
			"required": Optional(Bool()),
		})),
	}

	good := map[string]any{
		"questions": []any{
			map[string]any{"prompt": "How difficult was this?"},
			map[string]any{"prompt": "Any comments?", "required": false},
		},
	}
	if err := Validate(sch, good); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	bad := map[string]any{
		"questions": []any{
			map[string]any{"required": true}, // missing prompt
		},
	}
	if err := Validate(sch, bad); err == nil {
		t.Error("Validate() should reject an object missing a required field")
	}
}

func TestSchema_ExpectsFunction(t *testing.T) {
	sch := Schema{
		"func":     Function(),
		"deferred": Optional(Function()),
		"stimulus": String(),
	}

	if !sch.ExpectsFunction("func") {
		t.Error("ExpectsFunction(func) = false, want true")
	}
	if !sch.ExpectsFunction("deferred") {
		t.Error("ExpectsFunction(deferred) = false, want true (optional wrapper)")
	}
	if sch.ExpectsFunction("stimulus") {
		t.Error("ExpectsFunction(stimulus) = true, want false")
	}
	if sch.ExpectsFunction("unknown") {
		t.Error("ExpectsFunction(unknown) = true, want false")
	}
}
