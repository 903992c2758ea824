package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/florandr/trialflow/pkg/domain"
)

// Type defines the contract for parameter validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Elem returns the element type, for resolver recursion.
func (t *SliceType) Elem() Type { return t.elemType }

// ObjectType validates nested objects with per-field types.
type ObjectType struct {
	fields map[string]Type
}

func (t *ObjectType) Name() string {
	names := make([]string, 0, len(t.fields))
	for key, ft := range t.fields {
		names = append(names, key+":"+ft.Name())
	}
	return "{" + strings.Join(names, ",") + "}"
}

func (t *ObjectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	for key, ft := range t.fields {
		v, exists := m[key]
		if !exists {
			if IsOptional(ft) {
				continue
			}
			return fmt.Errorf("field %s: required", key)
		}
		if err := ft.Validate(v); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

// Field returns the declared type of a nested field, or nil.
func (t *ObjectType) Field(name string) Type { return t.fields[name] }

// FunctionType marks a parameter the plugin expects to receive unresolved.
// The resolver never invokes a producer found at a function-typed key; the
// plugin calls it itself at a time of its own choosing.
type FunctionType struct{}

func (t *FunctionType) Name() string { return "function" }

func (t *FunctionType) Validate(value any) error {
	if _, ok := domain.AsProducer(value); !ok {
		return fmt.Errorf("expected function, got %T", value)
	}
	return nil
}

// OptionalType wraps another type to mark the parameter as omittable.
// Validate still applies when a value is present.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	return t.inner.Validate(value)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Object creates a nested object validator with per-field types.
func Object(fields map[string]Type) Type {
	return &ObjectType{fields: fields}
}

// Function creates the function type tag (expects an unresolved producer).
func Function() Type { return &FunctionType{} }

// Optional wraps a type to mark the parameter as omittable.
func Optional(inner Type) Type {
	return &OptionalType{inner: inner}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// --- Structural helpers (used by the resolver) ---

// Unwrap strips Optional wrappers.
func Unwrap(t Type) Type {
	for {
		opt, ok := t.(*OptionalType)
		if !ok {
			return t
		}
		t = opt.inner
	}
}

// IsOptional reports whether t is wrapped in Optional.
func IsOptional(t Type) bool {
	_, ok := t.(*OptionalType)
	return ok
}

// IsFunction reports whether t is the function type, ignoring Optional.
func IsFunction(t Type) bool {
	if t == nil {
		return false
	}
	_, ok := Unwrap(t).(*FunctionType)
	return ok
}

// FieldType returns the declared type for a nested object field, or nil if
// t is not an object type (or does not declare the field).
func FieldType(t Type, name string) Type {
	if t == nil {
		return nil
	}
	if obj, ok := Unwrap(t).(*ObjectType); ok {
		return obj.Field(name)
	}
	return nil
}

// ElemType returns the declared element type for a slice, or nil.
func ElemType(t Type) Type {
	if t == nil {
		return nil
	}
	if sl, ok := Unwrap(t).(*SliceType); ok {
		return sl.Elem()
	}
	return nil
}

// ParseType converts a string type name to a Type.
// Supports basic types ("string", "int", "float", "bool", "function"),
// slices ("[string]"), and an optional suffix ("int?").
func ParseType(typeStr string) (Type, error) {
	// Optional suffix: string?, [int]?, function?
	if strings.HasSuffix(typeStr, "?") {
		inner, err := ParseType(strings.TrimSuffix(typeStr, "?"))
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	}

	// Handle slice types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemTypeStr := typeStr[1 : len(typeStr)-1]
		elemType, err := ParseType(elemTypeStr)
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	// Handle built-in types
	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "function":
		return Function(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
// Example: {"stimulus": "string", "trial_duration": "int?"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
