// Package schema defines the parameter type system plugins declare their
// trial parameters with.
//
// It provides built-in types (string, int, float, bool), composites (slices
// and objects), and two modifiers that drive the resolver: Function marks a
// parameter the plugin wants to receive unresolved (the resolver passes a
// producer through verbatim instead of invoking it), and Optional marks a
// parameter the trial may omit.
//
// Basic usage:
//
//	sch := schema.Schema{
//	    "stimulus": schema.String(),
//	    "choices":  schema.Optional(schema.Slice(schema.String())),
//	    "func":     schema.Function(),
//	}
//
//	if err := schema.Validate(sch, params); err != nil {
//	    // Handle validation errors
//	}
//
// Schemas can also be parsed from type strings ("string", "[int]",
// "function", "string?"), which is how the validate command reads plugin
// declarations serialized over the wire.
//
// This package has zero dependencies beyond the standard library and the
// domain package, so it can be embedded anywhere the engine core goes.
package schema
