// Package safejson implements a JSON stringifier that tolerates cyclic value graphs.
//
// The output of the package is identical to a standard JSON stringifier for every
// acyclic input: strings are escaped the same way, numbers use the shortest
// round-trip representation, and indentation follows the well-known
// "newline plus one unit per level" layout. The difference shows up when a value
// refers back to one of its ancestors. Instead of failing, the back-edge is
// replaced with the string CircularMarker ("[Circular]").
//
// Only references to values on the current path from the root are treated as
// cycles. A value that is shared between two sibling branches is rendered in
// full in both places:
//
//	daenerys := safejson.ObjectOf("name", "Daenerys Targaryen")
//	out, _ := safejson.Stringify(safejson.ObjectOf(
//	    "motherOfDragons", daenerys,
//	    "queenOfMeereen", daenerys,
//	), nil, nil)
//	// {"motherOfDragons":{"name":"Daenerys Targaryen"},"queenOfMeereen":{"name":"Daenerys Targaryen"}}
//
// # Values
//
// The encoder accepts the usual Go representations of JSON data:
//   - nil, bool, strings, all integer and float kinds and json.Number
//   - *Object for objects that keep their insertion order
//   - maps with string, integer or encoding.TextMarshaler keys (emitted with sorted keys)
//   - slices and arrays
//   - structs, honouring the `json:"name,omitempty"` and `json:"-"` field tags
//
// Values without a JSON representation (Undefined, functions, channels, complex
// numbers) are omitted from objects and rendered as null inside arrays.
//
// # Custom serialization
//
// A value implementing Marshaler is replaced by the result of its ToJSON method
// before anything else happens. The result is then walked like any other value,
// so it may contain further Marshalers and is itself protected against cycles.
// json.Marshaler and encoding.TextMarshaler are honoured as well.
//
// # Filtering
//
// Options.Replacer is called for every key/value pair, starting with the
// synthetic root pair ("", value). It receives the enclosing container as
// holder and may replace the value or drop it by returning Undefined.
// Options.Keys restricts every object to the listed member names.
//
// # Indentation
//
// Options.Indent is repeated once per nesting level. Indent strings are capped at
// ten characters and numeric indents at ten spaces, see Indent.
package safejson
