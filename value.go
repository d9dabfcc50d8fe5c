package safejson

import (
	"errors"
)

// CircularMarker replaces every reference to a value that is already being encoded
// further up the current path.
const CircularMarker = "[Circular]"

var (
	// ErrInvalidNumber is returned when a json.Number does not hold a valid JSON number literal.
	ErrInvalidNumber = errors.New("invalid number literal")
	// ErrInvalidJSON is returned when raw JSON input cannot be parsed.
	ErrInvalidJSON = errors.New("invalid json")
)

// Marshaler is implemented by values that provide their own serializable form.
//
// ToJSON is called with the key under which the value is found (the decimal index
// for array elements, "" for the root). The returned value is encoded in place of
// the receiver; it is not asked for its own ToJSON again, but all of its members are.
// Errors are returned to the caller of the encoder unchanged.
type Marshaler interface {
	ToJSON(key string) (any, error)
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is a value without a JSON representation.
// It is omitted from objects and encoded as null inside arrays.
// A Replacer returns it to drop a member.
var Undefined any = undefined{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}
