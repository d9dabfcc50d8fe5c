package safejson

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that keeps its members in insertion order.
// Objects have reference identity: the same *Object reachable from itself is a cycle.
//
// The zero value is not usable, create objects with NewObject or ObjectOf.
type Object struct {
	*orderedmap.OrderedMap[string, any]
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{OrderedMap: orderedmap.New[string, any]()}
}

// ObjectOf builds an Object from alternating keys and values.
// It panics if a key is not a string or a value is missing.
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("ObjectOf: odd number of arguments (%d)", len(kv)))
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("ObjectOf: key at position %d is %T, not string", i, kv[i]))
		}
		o.Set(key, kv[i+1])
	}
	return o
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	for pair := o.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON encodes the object with cycle protection.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

// UnmarshalJSON replaces the members of o with the members of the JSON object in data.
// Nested objects are decoded as *Object as well, so the member order of the whole
// document is kept.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("%w: cannot unmarshal %T into object", ErrInvalidJSON, v)
	}
	o.OrderedMap = decoded.OrderedMap
	return nil
}
