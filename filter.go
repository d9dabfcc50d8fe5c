package safejson

import (
	"encoding/json"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// ReplacerFunc transforms a member before it is encoded.
//
// It is called for every key/value pair of every object and array, and once for the
// root with key "" and a holder object containing just that pair. Array elements are
// passed with their decimal index as key. The holder is the container the member
// belongs to, so the same key can be treated differently depending on its parent.
//
// Returning Undefined drops the member from an object, or turns it into null
// inside an array. A returned error aborts encoding and is passed on unchanged.
type ReplacerFunc func(holder any, key string, value any) (any, error)

// KeyList restricts the members of every object to the listed names.
// Members are emitted in list order, names missing from an object are skipped.
// Arrays are not affected.
//
// A nil KeyList does not restrict anything, an empty non-nil KeyList
// restricts every object to {}.
type KeyList []string

// NewKeyList builds a KeyList from mixed entries. Strings are taken as they are,
// numbers are converted to their decimal form and everything else is ignored.
// Repeated names are kept only once. The result is never nil.
func NewKeyList(entries ...any) KeyList {
	keys := make(KeyList, 0, len(entries))
	for _, entry := range entries {
		key, ok := keyName(entry)
		if !ok || slices.Contains(keys, key) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func keyName(entry any) (string, bool) {
	switch typed := entry.(type) {
	case string:
		return typed, true
	case json.Number:
		return typed.String(), true
	case nil:
		return "", false
	}
	v := reflect.ValueOf(entry)
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return numberName(v.Float(), v.Type().Bits()), true
	default:
		return "", false
	}
}

// numberName is the property name a number stands for.
func numberName(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return string(appendFloat(nil, f, bits))
}

// filterOf interprets the loosely typed filter argument of Stringify.
// Unsupported kinds are ignored.
func filterOf(filter any) (ReplacerFunc, KeyList) {
	switch typed := filter.(type) {
	case ReplacerFunc:
		return typed, nil
	case func(holder any, key string, value any) (any, error):
		return typed, nil
	case KeyList:
		if typed == nil {
			return nil, nil
		}
		return nil, NewKeyList(toAny(typed)...)
	case []string:
		if typed == nil {
			return nil, nil
		}
		return nil, NewKeyList(toAny(typed)...)
	case []any:
		if typed == nil {
			return nil, nil
		}
		return nil, NewKeyList(typed...)
	default:
		return nil, nil
	}
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
