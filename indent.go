package safejson

import (
	"math"
	"reflect"
	"strings"
	"unicode/utf8"
)

// MaxIndent is the largest indentation unit, in spaces or characters.
const MaxIndent = 10

// Indent turns an indentation setting into the unit repeated once per nesting level.
//
// Integers (and floats, truncated) stand for that many spaces, capped at MaxIndent;
// zero and negative values disable indentation. Strings are used verbatim,
// cut after MaxIndent characters. Any other setting, including nil, disables indentation.
func Indent(v any) string {
	if s, ok := v.(string); ok {
		return capIndent(s)
	}
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return capIndent(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return spaces(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return spaces(int64(min(rv.Uint(), MaxIndent)))
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return ""
		}
		return spaces(int64(math.Max(-1, math.Min(math.Trunc(f), MaxIndent))))
	default:
		return ""
	}
}

func spaces(n int64) string {
	if n < 1 {
		return ""
	}
	return strings.Repeat(" ", int(min(n, MaxIndent)))
}

// capIndent cuts s after MaxIndent characters.
func capIndent(s string) string {
	if utf8.RuneCountInString(s) <= MaxIndent {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxIndent {
			return s[:i]
		}
		n++
	}
	return s
}
