// Package redact hides object members by name before a document is printed.
package redact

import (
	"fmt"
	"reflect"

	"github.com/gobwas/glob"

	"ocm.software/open-component-model/bindings/go/safejson"
)

// Placeholder replaces the value of every redacted member.
const Placeholder = "[Redacted]"

// Replacer returns a replacer that substitutes Placeholder for the value of every
// object member whose name matches one of the glob patterns. Array elements are
// never redacted.
func Replacer(patterns []string) (safejson.ReplacerFunc, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	return func(holder any, key string, value any) (any, error) {
		if key == "" || isArray(holder) {
			return value, nil
		}
		for _, g := range globs {
			if g.Match(key) {
				return Placeholder, nil
			}
		}
		return value, nil
	}, nil
}

func isArray(holder any) bool {
	switch reflect.ValueOf(holder).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
