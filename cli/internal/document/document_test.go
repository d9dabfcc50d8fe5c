package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm.software/open-component-model/bindings/go/safejson"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected string
	}{
		{name: "object", data: `{"a": [1, 2]}`, expected: FormatJSON},
		{name: "array", data: `[{"a": 1}]`, expected: FormatJSON},
		{name: "yaml mapping", data: "a: 1\nb:\n  - x\n", expected: FormatYAML},
		{name: "yaml flow that is not json", data: "{a: 1}", expected: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectFormat([]byte(tt.data)))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		format   string
		expected string
	}{
		{name: "json keeps order", data: `{"b":1,"a":2}`, format: FormatJSON, expected: `{"b":1,"a":2}`},
		{name: "yaml is sorted", data: "b: 1\na: 2\n", format: FormatYAML, expected: `{"a":2,"b":1}`},
		{name: "auto json", data: `{"b":1,"a":2}`, format: FormatAuto, expected: `{"b":1,"a":2}`},
		{name: "auto yaml", data: "b: [x, z]\n", format: FormatAuto, expected: `{"b":["x","z"]}`},
		{name: "yaml 1.1 booleans", data: "b: [y, n, \"y\"]\n", format: FormatYAML, expected: `{"b":[true,false,"y"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)
			actual, err := safejson.Marshal(value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(actual))
		})
	}

	_, err := Decode([]byte(`{}`), "toml")
	assert.ErrorContains(t, err, "unsupported input format")

	_, err = Decode([]byte(`{"a":`), FormatJSON)
	assert.ErrorIs(t, err, safejson.ErrInvalidJSON)
	assert.ErrorContains(t, err, "could not decode document")
}

func TestDecodeChecks(t *testing.T) {
	var seen []string
	record := func(raw []byte) error {
		seen = append(seen, string(raw))
		return nil
	}
	value, err := Decode([]byte("a: 1
"), FormatYAML, record, record)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"a":1}`}, seen)
	actual, err := safejson.Marshal(value)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(actual))

	rejected := errors.New("rejected")
	calls := 0
	_, err = Decode([]byte(`{"a":1}`), FormatJSON,
		func([]byte) error { return rejected },
		func([]byte) error { calls++; return nil },
	)
	assert.ErrorIs(t, err, rejected)
	assert.Zero(t, calls)
}

func TestValidate(t *testing.T) {
	schema, err := CompileSchema("schema.json", []byte(`{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0}
  }
}`))
	require.NoError(t, err)

	assert.NoError(t, Validate(schema, []byte(`{"name":"Daenerys","age":17}`)))
	assert.Error(t, Validate(schema, []byte(`{"age":17}`)))
	assert.Error(t, Validate(schema, []byte(`{"name":"Daenerys","age":-1}`)))
	assert.Error(t, Validate(schema, []byte(`{"name":`)))

	_, err = CompileSchema("broken.json", []byte(`{"type": 1}`))
	assert.Error(t, err)
}
