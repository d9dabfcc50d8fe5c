package safejson_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"ocm.software/open-component-model/bindings/go/safejson"
)

type node struct {
	Name     string  `json:"name"`
	Parent   *node   `json:"parent,omitempty"`
	Children []*node `json:"children,omitempty"`
}

type selfReference struct {
	name string
}

func (s *selfReference) ToJSON(string) (any, error) {
	return safejson.ObjectOf("name", s.name, "self", s), nil
}

func TestCircularReferences(t *testing.T) {
	tests := []struct {
		name     string
		build    func() any
		expected string
	}{
		{
			name: "object referencing itself",
			build: func() any {
				o := safejson.ObjectOf("a", 1)
				o.Set("self", o)
				return o
			},
			expected: `{"a":1,"self":"[Circular]"}`,
		},
		{
			name: "map referencing itself",
			build: func() any {
				m := map[string]any{"name": "x"}
				m["me"] = m
				return m
			},
			expected: `{"me":"[Circular]","name":"x"}`,
		},
		{
			name: "slice containing itself",
			build: func() any {
				s := make([]any, 2)
				s[0] = "x"
				s[1] = s
				return s
			},
			expected: `["x","[Circular]"]`,
		},
		{
			name: "indirect cycle",
			build: func() any {
				a := safejson.NewObject()
				b := safejson.ObjectOf("a", a)
				a.Set("b", b)
				return a
			},
			expected: `{"b":{"a":"[Circular]"}}`,
		},
		{
			name: "cycle through an array",
			build: func() any {
				o := safejson.NewObject()
				o.Set("list", []any{1, o})
				return o
			},
			expected: `{"list":[1,"[Circular]"]}`,
		},
		{
			name: "struct pointers",
			build: func() any {
				root := &node{Name: "root"}
				root.Children = []*node{{Name: "child", Parent: root}}
				return root
			},
			expected: `{"name":"root","children":[{"name":"child","parent":"[Circular]"}]}`,
		},
		{
			name: "shared value in a diamond is not circular",
			build: func() any {
				shared := safejson.ObjectOf("v", 1)
				return safejson.ObjectOf(
					"left", safejson.ObjectOf("leaf", shared),
					"right", safejson.ObjectOf("leaf", shared),
				)
			},
			expected: `{"left":{"leaf":{"v":1}},"right":{"leaf":{"v":1}}}`,
		},
		{
			name: "marshaler returning a reference to itself",
			build: func() any {
				return &selfReference{name: "n"}
			},
			expected: `{"name":"n","self":"[Circular]"}`,
		},
		{
			name: "marshaler returning an ancestor",
			build: func() any {
				parent := safejson.NewObject()
				parent.Set("child", toJSONFunc(func(string) (any, error) {
					return parent, nil
				}))
				return parent
			},
			expected: `{"child":"[Circular]"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := tt.build()
			first, err := safejson.Stringify(value, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, first)

			second, err := safejson.Stringify(value, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, first, second, "encoding must not depend on earlier calls")
		})
	}
}

func TestReplacerIntroducingCycle(t *testing.T) {
	root := safejson.ObjectOf("nested", safejson.ObjectOf("x", 1))
	actual, err := safejson.Stringify(root, func(_ any, key string, value any) (any, error) {
		if key == "x" {
			return root, nil
		}
		return value, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"nested":{"x":"[Circular]"}}`, actual)
}

func TestCircularWithIndentation(t *testing.T) {
	o := safejson.ObjectOf("a", 1)
	o.Set("self", o)

	actual, err := safejson.Stringify(o, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"self\": \"[Circular]\"\n}", actual)
}

func TestCircularDoesNotMutate(t *testing.T) {
	o := safejson.ObjectOf("a", 1)
	o.Set("self", o)
	m := map[string]any{}
	m["self"] = m

	_, err := safejson.Stringify([]any{o, m}, nil, nil)
	require.NoError(t, err)

	self, _ := o.Get("self")
	assert.Same(t, o, self)
	assert.Equal(t, []string{"a", "self"}, o.Keys())
	require.Len(t, m, 1)
	inner, ok := m["self"].(map[string]any)
	require.True(t, ok)
	inner["probe"] = true
	assert.Equal(t, true, m["probe"], "the map must still reference itself")
}

func TestLongCycle(t *testing.T) {
	const length = 1000
	first := safejson.NewObject()
	current := first
	for range length - 1 {
		next := safejson.NewObject()
		current.Set("next", next)
		current = next
	}
	current.Set("next", first)

	actual, err := safejson.Stringify(first, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(`{"next":`, length)+`"[Circular]"`+strings.Repeat("}", length), actual)
}

func TestDeepAcyclicNesting(t *testing.T) {
	const depth = 10000
	var value any = "leaf"
	for range depth {
		value = []any{value}
	}

	actual, err := safejson.Stringify(value, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("[", depth)+`"leaf"`+strings.Repeat("]", depth), actual)
}

func TestCircularLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	o := safejson.ObjectOf("a", 1)
	o.Set("self", o)

	data, err := safejson.New(safejson.Options{Logger: logger}).Encode(o)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"self":"[Circular]"}`, string(data))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "replaced circular reference", record["msg"])
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "self", record["key"])
	assert.InDelta(t, 1, record["depth"], 0)
}

var errBoom = errors.New("boom")

func TestErrorsArePropagated(t *testing.T) {
	t.Run("from a marshaler", func(t *testing.T) {
		value := safejson.ObjectOf("a", toJSONFunc(func(string) (any, error) {
			return nil, errBoom
		}))
		_, err := safejson.Stringify(value, nil, nil)
		assert.Same(t, errBoom, err)
	})

	t.Run("from a replacer", func(t *testing.T) {
		o := safejson.ObjectOf("a", 1)
		o.Set("self", o)
		replacer := func(_ any, key string, value any) (any, error) {
			if key == "a" {
				return nil, errBoom
			}
			return value, nil
		}
		_, err := safejson.Stringify(o, replacer, nil)
		assert.Same(t, errBoom, err)

		// no state is left behind by the failed call
		actual, err := safejson.Stringify(o, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1,"self":"[Circular]"}`, actual)
	})
}

func TestConcurrentEncoding(t *testing.T) {
	shared := safejson.ObjectOf("name", "shared")
	shared.Set("self", shared)
	enc := safejson.New(safejson.Options{Indent: "  "})
	expected, err := enc.Encode(shared)
	require.NoError(t, err)

	var eg errgroup.Group
	results := make([][]byte, 16)
	for i := range results {
		eg.Go(func() error {
			data, err := enc.Encode(shared)
			results[i] = data
			return err
		})
	}
	require.NoError(t, eg.Wait())
	for _, data := range results {
		assert.Equal(t, string(expected), string(data))
	}
}
