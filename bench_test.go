package safejson_test

import (
	"encoding/json"
	"strconv"
	"testing"

	"ocm.software/open-component-model/bindings/go/safejson"
)

func flatFixture() *safejson.Object {
	o := safejson.NewObject()
	for i := range 100 {
		o.Set("key"+strconv.Itoa(i), "value"+strconv.Itoa(i))
	}
	return o
}

func shallowFixture() *safejson.Object {
	o := safejson.NewObject()
	for i := range 20 {
		o.Set("list"+strconv.Itoa(i), []any{1, 2.5, "three", true, nil, safejson.ObjectOf("x", i)})
	}
	return o
}

func deepFixture() *safejson.Object {
	root := safejson.ObjectOf("level", 0)
	current := root
	for i := 1; i < 100; i++ {
		next := safejson.ObjectOf("level", i, "values", []any{i, strconv.Itoa(i)})
		current.Set("next", next)
		current = next
	}
	current.Set("root", root)
	return root
}

func plainFixture() map[string]any {
	m := map[string]any{}
	for i := range 100 {
		m["key"+strconv.Itoa(i)] = []any{i, "value" + strconv.Itoa(i), map[string]any{"nested": true}}
	}
	return m
}

func BenchmarkStringify(b *testing.B) {
	fixtures := []struct {
		name  string
		value any
	}{
		{name: "flat", value: flatFixture()},
		{name: "shallow", value: shallowFixture()},
		{name: "deep circular", value: deepFixture()},
	}
	replacer := safejson.ReplacerFunc(func(_ any, _ string, value any) (any, error) { return value, nil })
	keys := []string{"key1", "key50", "list3", "x", "level", "next", "values", "root"}

	conventions := []struct {
		name   string
		filter any
		indent any
	}{
		{name: "value"},
		{name: "replacer", filter: replacer},
		{name: "keys", filter: keys},
		{name: "replacer+indent", filter: replacer, indent: 2},
		{name: "keys+indent", filter: keys, indent: 2},
		{name: "indent", indent: 2},
	}

	for _, f := range fixtures {
		for _, c := range conventions {
			b.Run(f.name+"/"+c.name, func(b *testing.B) {
				for b.Loop() {
					if _, err := safejson.Stringify(f.value, c.filter, c.indent); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
		b.Run(f.name+"/stable", func(b *testing.B) {
			for b.Loop() {
				if _, err := safejson.StableStringify(f.value, nil, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkMarshalComparedToEncodingJSON(b *testing.B) {
	value := plainFixture()

	b.Run("safejson", func(b *testing.B) {
		for b.Loop() {
			if _, err := safejson.Marshal(value); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("encoding/json", func(b *testing.B) {
		for b.Loop() {
			if _, err := json.Marshal(value); err != nil {
				b.Fatal(err)
			}
		}
	})
}
