package safejson

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

// field is an encodable struct field, possibly promoted from an embedded struct.
type field struct {
	name      string
	index     []int
	omitEmpty bool
	omitZero  bool
	quoted    bool
	tagged    bool
}

type structFields struct {
	list   []field
	byName map[string]int
}

var fieldCache sync.Map // map[reflect.Type]*structFields

func cachedFields(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}
	f, _ := fieldCache.LoadOrStore(t, typeFields(t))
	return f.(*structFields)
}

// typeFields lists the fields of t that are encoded, in declaration order.
//
// Fields of embedded structs without a json name are promoted. A name found at a
// shallower depth hides the same name further down. Among equally deep fields with
// the same name a single tagged one wins, otherwise none of them is encoded.
func typeFields(t reflect.Type) *structFields {
	type embedded struct {
		typ   reflect.Type
		index []int
	}

	var fields []field
	claimed := map[string]bool{}
	visited := map[reflect.Type]bool{}
	next := []embedded{{typ: t}}

	for len(next) > 0 {
		current := next
		next = nil
		byName := map[string][]field{}
		var order []string

		for _, e := range current {
			if visited[e.typ] {
				continue
			}
			visited[e.typ] = true

			for i := range e.typ.NumField() {
				sf := e.typ.Field(i)
				if sf.Anonymous {
					ft := sf.Type
					if ft.Kind() == reflect.Pointer {
						ft = ft.Elem()
					}
					if !sf.IsExported() && ft.Kind() != reflect.Struct {
						continue
					}
				} else if !sf.IsExported() {
					continue
				}

				tag := sf.Tag.Get("json")
				if tag == "-" {
					continue
				}
				name, opts, _ := strings.Cut(tag, ",")
				index := append(slices.Clone(e.index), i)

				ft := sf.Type
				if ft.Name() == "" && ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if name == "" && sf.Anonymous && ft.Kind() == reflect.Struct {
					next = append(next, embedded{typ: ft, index: index})
					continue
				}

				f := field{
					name:      name,
					index:     index,
					omitEmpty: hasOption(opts, "omitempty"),
					omitZero:  hasOption(opts, "omitzero"),
					tagged:    name != "",
				}
				if hasOption(opts, "string") {
					switch ft.Kind() {
					case reflect.Bool,
						reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
						reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
						reflect.Float32, reflect.Float64,
						reflect.String:
						f.quoted = true
					}
				}
				if f.name == "" {
					f.name = sf.Name
				}
				if _, seen := byName[f.name]; !seen {
					order = append(order, f.name)
				}
				byName[f.name] = append(byName[f.name], f)
			}
		}

		for _, name := range order {
			if claimed[name] {
				continue
			}
			claimed[name] = true
			if f, ok := dominantField(byName[name]); ok {
				fields = append(fields, f)
			}
		}
	}

	slices.SortFunc(fields, func(a, b field) int {
		return slices.Compare(a.index, b.index)
	})
	sf := &structFields{list: fields, byName: make(map[string]int, len(fields))}
	for i, f := range fields {
		sf.byName[f.name] = i
	}
	return sf
}

func dominantField(candidates []field) (field, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}
	var winner field
	tagged := 0
	for _, f := range candidates {
		if f.tagged {
			winner = f
			tagged++
		}
	}
	return winner, tagged == 1
}

func hasOption(opts, option string) bool {
	for opts != "" {
		var current string
		current, opts, _ = strings.Cut(opts, ",")
		if current == option {
			return true
		}
	}
	return false
}

// fieldByIndex returns the field at index, or false if an embedded pointer on the way is nil.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	default:
		return false
	}
}

type isZeroer interface {
	IsZero() bool
}

var isZeroerType = reflect.TypeFor[isZeroer]()

// isZeroValue decides omitzero. An IsZero method takes precedence over the zero value of the type.
func isZeroValue(v reflect.Value) bool {
	t := v.Type()
	switch {
	case (t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer) && t.Implements(isZeroerType):
		return v.IsNil() || v.Interface().(isZeroer).IsZero()
	case t.Implements(isZeroerType):
		return v.Interface().(isZeroer).IsZero()
	case reflect.PointerTo(t).Implements(isZeroerType):
		if !v.CanAddr() {
			boxed := reflect.New(t).Elem()
			boxed.Set(v)
			v = boxed
		}
		return v.Addr().Interface().(isZeroer).IsZero()
	default:
		return v.IsZero()
	}
}
