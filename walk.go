package safejson

import (
	"bytes"
	"context"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// encodeState is the state of a single Encode call.
type encodeState struct {
	bytes.Buffer
	opts      *Options
	ancestors ancestors
	level     int
}

// property encodes the member key of holder. It reports false, having written
// nothing, if the member has no JSON representation.
//
// The custom serialization of the value is applied first, then the Replacer,
// and the cycle check is done on the result of both.
func (e *encodeState) property(holder any, key string, v any) (bool, error) {
	v, via, err := e.transform(key, v)
	if err != nil {
		return false, err
	}
	if e.opts.Replacer != nil {
		if v, err = e.opts.Replacer(holder, key, v); err != nil {
			return false, err
		}
	}
	return e.value(key, v, via)
}

// transform replaces v by its custom serialization, if it has one.
// via is the identity of v if v was replaced by a Marshaler; it stays on the
// ancestor path while the replacement is encoded.
func (e *encodeState) transform(key string, v any) (any, *identity, error) {
	switch typed := v.(type) {
	case nil, *Object, json.RawMessage, json.Number:
		return v, nil, nil
	case Marshaler:
		rv := reflect.ValueOf(typed)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, nil, nil
		}
		out, err := typed.ToJSON(key)
		if err != nil {
			return nil, nil, err
		}
		if id, ok := identityOf(rv); ok {
			return out, &id, nil
		}
		return out, nil, nil
	case json.Marshaler:
		if isNilPointer(typed) {
			return nil, nil, nil
		}
		raw, err := typed.MarshalJSON()
		if err != nil {
			return nil, nil, err
		}
		return json.RawMessage(raw), nil, nil
	case encoding.TextMarshaler:
		if isNilPointer(typed) {
			return nil, nil, nil
		}
		text, err := typed.MarshalText()
		if err != nil {
			return nil, nil, err
		}
		return string(text), nil, nil
	default:
		return v, nil, nil
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// value writes v without applying custom serialization or the Replacer.
func (e *encodeState) value(key string, v any, via *identity) (bool, error) {
	switch typed := v.(type) {
	case nil:
		e.WriteString("null")
	case undefined:
		return false, nil
	case string:
		e.Write(appendString(e.AvailableBuffer(), typed))
	case bool:
		e.Write(strconv.AppendBool(e.AvailableBuffer(), typed))
	case float64:
		e.Write(appendFloat(e.AvailableBuffer(), typed, 64))
	case float32:
		e.Write(appendFloat(e.AvailableBuffer(), float64(typed), 32))
	case int:
		e.Write(strconv.AppendInt(e.AvailableBuffer(), int64(typed), 10))
	case int64:
		e.Write(strconv.AppendInt(e.AvailableBuffer(), typed, 10))
	case json.Number:
		if !validNumber(typed) {
			return false, fmt.Errorf("%w %q for %q", ErrInvalidNumber, string(typed), key)
		}
		e.WriteString(string(typed))
	case json.RawMessage:
		if typed == nil {
			e.WriteString("null")
			break
		}
		if err := e.raw(key, typed); err != nil {
			return false, err
		}
	case *Object:
		if typed == nil {
			e.WriteString("null")
			break
		}
		return e.descend(key, reflect.ValueOf(typed), via, func() (bool, error) {
			return true, e.object(typed, e.objectKeys(typed), func(name string) (any, bool) {
				if typed.OrderedMap == nil {
					return nil, false
				}
				return typed.Get(name)
			})
		})
	case map[string]any:
		if typed == nil {
			e.WriteString("null")
			break
		}
		return e.descend(key, reflect.ValueOf(typed), via, func() (bool, error) {
			keys := func() []string { return slices.Sorted(maps.Keys(typed)) }
			return true, e.object(typed, keys, func(name string) (any, bool) {
				member, ok := typed[name]
				return member, ok
			})
		})
	case []any:
		if typed == nil {
			e.WriteString("null")
			break
		}
		return e.descend(key, reflect.ValueOf(typed), via, func() (bool, error) {
			return true, e.array(typed, len(typed), func(i int) any { return typed[i] })
		})
	default:
		return e.reflectValue(key, reflect.ValueOf(v), via)
	}
	return true, nil
}

func (e *encodeState) reflectValue(key string, v reflect.Value, via *identity) (bool, error) {
	switch v.Kind() {
	case reflect.Bool:
		e.Write(strconv.AppendBool(e.AvailableBuffer(), v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.Write(strconv.AppendInt(e.AvailableBuffer(), v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.Write(strconv.AppendUint(e.AvailableBuffer(), v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		e.Write(appendFloat(e.AvailableBuffer(), v.Float(), v.Type().Bits()))
	case reflect.String:
		e.Write(appendString(e.AvailableBuffer(), v.String()))
	case reflect.Interface:
		if v.IsNil() {
			e.WriteString("null")
			break
		}
		return e.value(key, interfaceOf(v.Elem()), via)
	case reflect.Pointer:
		if v.IsNil() {
			e.WriteString("null")
			break
		}
		return e.descend(key, v, via, func() (bool, error) {
			elem := v.Elem()
			switch {
			case !elem.CanInterface():
				return e.reflectValue(key, elem, nil)
			case elem.Kind() == reflect.Interface || elem.Kind() == reflect.Pointer:
				// the method set of elem is not part of the pointer's own
				inner, innerVia, err := e.transform(key, interfaceOf(elem))
				if err != nil {
					return false, err
				}
				return e.value(key, inner, innerVia)
			case elem.Kind() == reflect.Struct:
				return e.reflectValue(key, elem, nil)
			}
			return e.value(key, elem.Interface(), nil)
		})
	case reflect.Map:
		if v.IsNil() {
			e.WriteString("null")
			break
		}
		if !supportedMapKey(v.Type().Key()) {
			return false, nil
		}
		return e.descend(key, v, via, func() (bool, error) {
			return true, e.mapObject(v)
		})
	case reflect.Slice:
		if v.IsNil() {
			e.WriteString("null")
			break
		}
		if isByteSlice(v.Type()) {
			e.Write(appendString(e.AvailableBuffer(), base64.StdEncoding.EncodeToString(v.Bytes())))
			break
		}
		fallthrough
	case reflect.Array:
		return e.descend(key, v, via, func() (bool, error) {
			return true, e.array(interfaceOf(v), v.Len(), func(i int) any { return addressed(v.Index(i)) })
		})
	case reflect.Struct:
		return e.descend(key, v, via, func() (bool, error) {
			return true, e.structObject(v)
		})
	default:
		// functions, channels, complex numbers and unsafe pointers
		return false, nil
	}
	return true, nil
}

// descend runs encode for the composite value v. If v, or the value v is the
// custom serialization of, is already on the ancestor path CircularMarker is
// written instead.
func (e *encodeState) descend(key string, v reflect.Value, via *identity, encode func() (bool, error)) (bool, error) {
	id, ok := identityOf(v)
	if ok && e.ancestors.contains(id) || via != nil && e.ancestors.contains(*via) {
		e.circular(key)
		return true, nil
	}
	if ok {
		e.ancestors.push(id)
		defer e.ancestors.pop(id)
	}
	if via != nil {
		e.ancestors.push(*via)
		defer e.ancestors.pop(*via)
	}
	return encode()
}

func (e *encodeState) circular(key string) {
	e.Write(appendString(e.AvailableBuffer(), CircularMarker))
	if e.opts.Logger != nil {
		e.opts.Logger.LogAttrs(context.Background(), slog.LevelDebug, "replaced circular reference",
			slog.String("key", key),
			slog.Int("depth", e.level),
		)
	}
}

// object writes the members named by keys. get is consulted for every member when
// it is written, so members changed or removed by an earlier member's
// serialization are picked up.
func (e *encodeState) object(holder any, keys func() []string, get func(string) (any, bool)) error {
	names := e.opts.Keys
	if names == nil {
		names = keys()
	}

	e.WriteByte('{')
	e.level++
	written := 0
	for _, name := range names {
		member, ok := get(name)
		if !ok {
			continue
		}
		mark := e.Len()
		if written > 0 {
			e.WriteByte(',')
		}
		e.newline()
		e.Write(appendString(e.AvailableBuffer(), name))
		e.WriteByte(':')
		if e.opts.Indent != "" {
			e.WriteByte(' ')
		}
		ok, err := e.property(holder, name, member)
		if err != nil {
			return err
		}
		if !ok {
			e.Truncate(mark)
			continue
		}
		written++
	}
	e.level--
	if written > 0 {
		e.newline()
	}
	e.WriteByte('}')
	return nil
}

func (e *encodeState) array(holder any, n int, at func(int) any) error {
	e.WriteByte('[')
	e.level++
	for i := range n {
		if i > 0 {
			e.WriteByte(',')
		}
		e.newline()
		ok, err := e.property(holder, strconv.Itoa(i), at(i))
		if err != nil {
			return err
		}
		if !ok {
			e.WriteString("null")
		}
	}
	e.level--
	if n > 0 {
		e.newline()
	}
	e.WriteByte(']')
	return nil
}

func (e *encodeState) newline() {
	if e.opts.Indent == "" {
		return
	}
	e.WriteByte('\n')
	for range e.level {
		e.WriteString(e.opts.Indent)
	}
}

// raw writes JSON produced by a json.Marshaler, re-indented to the current level.
func (e *encodeState) raw(key string, data json.RawMessage) error {
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return fmt.Errorf("invalid json from marshaler for %q: %w", key, err)
	}
	if e.opts.Indent == "" {
		e.Write(compact.Bytes())
		return nil
	}
	return json.Indent(&e.Buffer, compact.Bytes(), strings.Repeat(e.opts.Indent, e.level), e.opts.Indent)
}

func (e *encodeState) objectKeys(o *Object) func() []string {
	return func() []string {
		if o.OrderedMap == nil {
			return nil
		}
		return e.sorted(o.Keys())
	}
}

func (e *encodeState) sorted(keys []string) []string {
	if e.opts.SortKeys {
		slices.Sort(keys)
	}
	return keys
}

func (e *encodeState) structObject(v reflect.Value) error {
	fields := cachedFields(v.Type())
	keys := func() []string {
		names := make([]string, len(fields.list))
		for i, f := range fields.list {
			names[i] = f.name
		}
		return e.sorted(names)
	}
	get := func(name string) (any, bool) {
		i, ok := fields.byName[name]
		if !ok {
			return nil, false
		}
		f := fields.list[i]
		fv, ok := fieldByIndex(v, f.index)
		if !ok || !fv.CanInterface() {
			return nil, false
		}
		if f.omitEmpty && isEmptyValue(fv) || f.omitZero && isZeroValue(fv) {
			return nil, false
		}
		if f.quoted {
			if quoted, ok := quotedValue(fv); ok {
				return quoted, true
			}
		}
		return addressed(fv), true
	}
	return e.object(interfaceOf(v), keys, get)
}

func (e *encodeState) mapObject(v reflect.Value) error {
	members := make(map[string]reflect.Value, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		name, err := mapKeyName(iter.Key())
		if err != nil {
			return err
		}
		members[name] = iter.Key()
	}
	keys := func() []string { return slices.Sorted(maps.Keys(members)) }
	get := func(name string) (any, bool) {
		k, ok := members[name]
		if !ok {
			return nil, false
		}
		member := v.MapIndex(k)
		if !member.IsValid() {
			return nil, false
		}
		return interfaceOf(member), true
	}
	return e.object(interfaceOf(v), keys, get)
}

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

func supportedMapKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return t.Implements(textMarshalerType)
	}
}

func mapKeyName(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", nil
		}
		text, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	default:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
}

var (
	marshalerType     = reflect.TypeFor[Marshaler]()
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
)

// isByteSlice reports whether t is encoded as a base64 string.
func isByteSlice(t reflect.Type) bool {
	if t.Elem().Kind() != reflect.Uint8 {
		return false
	}
	p := reflect.PointerTo(t.Elem())
	return !p.Implements(marshalerType) && !p.Implements(jsonMarshalerType) && !p.Implements(textMarshalerType)
}

// addressed returns a pointer to v if only the pointer has custom serialization,
// so methods with pointer receivers are found on addressable values.
func addressed(v reflect.Value) any {
	if !v.CanInterface() {
		return nil
	}
	if v.CanAddr() && v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface &&
		!serializes(v.Type()) && serializes(reflect.PointerTo(v.Type())) {
		return v.Addr().Interface()
	}
	return v.Interface()
}

func serializes(t reflect.Type) bool {
	return t.Implements(marshalerType) || t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)
}

// quotedValue is the string form of a scalar field tagged with the string option.
// Fields with custom serialization keep it.
func quotedValue(v reflect.Value) (any, bool) {
	for v.Kind() == reflect.Pointer {
		if serializes(v.Type()) {
			return nil, false
		}
		if v.IsNil() {
			return nil, true
		}
		v = v.Elem()
	}
	if serializes(v.Type()) || v.CanAddr() && serializes(reflect.PointerTo(v.Type())) {
		return nil, false
	}
	switch v.Kind() {
	case reflect.String:
		return string(appendString(nil, v.String())), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return string(appendFloat(nil, v.Float(), v.Type().Bits())), true
	default:
		return nil, false
	}
}

func interfaceOf(v reflect.Value) any {
	if !v.CanInterface() {
		return nil
	}
	return v.Interface()
}
