package safejson

import (
	"reflect"
	"unsafe"
)

// identity is the reference identity of a value.
// The type is part of the identity so that a pointer to a struct and a pointer
// to its first field are told apart. The length distinguishes slices sharing a
// backing array.
type identity struct {
	ptr unsafe.Pointer
	typ reflect.Type
	len int
}

// identityOf returns the identity of v if v is a non-nil pointer, map or non-empty slice.
func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{ptr: v.UnsafePointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.UnsafePointer(), typ: v.Type(), len: v.Len()}, true
	default:
		return identity{}, false
	}
}

// ancestors holds the identities of the values on the path from the root to the
// value currently being encoded. It grows on the way down and shrinks on the way
// back up, so values that were fully encoded in a sibling branch are never members.
//
// An identity may be held more than once, e.g. when a Marshaler returns itself,
// hence the counter.
type ancestors map[identity]int

func (a ancestors) contains(id identity) bool {
	return a[id] > 0
}

func (a ancestors) push(id identity) {
	a[id]++
}

func (a ancestors) pop(id identity) {
	if a[id] <= 1 {
		delete(a, id)
		return
	}
	a[id]--
}
