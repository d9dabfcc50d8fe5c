package safejson

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Options configure an Encoder.
type Options struct {
	// Replacer, if set, is called for every member before it is encoded.
	// Keys is ignored when a Replacer is set.
	Replacer ReplacerFunc
	// Keys, if non-nil, restricts every object to the listed members.
	Keys KeyList
	// Indent is repeated once per nesting level. Empty means compact output.
	// It is cut after MaxIndent characters.
	Indent string
	// SortKeys emits the members of *Object values in sorted order instead of
	// insertion order. Go maps are always emitted sorted.
	SortKeys bool
	// Logger receives a debug record for every replaced circular reference.
	Logger *slog.Logger
}

// Encoder encodes values with a fixed set of Options.
// An Encoder holds no state between calls and may be used concurrently.
type Encoder struct {
	opts Options
}

// New returns an Encoder for opts.
func New(opts Options) *Encoder {
	opts.Indent = capIndent(opts.Indent)
	if opts.Replacer != nil {
		opts.Keys = nil
	}
	return &Encoder{opts: opts}
}

// Encode returns the JSON encoding of v.
// If v has no JSON representation (for example because the Replacer dropped it),
// Encode returns nil and no error.
func (enc *Encoder) Encode(v any) ([]byte, error) {
	e := &encodeState{
		opts:      &enc.opts,
		ancestors: ancestors{},
	}
	// The root is passed through the same pipeline as every member, held by a
	// synthetic object under the empty key.
	holder := NewObject()
	holder.Set("", v)
	ok, err := e.property(holder, "", v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return e.Bytes(), nil
}

// EncodeTo writes the JSON encoding of v to w.
// Nothing is written if v has no JSON representation.
func (enc *Encoder) EncodeTo(w io.Writer, v any) error {
	data, err := enc.Encode(v)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	_, err = w.Write(data)
	return err
}

// EncodeCanonical returns the JSON Canonicalization Scheme (RFC 8785) form of v.
// Replacer and Keys apply as usual, Indent is ignored.
func (enc *Encoder) EncodeCanonical(v any) ([]byte, error) {
	compact := enc.opts
	compact.Indent = ""
	data, err := (&Encoder{opts: compact}).Encode(v)
	if err != nil || data == nil {
		return data, err
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("cannot canonicalize json: %w", err)
	}
	return canonical, nil
}

// Stringify returns the JSON text of value, replacing circular references with CircularMarker.
//
// filter is nil, a ReplacerFunc (or a plain func with the same signature), a KeyList,
// a []string or a []any whose string and number entries name the members to keep.
// indent is nil, a number of spaces or an indentation string, see Indent.
// Filters and indents of any other type are ignored.
//
// If value has no JSON representation the result is the empty string.
func Stringify(value any, filter any, indent any) (string, error) {
	return stringify(value, filter, indent, false)
}

// StableStringify is Stringify with the members of every object emitted in sorted order.
func StableStringify(value any, filter any, indent any) (string, error) {
	return stringify(value, filter, indent, true)
}

func stringify(value any, filter any, indent any, sorted bool) (string, error) {
	replacer, keys := filterOf(filter)
	data, err := New(Options{
		Replacer: replacer,
		Keys:     keys,
		Indent:   Indent(indent),
		SortKeys: sorted,
	}).Encode(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Marshal returns the compact JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return New(Options{}).Encode(v)
}

// MarshalIndent is like Marshal but indents every level with indent.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return New(Options{Indent: indent}).Encode(v)
}

// Canonicalize returns the RFC 8785 canonical form of v.
func Canonicalize(v any) ([]byte, error) {
	return New(Options{}).EncodeCanonical(v)
}
