package safejson

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Unmarshal parses a JSON document into the value model of this package:
// objects become *Object (keeping member order), arrays []any, numbers json.Number,
// strings string, booleans bool and null nil.
//
// Encoding the result with Marshal reproduces the compact form of the document.
func Unmarshal(data []byte) (any, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: malformed document", ErrInvalidJSON)
	}
	value, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return decodeValue(value, typ)
}

func decodeValue(value []byte, typ jsonparser.ValueType) (any, error) {
	switch typ {
	case jsonparser.Object:
		return decodeObject(value)
	case jsonparser.Array:
		return decodeArray(value)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return s, nil
	case jsonparser.Number:
		return json.Number(value), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return b, nil
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected value type %v", ErrInvalidJSON, typ)
	}
}

func decodeObject(data []byte) (*Object, error) {
	o := NewObject()
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, typ jsonparser.ValueType, _ int) error {
		member, err := decodeValue(value, typ)
		if err != nil {
			return fmt.Errorf("member %q: %w", key, err)
		}
		o.Set(string(key), member)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func decodeArray(data []byte) ([]any, error) {
	elems := make([]any, 0)
	var elemErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, typ jsonparser.ValueType, _ int, err error) {
		if elemErr != nil {
			return
		}
		if err != nil {
			elemErr = fmt.Errorf("%w: %w", ErrInvalidJSON, err)
			return
		}
		elem, err := decodeValue(value, typ)
		if err != nil {
			elemErr = fmt.Errorf("entry %d: %w", len(elems), err)
			return
		}
		elems = append(elems, elem)
	})
	if elemErr != nil {
		return nil, elemErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return elems, nil
}
