package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/reshape"
)

// DecodeJSON decodes a single JSON document into plain data. Numbers that
// are written as integers and fit in an int become int; every other number
// becomes float64, so decoded payloads satisfy integer and number fields
// without further coercion.
func DecodeJSON(data []byte) (any, error) {
	return DecodeJSONReader(bytes.NewReader(data))
}

// DecodeJSONReader is DecodeJSON over a reader. Trailing data after the
// first document is an error.
func DecodeJSONReader(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("codec: decode json: trailing data after document")
	}
	return normalizeNumbers(v), nil
}

// DecodeJSONObject decodes a JSON object into a mapping.
func DecodeJSONObject(data []byte) (map[string]any, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("codec: decode json: expected object, got %T", v)
	}
	return m, nil
}

// EncodeJSON serializes v to JSON. Instances are serialized with implicit
// nulls first; plain data is encoded as is.
func EncodeJSON(v any) ([]byte, error) {
	if inst, ok := v.(reshape.Serializer); ok {
		v = inst.SerializeWith(reshape.SerializeOpt{})
	}
	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode json: %w", err)
	}
	return b, nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case gojson.Number:
		return numberValue(string(t))
	}
	return v
}

func numberValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}
