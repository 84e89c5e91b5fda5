// Package codec holds the collaborators that sit at the edges of a
// transformation: permissive date parsing, and decoding/encoding of plain
// data from and to JSON and YAML.
//
// Decoded payloads use the shapes record types expect: map[string]any,
// []any, string, bool, int for integral numbers and float64 otherwise.
//
//	src, err := codec.DecodeJSON(body)
//	rec, err := m.Apply(src)
//	out, err := codec.EncodeJSON(rec) // serialized with implicit nulls
package codec
