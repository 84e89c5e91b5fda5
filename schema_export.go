package reshape

import (
	js "github.com/reoring/reshape/jsonschema"
)

// JSONSchema projects the record type into a JSON Schema document. Required
// fields are listed in declaration order; unknown keys are allowed because
// construction ignores them.
func (t *RecordType) JSONSchema() *js.Schema {
	s := t.objectSchema()
	s.Dialect = js.Draft
	return s
}

func (t *RecordType) objectSchema() *js.Schema {
	props := make(map[string]*js.Schema, len(t.fields))
	var req []string
	for _, f := range t.fields {
		props[f.Name()] = fieldSchema(f)
		if f.Required() {
			req = append(req, f.Name())
		}
	}
	return &js.Schema{Title: t.name, Type: "object", Properties: props, Required: req, AdditionalProperties: true}
}

func fieldSchema(f Field) *js.Schema {
	switch t := f.(type) {
	case *BoolField:
		return &js.Schema{Type: "boolean"}
	case *IntField:
		return &js.Schema{Type: "integer"}
	case *NumberField:
		return &js.Schema{Type: "number"}
	case *TextField:
		return &js.Schema{Type: "string"}
	case *DatetimeField:
		if t.iso {
			return &js.Schema{Type: "string", Format: "date-time"}
		}
		return &js.Schema{}
	case *UUIDField:
		return &js.Schema{Type: "string", Format: "uuid"}
	case *RecordField:
		return t.typ.objectSchema()
	case *SequenceField:
		s := &js.Schema{Type: "array"}
		switch {
		case t.elem != nil:
			s.Items = fieldSchema(t.elem)
		case t.elemType != nil:
			s.Items = t.elemType.objectSchema()
		}
		return s
	case *MappingField:
		return &js.Schema{Type: "object"}
	}
	return &js.Schema{}
}
