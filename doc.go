// Package reshape provides declarative record types for turning
// heterogeneous payloads into validated, typed records and back into plain
// data.
//
// A record type is an ordered collection of fields built once with NewType.
// Each field owns its validation and serialization contract:
//
//	person := reshape.NewType("Person").
//	    Field("first_name", reshape.Text()).
//	    Field("last_name", reshape.Text(reshape.Optional())).
//	    MustBuild()
//
//	ship := reshape.NewType("Ship").
//	    Field("name", reshape.Text()).
//	    Field("captain", reshape.Nested(person)).
//	    Field("crew", reshape.RecordSequence(person, reshape.Optional())).
//	    MustBuild()
//
//	s := ship.New(map[string]any{"name": "Titanic"})
//	_ = s.Nested("captain").Set("first_name", "Edward")
//	if err := s.Validate(); err != nil {
//	    inv, _ := reshape.AsInvalid(err) // inv.Path is a JSON Pointer such as /captain/first_name
//	}
//	out := s.Serialize() // plain map[string]any, nullish keys dropped
//
// Design policy:
//   - Setting is not validating: New and Set never fail on bad values.
//   - Validate stops at the first failing field and returns *Invalid.
//   - Serialize never fails; it passes values it does not understand through.
//   - Emptiness (Nullish, IsEmpty) is a predicate of its own, not validation.
//
// Transformations between record types live in package transform.
package reshape
