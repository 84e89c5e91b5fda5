// Package loader builds record types and mappings from YAML definition
// documents.
//
//	version: "1"
//	types:
//	  Person:
//	    fields:
//	      first_name: {kind: text}
//	      age:        {kind: integer, required: false}
//	mappings:
//	  RawToPerson:
//	    target: Person
//	    fields:
//	      first_name: {get: [name, first]}
//	      age:        {int: {value: {get: {path: [age], optional: true}}, optional: true}}
//
// A node expression is a constant unless it is a single-key mapping naming
// an operation: all, const, get, int, num, str, bool, date, uuid, concat,
// do, submap, many_submap or many. Functions used by "do" are registered
// with WithFuncs.
package loader
