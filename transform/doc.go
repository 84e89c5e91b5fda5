// Package transform composes transformation trees that build records from
// arbitrary source values.
//
// A Node computes one value from the top-level source. Leaves read the
// source (All, Get) or ignore it (Const). Combinators first evaluate every
// Node argument against the same source, then combine the results (Int,
// Num, Str, Bool, ParseDate, UUID, Concat, Do, Submap, ManySubmap, Many).
//
// A Mapping binds target field names to nodes:
//
//	m := transform.NewMapping("OneToTwo").
//		Source(one).Target(two).
//		Field("peas", transform.Get("my_str")).
//		Field("beans", transform.Int(transform.Get("another_str"))).
//		MustBuild()
//	inst, err := m.Apply(map[string]any{"my_str": "woof", "another_str": "123"})
package transform
