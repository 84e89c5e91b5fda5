package transform_test

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/reshape"
	"github.com/reoring/reshape/transform"
)

func TestGet_Paths(t *testing.T) {
	v, err := transform.Get("a", "b").Eval(map[string]any{"a": map[string]any{"b": 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = transform.Get("a", "z").Optional().Eval(map[string]any{"a": map[string]any{}})
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = transform.Get("a", "z").Eval(map[string]any{"a": map[string]any{}})
	require.Error(t, err)
	miss, ok := reshape.AsMissing(err)
	require.True(t, ok, "want *reshape.Missing, got %T", err)
	assert.Equal(t, "z", miss.Segment)
	assert.Equal(t, []string{"a", "z"}, miss.Path)
	assert.ErrorIs(t, err, reshape.ErrNoKey)
}

func TestGet_OptionalStopsEarly(t *testing.T) {
	v, err := transform.Get("x", "y", "z").Optional().Eval(map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestGet_AttributesAndStructs(t *testing.T) {
	inner := reshape.NewType("Inner").Field("leaf", reshape.Text()).MustBuild()
	outer := reshape.NewType("Outer").Field("inner", reshape.Nested(inner)).MustBuild()
	rec := outer.New(map[string]any{"inner": map[string]any{"leaf": "x"}})

	v, err := transform.Get("inner", "leaf").Eval(rec)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	type point struct {
		X int `json:"x"`
		Y int `reshape:"name=why"`
	}
	v, err = transform.Get("why").Eval(&point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = transform.Get("nope").Eval(point{})
	assert.ErrorIs(t, err, reshape.ErrNoAttr)
}

func TestGet_DeclaredButUnsetAttrIsNil(t *testing.T) {
	typ := reshape.NewType("T").Field("a", reshape.Int(reshape.Optional())).MustBuild()
	v, err := transform.Get("a").Eval(typ.New())
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestGet_EmptyPath(t *testing.T) {
	_, err := transform.Get().Eval(map[string]any{})
	assert.ErrorIs(t, err, transform.ErrEmptyPath)
}

func TestGet_DoesNotMutateSource(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": 1}}
	_, _ = transform.Get("a", "b").Eval(src)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, src)
}

func TestAll(t *testing.T) {
	src := map[string]any{"k": 1}
	v, err := transform.All().Eval(src)
	require.NoError(t, err)
	assert.Equal(t, src, v)

	typ := reshape.NewType("T").Field("k", reshape.Int()).MustBuild()
	v, err = transform.All().Eval(typ.New(src))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": 1}, v)
}

func TestConst(t *testing.T) {
	v, err := transform.Const("fixed").Eval(map[string]any{"ignored": true})
	require.NoError(t, err)
	assert.Equal(t, "fixed", v)
}

func TestCoercions(t *testing.T) {
	cases := []struct {
		name string
		node transform.Node
		want any
	}{
		{"int from text", transform.Int("123"), 123},
		{"int from float truncates", transform.Int(-2.9), -2},
		{"int from bool", transform.Int(true), 1},
		{"num from text", transform.Num("1.5"), 1.5},
		{"num from int", transform.Num(3), 3.0},
		{"str from int", transform.Str(42), "42"},
		{"str from float", transform.Str(1.5), "1.5"},
		{"str from bool", transform.Str(true), "true"},
		{"bool from nil", transform.Bool(nil), false},
		{"bool from empty text", transform.Bool(""), false},
		{"bool from text", transform.Bool("true"), true},
		{"bool from zero", transform.Bool(0), false},
		{"bool from list", transform.Bool([]any{1}), true},
		{"nested arg", transform.Int(transform.Get("n")), 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := tc.node.Eval(map[string]any{"n": "7"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestCoercion_NullLike(t *testing.T) {
	v, err := transform.Int(nil).Optional().Eval(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = transform.Str("").Optional().Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = transform.Int(nil).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)

	_, err = transform.Int("").Optional().Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce, "empty text is only null-like for Str")
}

func TestCoercion_Failures(t *testing.T) {
	_, err := transform.Int("abc").Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)
	_, err = transform.Num(struct{}{}).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)
	_, err = transform.Bool("maybe").Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)
	_, err = transform.Int(math.NaN()).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)
}

func TestCoercion_ErrorFromArgument(t *testing.T) {
	_, err := transform.Int(transform.Get("missing")).Eval(map[string]any{})
	_, ok := reshape.AsMissing(err)
	assert.True(t, ok)
}

func TestParseDate(t *testing.T) {
	v, err := transform.ParseDate(0).Eval(nil)
	require.NoError(t, err)
	assert.True(t, time.Unix(0, 0).Equal(v.(time.Time)))

	v, err = transform.ParseDate("2021-03-04 05:06:07").Eval(nil)
	require.NoError(t, err)
	ts := v.(time.Time)
	assert.True(t, time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC).Equal(ts), "got %s", ts)
	_, off := ts.Zone()
	assert.Equal(t, 0, off)

	v, err = transform.ParseDate("2021-03-04T05:06:07+02:00").Eval(nil)
	require.NoError(t, err)
	assert.True(t, time.Date(2021, 3, 4, 3, 6, 7, 0, time.UTC).Equal(v.(time.Time)))

	_, err = transform.ParseDate(1.5).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)
}

func TestUUID(t *testing.T) {
	id := uuid.New()
	v, err := transform.UUID(id.String()).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, id, v)

	_, err = transform.UUID("not-a-uuid").Eval(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)
}

func TestConcat(t *testing.T) {
	n := transform.Concat(transform.Get("first"), " ", transform.Get("last"), 3)
	v, err := n.Eval(map[string]any{"first": "Ada", "last": "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace3", v)

	v, err = transform.Concat().Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestConcat_ArgumentsAreBroadcast(t *testing.T) {
	src := map[string]any{"a": "x", "b": map[string]any{"a": "y"}}
	v, err := transform.Concat(transform.Get("a"), transform.Get("b", "a")).Eval(src)
	require.NoError(t, err)
	assert.Equal(t, "xy", v)
}

func TestDo(t *testing.T) {
	v, err := transform.Do(strings.ToUpper, transform.Get("s")).Eval(map[string]any{"s": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	add := func(a, b int) int { return a + b }
	v, err = transform.Do(add, transform.Int("2"), 3).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	sum := func(xs ...float64) float64 {
		var s float64
		for _, x := range xs {
			s += x
		}
		return s
	}
	v, err = transform.Do(sum, 1, 2.5).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	v, err = transform.Do(func() string { return "noargs" }).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, "noargs", v)
}

func TestDo_ResolvesCallable(t *testing.T) {
	src := map[string]any{"fn": func(s string) string { return s + "!" }, "s": "hi"}
	v, err := transform.Do(transform.Get("fn"), transform.Get("s")).Eval(src)
	require.NoError(t, err)
	assert.Equal(t, "hi!", v)
}

func TestDo_ErrorsPropagateUnwrapped(t *testing.T) {
	boom := errors.New("boom")
	_, err := transform.Do(func(any) (any, error) { return nil, boom }, 1).Eval(nil)
	assert.Same(t, boom, err)

	_, err = transform.Do(strconvLike, "x").Eval(nil)
	assert.EqualError(t, err, "bad x")

	v, err := transform.Do(strconvLike, "ok").Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func strconvLike(s string) (int, error) {
	if s != "ok" {
		return 0, fmt.Errorf("bad %s", s)
	}
	return len(s), nil
}

func TestDo_Misuse(t *testing.T) {
	_, err := transform.Do("not a func").Eval(nil)
	assert.ErrorIs(t, err, transform.ErrNotCallable)

	_, err = transform.Do(strings.ToUpper).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrArguments)

	_, err = transform.Do(strings.ToUpper, 1).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrArguments)
}

func TestMany(t *testing.T) {
	v, err := transform.Many(transform.Each(transform.Int), transform.Get("ids")).
		Eval(map[string]any{"ids": []any{"1", "2", 3.7}})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, v)

	v, err = transform.Many(transform.Each(transform.Str), 1, 2).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2"}, v)

	v, err = transform.Many(transform.Each(transform.Str)).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)

	v, err = transform.Many(transform.Each(transform.Int), []string{"4", "5"}).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{4, 5}, v)
}

func TestMany_RejectsSubmaps(t *testing.T) {
	sub := transform.NewMapping("Sub").Field("x", transform.All()).MustBuild()
	ctor := func(arg any) transform.Node { return transform.Submap(sub, arg) }
	_, err := transform.Many(ctor, 1, 2).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrManySubmap)

	ctor = func(arg any) transform.Node { return transform.ManySubmap(sub, arg) }
	_, err = transform.Many(ctor, []any{1}).Eval(nil)
	assert.ErrorIs(t, err, transform.ErrManySubmap)
}

func TestNodeFunc(t *testing.T) {
	n := transform.NodeFunc(func(src any) (any, error) { return src, nil })
	v, err := transform.Str(n).Eval(12)
	require.NoError(t, err)
	assert.Equal(t, "12", v)
}
