package loader_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/reshape"
	"github.com/reoring/reshape/loader"
	"github.com/reoring/reshape/transform"
)

func TestLoadFile_Ship(t *testing.T) {
	defs, err := loader.LoadFile("testdata/ship.yaml")
	require.NoError(t, err)
	assert.Equal(t, "1", defs.Version)
	assert.Equal(t, []string{"Person", "RawShip", "Ship"}, defs.TypeNames())
	assert.Equal(t, []string{"RawToPerson", "RawToShip"}, defs.MappingNames())

	ship, ok := defs.Type("Ship")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "captain", "crew", "launched"}, ship.FieldNames())

	m, ok := defs.Mapping("RawToShip")
	require.True(t, ok)
	inst, err := m.Apply(map[string]any{
		"title":    "Nautilus",
		"skipper":  map[string]any{"given": "Nemo"},
		"hands":    []any{map[string]any{"given": "Ned", "family": "Land"}},
		"launched": "1866-01-01",
	})
	require.NoError(t, err)
	require.NoError(t, inst.Validate(), spew.Sdump(inst.Values()))

	got := inst.Serialize()
	assert.Equal(t, map[string]any{
		"name":     "Nautilus",
		"captain":  map[string]any{"first_name": "Nemo"},
		"crew":     []any{map[string]any{"first_name": "Ned", "last_name": "Land"}},
		"launched": "1866-01-01T00:00:00Z",
	}, got, spew.Sdump(got))
}

func TestParse_FieldOrderAndKinds(t *testing.T) {
	defs, err := loader.Parse([]byte(`
types:
  Base:
    fields:
      z: {kind: int}
      a: {kind: str, strict: true}
  Child:
    extends: Base
    fields:
      m: {kind: sequence, of: {kind: integer}}
      z: {kind: number}
      id: {kind: uuid, required: false}
`))
	require.NoError(t, err)
	child, ok := defs.Type("Child")
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m", "id"}, child.FieldNames())

	z, _ := child.Field("z")
	assert.Equal(t, reshape.KindNumber, z.Kind())
	a, _ := child.Field("a")
	require.IsType(t, &reshape.TextField{}, a)
	assert.True(t, a.(*reshape.TextField).IsStrict())
	id, _ := child.Field("id")
	assert.False(t, id.Required())

	err = child.New(map[string]any{"z": 1.5, "a": "x", "m": []any{1, "two"}}).Validate()
	inv, ok := reshape.AsInvalid(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "/m/1", inv.Path)
}

func TestParse_Nodes(t *testing.T) {
	defs, err := loader.Parse([]byte(`
mappings:
  Everything:
    fields:
      whole: {all: ~}
      fixed: {const: {get: not-an-op}}
      literal: 42
      name: {concat: [{get: [first]}, " ", {get: last}]}
      n: {int: {get: [n]}}
      maybe: {num: {value: {get: {path: [gone], optional: true}}, optional: true}}
      flag: {bool: "true"}
      shout: {do: {func: upper, args: [{get: [first]}]}}
      ids: {many: {op: int, from: {get: [ids]}}}
      words: {many: {op: str, items: [1, 2.5, true]}}
`), loader.WithFunc("upper", strings.ToUpper))
	require.NoError(t, err)
	m, ok := defs.Mapping("Everything")
	require.True(t, ok)
	assert.Nil(t, m.SourceType())
	assert.Nil(t, m.TargetType())

	src := map[string]any{"first": "ada", "last": "lovelace", "n": "7", "ids": []any{"1", 2}}
	inst, err := m.Apply(src)
	require.NoError(t, err)
	vals := inst.Values()
	assert.Equal(t, src, vals["whole"])
	assert.Equal(t, map[string]any{"get": "not-an-op"}, vals["fixed"])
	assert.Equal(t, 42, vals["literal"])
	assert.Equal(t, "ada lovelace", vals["name"])
	assert.Equal(t, 7, vals["n"])
	assert.Nil(t, vals["maybe"])
	assert.Equal(t, true, vals["flag"])
	assert.Equal(t, "ADA", vals["shout"])
	assert.Equal(t, []any{1, 2}, vals["ids"])
	assert.Equal(t, []any{"1", "2.5", "true"}, vals["words"])

	_, ok = defs.Mapping("Missing")
	assert.False(t, ok)
}

func TestParse_BoolNode(t *testing.T) {
	defs, err := loader.Parse([]byte(`
mappings:
  M:
    fields:
      flag: {bool: "yes"}
`))
	require.NoError(t, err, "conversion errors surface on Apply, not on load")
	m, _ := defs.Mapping("M")
	_, err = m.Apply(nil)
	assert.ErrorIs(t, err, transform.ErrCoerce)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type": `
types:
  A:
    fields:
      b: {type: Nope}`,
		"unknown kind": `
types:
  A:
    fields:
      b: {kind: blob}`,
		"extends cycle": `
types:
  A: {extends: B, fields: {}}
  B: {extends: A, fields: {}}`,
		"self nesting": `
types:
  A:
    fields:
      me: {type: A}`,
		"mapping cycle": `
mappings:
  A: {extends: B, fields: {}}
  B: {extends: A, fields: {}}`,
		"submap cycle": `
mappings:
  A:
    fields:
      x: {submap: {mapping: A, from: {all: ~}}}`,
		"unknown mapping": `
mappings:
  A:
    fields:
      x: {many_submap: {mapping: Nope, from: {all: ~}}}`,
		"unknown function": `
mappings:
  A:
    fields:
      x: {do: {func: nope}}`,
		"unknown many op": `
mappings:
  A:
    fields:
      x: {many: {op: submap, from: {all: ~}}}`,
		"bad get": `
mappings:
  A:
    fields:
      x: {get: {path: [a], extra: 1}}`,
		"duplicate field": `
types:
  A:
    fields:
      x: {kind: int}
      x: {kind: int}`,
		"version":   `version: "2"`,
		"malformed": `types: [1, 2]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loader.Parse([]byte(doc))
			assert.ErrorIs(t, err, loader.ErrDefinition)
		})
	}
}

func TestParse_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	defs, err := loader.Parse([]byte(`
types:
  T:
    fields:
      when: {kind: date}
mappings:
  M:
    target: T
    fields:
      when: {date: {get: [ts]}}
`), loader.WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "type defined")
	assert.Contains(t, buf.String(), "mapping defined")

	m, _ := defs.Mapping("M")
	inst, err := m.Apply(map[string]any{"ts": 0})
	require.NoError(t, err)
	assert.True(t, time.Unix(0, 0).Equal(inst.Values()["when"].(time.Time)))
	assert.Contains(t, buf.String(), "field transformed")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := loader.LoadFile("testdata/nope.yaml")
	assert.Error(t, err)
}
