package reshape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/reshape/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired       = "required"
	CodeInvalidType    = "invalid_type"
	CodeInvalidElement = "invalid_element"
	CodeMissing        = "missing"
)

var (
	// ErrDefinition marks a malformed record type declaration.
	ErrDefinition = errors.New("reshape: invalid definition")
	// ErrNoKey is the lookup failure wrapped by Missing when a mapping lacks a key.
	ErrNoKey = errors.New("no such key")
	// ErrNoAttr is the lookup failure wrapped by Missing when a value has no such attribute.
	ErrNoAttr = errors.New("no such attribute")
	// ErrUnknownField is returned by Record.Set for names the record type does not declare.
	ErrUnknownField = errors.New("reshape: unknown field")
)

// Invalid reports a value that failed a field's required-ness or structural check.
type Invalid struct {
	Field string // Declared field name; empty for a detached field.
	Path  string // JSON Pointer of the offending value (for example: /captain/first_name).
	Code  string // CodeRequired, CodeInvalidType or CodeInvalidElement.
	Kind  Kind   // Expected kind.
	Value any    // Offending value (the element for CodeInvalidElement).
	Index int    // Element index for CodeInvalidElement, -1 otherwise.
	Cause error  // Optional: underlying validation failure of a sub-record element.
}

func (e *Invalid) Error() string {
	name := e.Field
	if name == "" {
		name = "value"
	}
	data := map[string]string{
		"field": name,
		"kind":  e.Kind.String(),
		"value": fmt.Sprintf("%#v", e.Value),
	}
	if e.Index >= 0 {
		data["index"] = strconv.Itoa(e.Index)
	}
	msg := i18n.T(e.Code, data)
	if e.Path != "" && e.Path != "/" {
		msg += " (at " + e.Path + ")"
	}
	return msg
}

func (e *Invalid) Unwrap() error { return e.Cause }

// rebase moves the error under the given parent field, prefixing its path.
func (e *Invalid) rebase(parent string) *Invalid {
	out := *e
	base := "/" + parent
	switch {
	case e.Path == "" || e.Path == "/":
		out.Path = base
	case e.Path[0] == '/':
		out.Path = base + e.Path
	default:
		out.Path = base + "/" + e.Path
	}
	return &out
}

// Missing reports a required path segment absent from an extraction source.
type Missing struct {
	Path    []string // Full path of the extraction.
	Segment string   // First segment that could not be resolved.
	Cause   error    // Underlying lookup failure wrapping ErrNoKey or ErrNoAttr.
}

func (e *Missing) Error() string {
	return i18n.T(CodeMissing, map[string]string{
		"segment": e.Segment,
		"path":    strings.Join(e.Path, "."),
	})
}

func (e *Missing) Unwrap() error { return e.Cause }

// AsInvalid extracts an *Invalid from an error using errors.As internally.
func AsInvalid(err error) (*Invalid, bool) {
	if err == nil {
		return nil, false
	}
	var inv *Invalid
	if errors.As(err, &inv) {
		return inv, true
	}
	return nil, false
}

// AsMissing extracts a *Missing from an error using errors.As internally.
func AsMissing(err error) (*Missing, bool) {
	if err == nil {
		return nil, false
	}
	var m *Missing
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

func invalid(field string, kind Kind, code string, v any) *Invalid {
	return &Invalid{Field: field, Path: "/", Code: code, Kind: kind, Value: v, Index: -1}
}
