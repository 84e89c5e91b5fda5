package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	data := map[string]string{"field": "age", "value": "1.5", "kind": "integer"}
	// default is en
	if msg := T("invalid_type", data); msg != "age: 1.5 is not a valid integer" {
		t.Fatalf("unexpected english message %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", data); msg == "age: 1.5 is not a valid integer" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodeEchoes(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code echo, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(upper{})
	if msg := T("missing", nil); msg != "X:missing" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("missing", map[string]string{"segment": "z", "path": "a.z"}); msg != "z is missing at path a.z" {
		t.Fatalf("reset translator not used: %q", msg)
	}
}
