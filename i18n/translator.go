package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional values to embed in the message (for example,
// "field", "kind" or "segment").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var tmpl string
	switch t.lang {
	case "ja":
		switch code {
		case "required":
			tmpl = "{field}: 値が必要です"
		case "invalid_type":
			tmpl = "{field}: {value} は有効な {kind} ではありません"
		case "invalid_element":
			tmpl = "{field}: 要素 {index} ({value}) は有効な {kind} ではありません"
		case "missing":
			tmpl = "パス {path} に {segment} がありません"
		}
	default: // "en"
		switch code {
		case "required":
			tmpl = "{field}: a value is required"
		case "invalid_type":
			tmpl = "{field}: {value} is not a valid {kind}"
		case "invalid_element":
			tmpl = "{field}: element {index} ({value}) is not a valid {kind}"
		case "missing":
			tmpl = "{segment} is missing at path {path}"
		}
	}
	if tmpl == "" {
		return code
	}
	return expand(tmpl, data)
}

// expand substitutes {key} placeholders; unknown keys render as empty text.
func expand(tmpl string, data map[string]string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		b.WriteString(tmpl[:i])
		b.WriteString(data[tmpl[i+1:i+j]])
		tmpl = tmpl[i+j+1:]
	}
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
