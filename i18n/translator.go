// Package i18n renders violation messages. The built-in catalogs cover
// English and Portuguese; SetTranslator accepts anything else.
package i18n

import "fmt"

// Translator renders a localized message for a violation code. data carries
// the message parameters ("name", "type", "got", "index").
type Translator interface {
	Message(code string, data map[string]string) string
}

// catalog maps violation codes to render functions for one language.
// Unknown codes echo back unchanged so new codes degrade gracefully.
type catalog map[string]func(d map[string]string) string

func (c catalog) Message(code string, data map[string]string) string {
	render, ok := c[code]
	if !ok {
		return code
	}
	return render(data)
}

var english = catalog{
	"required": func(d map[string]string) string {
		return fmt.Sprintf("field %q is required but missing", d["name"])
	},
	"invalid_type": func(d map[string]string) string {
		return fmt.Sprintf("field %q must be %s, got %s", d["name"], d["type"], d["got"])
	},
	"not_a_list": func(d map[string]string) string {
		return fmt.Sprintf("field %q must be a list", d["name"])
	},
	"invalid_item": func(d map[string]string) string {
		return fmt.Sprintf("item %s in %q must be %s", d["index"], d["name"], d["type"])
	},
	"unknown_field": func(d map[string]string) string {
		return fmt.Sprintf("field %q is not defined in the schema", d["name"])
	},
	"parse_error": func(map[string]string) string { return "parse error" },
	"truncated":   func(map[string]string) string { return "truncated" },
}

var portuguese = catalog{
	"required": func(d map[string]string) string {
		return fmt.Sprintf("Campo obrigatório '%s' está ausente", d["name"])
	},
	"invalid_type": func(d map[string]string) string {
		return fmt.Sprintf("Campo '%s' deve ser do tipo %s, recebido %s", d["name"], d["type"], d["got"])
	},
	"not_a_list": func(d map[string]string) string {
		return fmt.Sprintf("Campo '%s' deve ser uma lista", d["name"])
	},
	"invalid_item": func(d map[string]string) string {
		return fmt.Sprintf("Item %s em '%s' deve ser do tipo %s, recebido %s", d["index"], d["name"], d["type"], d["got"])
	},
	"unknown_field": func(d map[string]string) string {
		return fmt.Sprintf("Campo '%s' não está definido no modelo", d["name"])
	},
	"parse_error": func(map[string]string) string { return "erro de análise" },
	"truncated":   func(map[string]string) string { return "truncado" },
}

var active Translator = english

// SetLanguage selects a built-in catalog, "en" or "pt". Anything else falls
// back to English.
func SetLanguage(lang string) {
	if lang == "pt" {
		active = portuguese
		return
	}
	active = english
}

// SetTranslator installs a custom Translator. A nil value restores the
// English catalog.
func SetTranslator(tr Translator) {
	if tr == nil {
		active = english
		return
	}
	active = tr
}

// T renders the message for code through the active Translator.
func T(code string, data map[string]string) string { return active.Message(code, data) }
