// Package promptgen renders virtual-assistant prompt documents from
// submitted form fields and serves the prompt generation endpoint.
package promptgen

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Category form-types with their own template section.
const (
	Automoveis   = "automoveis"
	EnergiaSolar = "energia-solar"
	Outros       = "outros"
	// Passthrough hands the prompt to an external workflow; no template is rendered.
	Passthrough = "formulario-de-criacao-de-prompt"
)

// Fields is a submitted form as decoded from JSON.
type Fields map[string]any

// Has reports whether key holds a non-empty value.
// Missing keys, null, empty strings, false, and zero are all empty.
func (f Fields) Has(key string) bool {
	switch v := f[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case json.Number:
		n, err := v.Float64()
		return err != nil || n != 0
	default:
		return true
	}
}

// String renders the value at key as text. Lists are joined with commas.
func (f Fields) String(key string) string {
	return stringify(f[key])
}

// Or returns the value at key, or fallback when it is empty.
func (f Fields) Or(key, fallback string) string {
	if !f.Has(key) {
		return fallback
	}
	return f.String(key)
}

// FormType returns the resolved form-type.
func (f Fields) FormType() string {
	s, _ := f["formType"].(string)
	return s
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

var tipoFormulario = map[string]string{
	"formCarros":       Automoveis,
	"formEnergiaSolar": EnergiaSolar,
	"formOutros":       Outros,
}

// ResolveFormType maps a legacy tipoFormulario discriminator onto formType.
// Unrecognized discriminators keep an existing formType or fall back to outros.
// Without a tipoFormulario, formType is left untouched.
func ResolveFormType(f Fields) {
	tipo := f.String("tipoFormulario")
	if tipo == "" {
		return
	}

	if formType, ok := tipoFormulario[tipo]; ok {
		f["formType"] = formType
		return
	}
	if !f.Has("formType") {
		f["formType"] = Outros
	}
}
