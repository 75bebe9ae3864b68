package promptgen

import "errors"

// ValidationError reports missing required fields with a user-facing message.
type ValidationError struct {
	Message string
	Missing []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const commonMessage = "Campos básicos obrigatórios não preenchidos"

var commonFields = []string{
	"nomeEmpresa",
	"tempoMercado",
	"localizacao",
	"nomeAssistente",
	"generoBot",
	"regrasCriticas",
	"proibicoesAbsolutas",
	"exemplosConversas",
}

// Validate checks the common required fields and then the fields required
// by the resolved form-type. Form-types without a template section only need
// the common fields.
func Validate(f Fields) error {
	if missing := missingFields(f, commonFields); len(missing) > 0 {
		return &ValidationError{Message: commonMessage, Missing: missing}
	}

	c, ok := categories[f.FormType()]
	if !ok {
		return nil
	}
	if missing := missingFields(f, c.required); len(missing) > 0 {
		return &ValidationError{Message: c.message, Missing: missing}
	}
	return nil
}

func missingFields(f Fields, keys []string) []string {
	var missing []string
	for _, k := range keys {
		if !f.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}
