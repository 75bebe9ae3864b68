package promptgen

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/history"
	"github.com/JaimeStill/portal/internal/webhooks"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

// ErrInvalidBody is returned when the request body is not a JSON object.
var ErrInvalidBody = errors.New("corpo da requisição inválido")

// Recorder persists generated prompts.
type Recorder interface {
	Record(ctx context.Context, cmd history.RecordCommand) (*history.Entry, error)
}

// Notifier hands a submission to the webhook registry without waiting for it.
type Notifier interface {
	Go(formType string, payload any) *webhooks.Task
}

// Gatekeeper applies a form's access decision to a handler.
type Gatekeeper interface {
	Gate(formID string, next http.HandlerFunc) http.HandlerFunc
}

// Response is the body of a successful generation.
type Response struct {
	Prompt string `json:"prompt"`
}

// Submission is the payload sent to the webhooks of the resolved form-type.
type Submission struct {
	FormData       Fields `json:"formData"`
	Prompt         string `json:"prompt"`
	Timestamp      string `json:"timestamp"`
	FormType       string `json:"formType"`
	TipoFormulario string `json:"tipoFormulario,omitempty"`
}

// Handler serves the prompt generation endpoint.
type Handler struct {
	recorder Recorder
	notifier Notifier
	gate     Gatekeeper
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler. A nil recorder skips history.
func NewHandler(recorder Recorder, notifier Notifier, gate Gatekeeper, logger *slog.Logger) *Handler {
	return &Handler{
		recorder: recorder,
		notifier: notifier,
		gate:     gate,
		logger:   logger.With("handler", "promptgen"),
		now:      time.Now,
	}
}

// Routes returns the route group definition for prompt generation.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/generate-prompt",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.gate.Gate(Passthrough, h.Generate)},
		},
	}
}

// Generate validates the submitted fields, renders the prompt, records it,
// and notifies the form-type's webhooks in the background.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var f Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil || f == nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	ResolveFormType(f)

	if err := Validate(f); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	prompt := Generate(f)
	formType := f.FormType()

	h.record(r.Context(), formType, prompt, f)

	h.notifier.Go(formType, Submission{
		FormData:       f,
		Prompt:         prompt,
		Timestamp:      h.now().UTC().Format(time.RFC3339),
		FormType:       formType,
		TipoFormulario: f.String("tipoFormulario"),
	})

	handlers.RespondJSON(w, http.StatusOK, Response{Prompt: prompt})
}

func (h *Handler) record(ctx context.Context, formType, prompt string, f Fields) {
	if h.recorder == nil {
		return
	}

	cmd := history.RecordCommand{
		FormType: formType,
		Prompt:   prompt,
		FormData: f,
	}
	if s := auth.FromContext(ctx); s != nil {
		userID := s.UserID
		cmd.UserID = &userID
	}

	if _, err := h.recorder.Record(ctx, cmd); err != nil {
		h.logger.Error("record prompt history failed", "form_type", formType, "error", err)
	}
}
