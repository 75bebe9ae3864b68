package webhooks

import (
	"maps"
	"slices"
)

// Form-types with compiled-in endpoints.
const (
	FormTypeAutomoveis   = "automoveis"
	FormTypeEnergiaSolar = "energia-solar"
	FormTypeOutros       = "outros"
	FormTypePrompt       = "formulario-de-criacao-de-prompt"
	FormTypeSAC          = "sac"
)

// Endpoint is a single outbound webhook target.
type Endpoint struct {
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"`
	Enabled     bool              `json:"enabled"`
	Description string            `json:"description"`
}

var defaultEndpoints = map[string][]Endpoint{
	FormTypeAutomoveis: {{
		URL:         "https://example.com/webhook/automoveis",
		Headers:     map[string]string{"Authorization": "Bearer YOUR_API_KEY"},
		Enabled:     false,
		Description: "Webhook for automobile forms - sends data to CRM system",
	}},
	FormTypeEnergiaSolar: {{
		URL:         "https://example.com/webhook/energia-solar",
		Headers:     map[string]string{"Authorization": "Bearer YOUR_API_KEY"},
		Enabled:     false,
		Description: "Webhook for solar energy forms - sends data to lead management system",
	}},
	FormTypeOutros: {{
		URL:         "https://example.com/webhook/outros",
		Headers:     map[string]string{"Authorization": "Bearer YOUR_API_KEY"},
		Enabled:     false,
		Description: "Webhook for other service forms - sends data to general CRM",
	}},
	FormTypePrompt: {{
		URL:         "https://autogrowth.cabonesolucoes.com.br/webhook/2e418174-0f99-403f-9539-2d1dacbceaa2-formulario-de-criacao-de-prompt-automatizado",
		Enabled:     true,
		Description: "Webhook for prompt creation form - processes form data with n8n workflow",
	}},
	FormTypeSAC: {{
		URL:         "https://autogrowth.cabonesolucoes.com.br/webhook/b1551055-3ebb-4a94-8aea-89488772d8ff-unico",
		Enabled:     true,
		Description: "Webhook for customer service tickets - single n8n intake",
	}},
}

// Registry maps form-types to their ordered endpoints. It is read-only after construction.
type Registry struct {
	endpoints map[string][]Endpoint
}

// NewRegistry builds a registry from the compiled-in defaults with configured
// form-types replacing their default lists.
func NewRegistry(overrides map[string][]EndpointConfig) *Registry {
	endpoints := make(map[string][]Endpoint, len(defaultEndpoints)+len(overrides))
	for formType, list := range defaultEndpoints {
		endpoints[formType] = cloneEndpoints(list)
	}
	for formType, list := range overrides {
		converted := make([]Endpoint, 0, len(list))
		for _, ep := range list {
			converted = append(converted, Endpoint{
				URL:         ep.URL,
				Headers:     maps.Clone(ep.Headers),
				Enabled:     ep.Enabled,
				Description: ep.Description,
			})
		}
		endpoints[formType] = converted
	}
	return &Registry{endpoints: endpoints}
}

// Endpoints returns a copy of the endpoints registered for formType in registry order.
// Unknown form-types yield nil.
func (r *Registry) Endpoints(formType string) []Endpoint {
	return cloneEndpoints(r.endpoints[formType])
}

// Enabled returns the enabled endpoints for formType in registry order.
func (r *Registry) Enabled(formType string) []Endpoint {
	var enabled []Endpoint
	for _, ep := range r.endpoints[formType] {
		if ep.Enabled {
			enabled = append(enabled, ep)
		}
	}
	return enabled
}

// FormTypes returns the registered form-types in sorted order.
func (r *Registry) FormTypes() []string {
	return slices.Sorted(maps.Keys(r.endpoints))
}

// All returns a copy of the full registry.
func (r *Registry) All() map[string][]Endpoint {
	all := make(map[string][]Endpoint, len(r.endpoints))
	for formType, list := range r.endpoints {
		all[formType] = cloneEndpoints(list)
	}
	return all
}

func cloneEndpoints(list []Endpoint) []Endpoint {
	if list == nil {
		return nil
	}
	out := make([]Endpoint, len(list))
	for i, ep := range list {
		out[i] = ep
		out[i].Headers = maps.Clone(ep.Headers)
	}
	return out
}
