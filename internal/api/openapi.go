package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/portal/internal/config"
	"github.com/JaimeStill/portal/internal/infrastructure"
	"github.com/JaimeStill/portal/pkg/openapi"
	"github.com/JaimeStill/portal/pkg/routes"
)

var pathParam = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

var errorBody = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"error": {Type: "string"},
	},
}

// documented carries hand-written operations for the public submission
// endpoints. Every other route receives a generated operation.
var documented = map[string]*openapi.Operation{
	"POST /generate-prompt": {
		Summary:     "Generate an assistant prompt",
		Description: "Validates the form fields, renders the prompt, records history and notifies the form webhooks in the background.",
		RequestBody: openapi.RequestBodyJSON("PromptFields", true),
		Responses: map[int]*openapi.Response{
			200: jsonResponse("Generated prompt", openapi.SchemaRef("PromptResponse")),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
		},
	},
	"POST /sac-webhook": {
		Summary:     "Submit a customer service ticket",
		Description: "Forwards the ticket body verbatim to the customer service webhooks.",
		RequestBody: &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "object"}},
			},
		},
		Responses: map[int]*openapi.Response{
			200: jsonResponse("Ticket forwarded", openapi.SchemaRef("SACResponse")),
			400: openapi.ResponseRef("BadRequest"),
			500: jsonResponse("Upstream failure", errorBody),
		},
	},
	"GET /clickup-proxy": clickupOperation("Read from the task API"),
	"POST /clickup-proxy": func() *openapi.Operation {
		op := clickupOperation("Write to the task API")
		op.RequestBody = &openapi.RequestBody{
			Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "object"}},
			},
		}
		return op
	}(),
	"GET /forms/{id}/access": {
		Summary: "Resolve form access for the current session",
		Responses: map[int]*openapi.Response{
			200: jsonResponse("Access decision", openapi.SchemaRef("AccessDecision")),
		},
	},
}

var schemas = map[string]*openapi.Schema{
	"PromptFields": {
		Type:        "object",
		Description: "Flat map of form fields keyed by field name.",
		Required: []string{
			"formType", "nomeEmpresa", "tempoMercado", "localizacao",
			"nomeAssistente", "generoBot", "regrasCriticas",
			"proibicoesAbsolutas", "exemplosConversas",
		},
		Properties: map[string]*openapi.Schema{
			"formType":       {Type: "string", Enum: []any{"automoveis", "energia-solar", "outros", "formulario-de-criacao-de-prompt"}},
			"tipoFormulario": {Type: "string", Enum: []any{"formCarros", "formEnergiaSolar", "formOutros"}},
			"generoBot":      {Type: "string", Enum: []any{"feminino", "masculino", "neutro"}},
		},
	},
	"PromptResponse": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"prompt": {Type: "string"},
		},
	},
	"SACResponse": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"success":   {Type: "boolean"},
			"simulated": {Type: "boolean"},
		},
	},
	"AccessDecision": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"formId":          {Type: "string"},
			"isPublic":        {Type: "boolean"},
			"requiresAuth":    {Type: "boolean"},
			"isEnabled":       {Type: "boolean"},
			"hasAccess":       {Type: "boolean"},
			"formName":        {Type: "string"},
			"formDescription": {Type: "string"},
			"fallback":        {Type: "boolean"},
		},
	},
}

// BuildSpec produces the OpenAPI document for every route in groups.
func BuildSpec(cfg *config.Config, groups []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(schemas)

	routes.Walk(groups, func(path string, route routes.Route) {
		if path == "" {
			path = "/"
		}
		item, ok := spec.Paths[path]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[path] = item
		}

		op, ok := documented[route.Method+" "+path]
		if !ok {
			op = generated(route.Method, path)
		}
		item.Set(route.Method, op)
	})

	return spec
}

func generated(method, path string) *openapi.Operation {
	op := &openapi.Operation{
		Summary: method + " " + path,
		Tags:    []string{tag(path)},
		Responses: map[int]*openapi.Response{
			http.StatusOK: {Description: "OK"},
		},
	}

	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		op.Parameters = append(op.Parameters, &openapi.Parameter{
			Name:     m[1],
			In:       "path",
			Required: true,
			Schema:   &openapi.Schema{Type: "string"},
		})
	}

	if method == "POST" || method == "PUT" {
		op.Responses[http.StatusBadRequest] = openapi.ResponseRef("BadRequest")
	}
	if pathParam.MatchString(path) {
		op.Responses[http.StatusNotFound] = openapi.ResponseRef("NotFound")
	}

	return op
}

func tag(path string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "" {
		return "root"
	}
	return first
}

func clickupOperation(summary string) *openapi.Operation {
	return &openapi.Operation{
		Summary: summary,
		Tags:    []string{"clickup-proxy"},
		Parameters: []*openapi.Parameter{
			{
				Name:        "endpoint",
				In:          "query",
				Required:    true,
				Description: "Path relative to the task API base URL",
				Schema:      &openapi.Schema{Type: "string"},
			},
		},
		Responses: map[int]*openapi.Response{
			200: {Description: "Upstream response relayed verbatim"},
			400: openapi.ResponseRef("BadRequest"),
			503: jsonResponse("Task API not configured", errorBody),
		},
	}
}

func jsonResponse(desc string, schema *openapi.Schema) *openapi.Response {
	return &openapi.Response{
		Description: desc,
		Content: map[string]*openapi.MediaType{
			"application/json": {Schema: schema},
		},
	}
}

// NewSpec assembles the domain without serving it and returns the OpenAPI
// document for the resulting routes.
func NewSpec(cfg *config.Config, infra *infrastructure.Infrastructure) (*openapi.Spec, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	return BuildSpec(cfg, groups(domain, cfg, runtime)), nil
}
