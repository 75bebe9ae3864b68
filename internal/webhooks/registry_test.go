package webhooks_test

import (
	"slices"
	"testing"

	"github.com/JaimeStill/portal/internal/webhooks"
)

func TestDefaultRegistry(t *testing.T) {
	r := webhooks.NewRegistry(nil)

	want := []string{"automoveis", "energia-solar", "formulario-de-criacao-de-prompt", "outros", "sac"}
	if got := r.FormTypes(); !slices.Equal(got, want) {
		t.Errorf("FormTypes() = %v, want %v", got, want)
	}

	for _, formType := range []string{webhooks.FormTypeAutomoveis, webhooks.FormTypeEnergiaSolar, webhooks.FormTypeOutros} {
		if len(r.Enabled(formType)) != 0 {
			t.Errorf("%s enabled by default", formType)
		}
		if len(r.Endpoints(formType)) != 1 {
			t.Errorf("%s endpoints = %d, want 1", formType, len(r.Endpoints(formType)))
		}
	}

	for _, formType := range []string{webhooks.FormTypePrompt, webhooks.FormTypeSAC} {
		if len(r.Enabled(formType)) != 1 {
			t.Errorf("%s not enabled by default", formType)
		}
	}
}

func TestRegistryOverrides(t *testing.T) {
	r := webhooks.NewRegistry(map[string][]webhooks.EndpointConfig{
		webhooks.FormTypeAutomoveis: {
			{URL: "https://crm.example/a", Enabled: true},
			{URL: "https://crm.example/b", Enabled: false},
		},
		"custom": {{URL: "https://custom.example", Enabled: true}},
	})

	if got := r.Enabled(webhooks.FormTypeAutomoveis); len(got) != 1 || got[0].URL != "https://crm.example/a" {
		t.Errorf("automoveis enabled = %+v", got)
	}
	if len(r.Endpoints("custom")) != 1 {
		t.Error("custom form-type not registered")
	}
	if len(r.Enabled(webhooks.FormTypeSAC)) != 1 {
		t.Error("unlisted defaults must be kept")
	}
}

func TestRegistryReturnsCopies(t *testing.T) {
	r := webhooks.NewRegistry(nil)

	eps := r.Endpoints(webhooks.FormTypeAutomoveis)
	eps[0].Enabled = true
	eps[0].Headers["Authorization"] = "changed"

	fresh := r.Endpoints(webhooks.FormTypeAutomoveis)
	if fresh[0].Enabled || fresh[0].Headers["Authorization"] != "Bearer YOUR_API_KEY" {
		t.Errorf("registry mutated through returned slice: %+v", fresh[0])
	}
}

func TestConfigEnvOverridesURL(t *testing.T) {
	t.Setenv("TEST_SAC_URL", "https://n8n.example/sac")
	cfg := &webhooks.Config{}
	if err := cfg.Finalize(&webhooks.Env{SACURL: "TEST_SAC_URL"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	r := webhooks.NewRegistry(cfg.Endpoints)
	got := r.Enabled(webhooks.FormTypeSAC)
	if len(got) != 1 || got[0].URL != "https://n8n.example/sac" || got[0].Description == "" {
		t.Errorf("sac = %+v", got)
	}
}
