package renderers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/renderers"
	"github.com/goliatone/go-entityform/pkg/renderers/html"
	"github.com/goliatone/go-entityform/pkg/testsupport"
	"github.com/goliatone/go-entityform/pkg/validation"
)

var _ renderers.Renderer = (*html.Renderer)(nil)

func TestRegistryLookup(t *testing.T) {
	htmlRenderer, err := html.New()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	reg, err := renderers.NewRegistry(htmlRenderer, renderers.NewJSONRenderer(""))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	if diff := cmp.Diff([]string{"html", "json"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	got, err := reg.Get("html")
	if err != nil || got.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected html lookup %v %v", got, err)
	}
	if _, err := reg.Get("vue"); !errors.Is(err, renderers.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if err := reg.Register(renderers.NewJSONRenderer("  ")); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if got, err := reg.Get("application/json; charset=utf-8"); err != nil || got.Name() != "json" {
		t.Fatalf("unexpected media type lookup %v %v", got, err)
	}
}

func TestRegistryNegotiate(t *testing.T) {
	htmlRenderer, err := html.New()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	reg, err := renderers.NewRegistry(htmlRenderer, renderers.NewJSONRenderer(""))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	cases := map[string]string{
		"application/json":                  "json",
		"text/plain, text/html;q=0.9":       "html",
		"application/xhtml+xml, */*;q=0.8":  "html",
		"":                                  "html",
		"application/json, text/html;q=0.9": "json",
	}
	for accept, want := range cases {
		got, err := reg.Negotiate(accept, "html")
		if err != nil || got.Name() != want {
			t.Fatalf("Negotiate(%q) = %v, %v; want %s", accept, got, err, want)
		}
	}
	if _, err := reg.Negotiate("text/csv", "pdf"); !errors.Is(err, renderers.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestJSONRendererDocument(t *testing.T) {
	form := testsupport.AcaoForm(t)
	snap := formsync.Snapshot{
		Mode:   formsync.Edit("42"),
		Ready:  true,
		Draft:  formsync.Draft{"id": "42", "cadastroDoacao": "7"},
		Errors: validation.Errors{"observacoes": {"This field is required."}},
		Choices: map[string][]formsync.Choice{
			"cadastroDoacao": {{Value: "7", Label: "Roupas"}},
		},
		CollectionErrs: map[string]error{"solicitacaos": errors.New("timeout")},
		SubmitErr:      &formsync.SubmitError{Err: errors.New("boom"), Form: []string{" Server error ", "Server error"}},
	}

	out, err := renderers.NewJSONRenderer("").Render(context.Background(), form, snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := map[string]any{
		"entity":     "acao",
		"mode":       "edit(42)",
		"isNew":      false,
		"loading":    false,
		"updating":   false,
		"saved":      false,
		"values":     map[string]any{"id": "42", "cadastroDoacao": "7"},
		"errors":     map[string]any{"observacoes": []any{"This field is required."}},
		"formErrors": []any{"Server error"},
		"choices": map[string]any{
			"cadastroDoacao": []any{map[string]any{"value": "7", "label": "Roupas"}},
		},
		"unavailable": map[string]any{"solicitacaos": "timeout"},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}
