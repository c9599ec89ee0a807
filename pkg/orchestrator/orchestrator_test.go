package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/orchestrator"
	"github.com/goliatone/go-entityform/pkg/renderers"
	"github.com/goliatone/go-entityform/pkg/store"
	"github.com/goliatone/go-entityform/pkg/testsupport"
)

func newOrchestrator(t *testing.T, opts ...orchestrator.Option) (*orchestrator.Orchestrator, *testsupport.RecordingAPI) {
	t.Helper()
	reg, err := model.NewRegistry(testsupport.AcaoForm(t))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	api := testsupport.NewRecordingAPI(testsupport.NewAcaoAPI())
	base := []orchestrator.Option{
		orchestrator.WithCatalog(reg),
		orchestrator.WithStore(store.New(api)),
	}
	o, err := orchestrator.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o, api
}

func TestNewRequiresCatalogAndStore(t *testing.T) {
	if _, err := orchestrator.New(); err == nil {
		t.Fatalf("expected missing catalog error")
	}
	reg, _ := model.NewRegistry()
	if _, err := orchestrator.New(orchestrator.WithCatalog(reg)); err == nil {
		t.Fatalf("expected missing store error")
	}
}

func TestGenerateHTMLForExistingEntity(t *testing.T) {
	o, api := newOrchestrator(t)

	out, err := o.Generate(context.Background(), orchestrator.Request{Entity: "acao", ID: "42"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `data-mode="edit(42)"`) || !strings.Contains(html, `<option value="7" selected>7</option>`) {
		t.Fatalf("unexpected html:\n%s", html)
	}
	if got := len(api.Calls("FetchEntity")); got != 1 {
		t.Fatalf("expected one entity fetch, got %d", got)
	}
	if diff := cmp.Diff([]string{"html", "json"}, o.Renderers()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateRendersUnavailableEntity(t *testing.T) {
	o, api := newOrchestrator(t)
	api.FailEntity(errors.New("not found"))

	out, err := o.Generate(context.Background(), orchestrator.Request{Entity: "acao", ID: "99", Renderer: "json"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `"loading": true`) || !strings.Contains(string(out), `"entityError"`) {
		t.Fatalf("unexpected json:\n%s", out)
	}
}

func TestGenerateErrors(t *testing.T) {
	o, _ := newOrchestrator(t)
	ctx := context.Background()

	if _, err := o.Generate(ctx, orchestrator.Request{Entity: "pedido"}); !errors.Is(err, orchestrator.ErrUnknownForm) {
		t.Fatalf("expected ErrUnknownForm, got %v", err)
	}
	if _, err := o.Generate(ctx, orchestrator.Request{Entity: "acao", Renderer: "pdf"}); !errors.Is(err, renderers.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestOpenCreateMode(t *testing.T) {
	o, api := newOrchestrator(t, orchestrator.WithDefaultRenderer("json"))

	s, err := o.Open(context.Background(), orchestrator.Request{Entity: "acao"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Unmount()
	if !s.IsNew() || !s.Snapshot().Ready {
		t.Fatalf("expected a ready create form, got %+v", s.Snapshot())
	}
	if got := len(api.Calls("FetchEntity")); got != 0 {
		t.Fatalf("create mode must not fetch the entity, got %d", got)
	}
}

func TestLoadCatalogSources(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	formsDir := filepath.Join(dir, "forms")
	if err := os.MkdirAll(formsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	formsFile := filepath.Join(formsDir, "acao.yaml")
	if err := os.WriteFile(formsFile, testsupport.MustReadSchema(t, "acao.yaml"), 0o644); err != nil {
		t.Fatalf("write forms: %v", err)
	}
	specFile := filepath.Join(dir, "api.yaml")
	if err := os.WriteFile(specFile, testsupport.MustReadOpenAPI(t, "acao.yaml"), 0o644); err != nil {
		t.Fatalf("write openapi: %v", err)
	}

	cases := []struct {
		location string
		want     []string
	}{
		{formsDir, []string{"acao"}},
		{formsFile, []string{"acao"}},
		{specFile, []string{"acao", "cadastro-doacao", "solicitacao"}},
	}
	for _, tc := range cases {
		catalog, err := orchestrator.LoadCatalog(ctx, tc.location)
		if err != nil {
			t.Fatalf("load %s: %v", tc.location, err)
		}
		if diff := cmp.Diff(tc.want, catalog.Names()); diff != "" {
			t.Fatalf("%s names mismatch (-want +got):\n%s", tc.location, diff)
		}
	}

	if _, err := orchestrator.LoadCatalog(ctx, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
