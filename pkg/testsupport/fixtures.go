package testsupport

import (
	"bytes"
	"context"
	"embed"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/store/memory"
)

// Collections used by the Acao fixture.
const (
	AcaoCollection           = "acaos"
	CadastroDoacaoCollection = "cadastro-doacaos"
	SolicitacaoCollection    = "solicitacaos"
	CadastroUserCollection   = "cadastro-users"
)

//go:embed schemas/*
var schemas embed.FS

//go:embed openapi/*
var openapiDocs embed.FS

// Schemas exposes the embedded schema fixtures.
func Schemas() embed.FS {
	return schemas
}

// AcaoForm returns the Acao form description parsed from the embedded YAML
// fixture.
func AcaoForm(t testing.TB) model.FormSpec {
	t.Helper()

	reg, err := model.LoadFS(schemas)
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	form, ok := reg.Form("acao")
	if !ok {
		t.Fatalf("acao form missing from fixtures")
	}
	return form
}

// MustReadSchema returns the raw bytes of an embedded schema fixture.
func MustReadSchema(t testing.TB, name string) []byte {
	t.Helper()
	data, err := schemas.ReadFile("schemas/" + name)
	if err != nil {
		t.Fatalf("read schema %s: %v", name, err)
	}
	return data
}

// MustReadOpenAPI returns the raw bytes of an embedded OpenAPI fixture.
func MustReadOpenAPI(t testing.TB, name string) []byte {
	t.Helper()
	data, err := openapiDocs.ReadFile("openapi/" + name)
	if err != nil {
		t.Fatalf("read openapi %s: %v", name, err)
	}
	return data
}

// FixedClock returns a clock pinned to 2024-03-05 14:30 UTC.
func FixedClock() func() time.Time {
	now := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

// SeedAcao fills api with the reference collections and one existing Acao
// (id 42, pendente) pointing at cadastro-doacao 7.
func SeedAcao(api *memory.API) {
	api.Seed(CadastroDoacaoCollection,
		entity.Entity{"id": int64(3), "descricao": "Cestas basicas"},
		entity.Entity{"id": int64(7), "descricao": "Roupas de inverno"},
	)
	api.Seed(SolicitacaoCollection,
		entity.Entity{"id": int64(11), "descricao": "Pedido escola"},
	)
	api.Seed(CadastroUserCollection,
		entity.Entity{"id": int64(5), "login": "maria"},
		entity.Entity{"id": int64(6), "login": "joao"},
	)
	api.Seed(AcaoCollection, entity.Entity{
		"id":                 int64(42),
		"dataCriacao":        "2024-01-15T10:30:00Z",
		"usuarioCriacaoAcao": "maria",
		"pendente":           true,
		"dataExecucaoAcao":   "2024-02-01",
		"ativa":              true,
		"observacoes":        "entregar na sede",
		"versao":             int64(3),
		"cadastroDoacao":     map[string]any{"id": int64(7), "descricao": "Roupas de inverno"},
	})
}

// NewAcaoAPI returns a seeded in-memory backend.
func NewAcaoAPI() *memory.API {
	api := memory.New()
	SeedAcao(api)
	return api
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a test context cancelled when the test ends.
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// CaptureOutput executes a render function that writes to an io.Writer and
// returns what it wrote.
func CaptureOutput(t *testing.T, render func(io.Writer) error) string {
	t.Helper()

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}
