package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-entityform/pkg/testsupport"
)

func schemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "acao.yaml"), testsupport.MustReadSchema(t, "acao.yaml"), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp()
	a.stdout = &stdout
	a.stderr = &stderr
	a.api = testsupport.NewAcaoAPI()

	cmd := newRootCmd(a)
	cmd.SetArgs(append([]string{"--store", "memory", "--timezone", "UTC"}, args...))
	err := cmd.ExecuteContext(testsupport.Context(t))
	return stdout.String(), stderr.String(), err
}

func TestFieldsListsCatalog(t *testing.T) {
	dir := schemaDir(t)

	out, _, err := run(t, "--schema", dir, "fields")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if !strings.Contains(out, "ENTITY") || !strings.Contains(out, "acao") || !strings.Contains(out, "acaos") {
		t.Fatalf("unexpected listing:\n%s", out)
	}

	out, _, err = run(t, "--schema", dir, "fields", "acao")
	if err != nil {
		t.Fatalf("fields acao: %v", err)
	}
	for _, want := range []string{"dataCriacao", "datetime", "now", "readonly", "reference(cadastro-doacaos)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	if _, _, err := run(t, "--schema", dir, "fields", "missing"); err == nil {
		t.Fatalf("expected error for unknown form")
	}
}

func TestRenderExistingEntityAsJSON(t *testing.T) {
	dir := schemaDir(t)

	out, _, err := run(t, "--schema", dir, "render", "acao", "42", "--renderer", "json")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`"isNew": false`, `"observacoes": "entregar na sede"`, `"cadastroDoacao": "7"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderWritesOutputFile(t *testing.T) {
	dir := schemaDir(t)
	target := filepath.Join(t.TempDir(), "acao.html")

	_, stderr, err := run(t, "--schema", dir, "render", "acao", "--output", target)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stderr, "Form written to") {
		t.Fatalf("expected confirmation, got %q", stderr)
	}
	html, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(html), `id="acao-form"`) {
		t.Fatalf("unexpected html:\n%s", html)
	}
}

func TestLintOpenAPIDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, testsupport.MustReadOpenAPI(t, "acao.yaml"), 0o600); err != nil {
		t.Fatalf("write document: %v", err)
	}
	if _, _, err := run(t, "lint", path); err != nil {
		t.Fatalf("lint: %v", err)
	}
}

func TestRejectsUnknownBackend(t *testing.T) {
	if _, _, err := run(t, "--store", "redis", "fields"); err == nil {
		t.Fatalf("expected error for unknown store backend")
	}
}
