package entityform_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-entityform"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/testsupport"
)

func TestGenerateHTMLCreateForm(t *testing.T) {
	reg, err := model.NewRegistry(testsupport.AcaoForm(t))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	out, err := entityform.GenerateHTML(context.Background(), reg, testsupport.NewAcaoAPI(), entityform.Request{Entity: "acao"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `<form id="acao-form"`) || !strings.Contains(string(out), `data-mode="create"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"templates/form.tmpl", "templates/field.tmpl"} {
		if _, err := fs.Stat(entityform.EmbeddedTemplates(), name); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
