package openapi_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityform/pkg/openapi"
)

const lintDoc = `openapi: 3.0.3
info:
  title: lint
  version: 0.0.1
paths: {}
components:
  schemas:
    Acao:
      type: object
      x-entityform-order: [id, missing]
      properties:
        id:
          type: integer
        dataCriacao:
          type: string
          format: date-time
          x-entityform:
            defaultNow: "yes"
            widget: calendar
        cadastroUser:
          type: object
          x-relationships:
            type: belongsTo
            target: cadastro-users
            through: membership
        observacoes:
          type: string
          x-entityform:
            label: Notes
`

func TestLintReportsUnsupportedExtensions(t *testing.T) {
	doc, err := openapi.Parse(context.Background(), openapi.SourceFromFS("lint.yaml"), []byte(lintDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var got []string
	for _, v := range doc.Lint() {
		got = append(got, v.String())
	}
	want := []string{
		`Acao -> x-entityform-order names unknown property "missing"`,
		`Acao > cadastroUser -> unsupported x-relationships key "through"`,
		`Acao > dataCriacao -> unsupported x-entityform key "widget" (supported: defaultNow, displayField, format, label, placeholder)`,
		`Acao > dataCriacao -> value for "defaultNow" must be a boolean (got string)`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestLintAcceptsFixture(t *testing.T) {
	doc := parseAcao(t)
	if violations := doc.Lint(); len(violations) != 0 {
		t.Fatalf("expected clean fixture, got %v", violations)
	}
}
