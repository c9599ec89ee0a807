package fielderrors_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityform/pkg/fielderrors"
	"github.com/goliatone/go-entityform/pkg/model"
)

func acaoForm() model.FormSpec {
	return model.FormSpec{
		Entity:     "acao",
		Collection: "acaos",
		Fields: []model.FieldSpec{
			{Name: "observacoes", Kind: model.KindText},
			{Name: "dataCriacao", Kind: model.KindDateTime},
			{Name: "data", Kind: model.KindText},
			{Name: "cadastroDoacao", Kind: model.KindReference, Reference: &model.Reference{Collection: "cadastro-doacaos"}},
		},
	}
}

func TestMapServerPaths(t *testing.T) {
	payload := map[string][]string{
		"observacoes":             {"size must be between 0 and 255", " size must be between 0 and 255 "},
		"acaoDTO.dataCriacao":     {"must not be null"},
		"/body/cadastroDoacao/id": {"does not exist"},
		"data":                    {"invalid"},
		"non_field_errors":        {"Form level error"},
		"request/unknown-field":   {"Should fall back to form errors"},
		"":                        {"Unscoped form error"},
		"acao":                    {"   "},
	}

	mapped := fielderrors.Map(acaoForm(), payload)

	wantFields := map[string][]string{
		"observacoes":    {"size must be between 0 and 255"},
		"dataCriacao":    {"must not be null"},
		"cadastroDoacao": {"does not exist"},
		"data":           {"invalid"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	got := append([]string(nil), mapped.Form...)
	sort.Strings(got)
	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, got); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveIndexedPaths(t *testing.T) {
	cases := map[string]string{
		"acao[0].observacoes":     "observacoes",
		"#/payload/0/dataCriacao": "dataCriacao",
		"$.acao.observacoes":      "observacoes",
	}
	for path, want := range cases {
		got, ok := fielderrors.Resolve(acaoForm(), path)
		if !ok || got != want {
			t.Fatalf("Resolve(%q) = %q, %v; want %q", path, got, ok, want)
		}
	}
	if _, ok := fielderrors.Resolve(acaoForm(), "form"); ok {
		t.Fatalf("form key should not resolve to a field")
	}
}

func TestMapEmpty(t *testing.T) {
	mapped := fielderrors.Map(model.FormSpec{}, nil)
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", mapped)
	}
}

func TestMerge(t *testing.T) {
	merged := fielderrors.Merge([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
}
