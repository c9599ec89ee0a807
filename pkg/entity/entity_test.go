package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityform/pkg/entity"
)

func TestIDStringNormalisesWireValues(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  42 ", "42"},
		{float64(7), "7"},
		{json.Number("9"), "9"},
		{int64(11), "11"},
		{1.5, "1.5"},
	}
	for _, tc := range cases {
		if got := entity.IDString(tc.in); got != tc.want {
			t.Errorf("IDString(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReferenceIDFromEmbeddedObject(t *testing.T) {
	var e entity.Entity
	if err := json.Unmarshal([]byte(`{"id":42,"cadastroDoacao":{"id":7},"solicitacao":null,"cadastroUser":"3"}`), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := map[string]string{
		"cadastroDoacao": e.ReferenceID("cadastroDoacao"),
		"solicitacao":    e.ReferenceID("solicitacao"),
		"cadastroUser":   e.ReferenceID("cadastroUser"),
	}
	want := map[string]string{"cadastroDoacao": "7", "solicitacao": "", "cadastroUser": "3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reference ids mismatch (-want +got):\n%s", diff)
	}
	if e.IsNew() {
		t.Fatalf("entity with id should not be new")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := entity.Entity{"id": "1", "ref": map[string]any{"id": "2"}}
	clone := orig.Clone()
	clone["ref"].(map[string]any)["id"] = "3"
	if orig.ReferenceID("ref") != "2" {
		t.Fatalf("clone mutated the original")
	}
}

func TestFind(t *testing.T) {
	list := []entity.Entity{{"id": float64(1)}, {"id": float64(2)}}
	if _, ok := entity.Find(list, "2"); !ok {
		t.Fatalf("expected to find id 2")
	}
	if _, ok := entity.Find(list, ""); ok {
		t.Fatalf("empty id must not match")
	}
	if _, ok := entity.Find(nil, "1"); ok {
		t.Fatalf("nil list must not match")
	}
}
