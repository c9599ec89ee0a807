package sqlstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/store"
	"github.com/goliatone/go-entityform/pkg/store/sqlstore"
)

func openTemp(t *testing.T) *sqlstore.API {
	t.Helper()
	api, err := sqlstore.Open(context.Background(), filepath.Join(t.TempDir(), "entities.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = api.Close()
	})
	return api
}

func TestCreateFetchUpdate(t *testing.T) {
	ctx := context.Background()
	api := openTemp(t)

	created, err := api.CreateEntity(ctx, "acaos", entity.Entity{
		"pendente":       true,
		"cadastroDoacao": map[string]any{"id": 7},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID() != "1" {
		t.Fatalf("created id = %q", created.ID())
	}

	fetched, err := api.FetchEntity(ctx, "acaos", "1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !fetched.Bool("pendente") || fetched.ReferenceID("cadastroDoacao") != "7" {
		t.Fatalf("unexpected entity: %v", fetched)
	}

	fetched["pendente"] = false
	if _, err := api.UpdateEntity(ctx, "acaos", fetched); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := api.FetchEntity(ctx, "acaos", "1")
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if again.Bool("pendente") {
		t.Fatalf("update was not persisted: %v", again)
	}
}

func TestMissingEntities(t *testing.T) {
	ctx := context.Background()
	api := openTemp(t)

	if _, err := api.FetchEntity(ctx, "acaos", "99"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("fetch missing: %v", err)
	}
	if _, err := api.UpdateEntity(ctx, "acaos", entity.Entity{"id": "99"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestFetchCollectionPages(t *testing.T) {
	ctx := context.Background()
	api := openTemp(t)
	for i := 0; i < 5; i++ {
		if _, err := api.CreateEntity(ctx, "users", entity.Entity{"n": i}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, err := api.FetchCollection(ctx, "users", store.PageParams{Page: 1, Size: 2, Sort: "id,desc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].ID() != "3" || page[1].ID() != "2" {
		t.Fatalf("unexpected page: %v", page)
	}

	empty, err := api.FetchCollection(ctx, "nothing", store.PageParams{})
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty collection = %v, %v", empty, err)
	}
}
