// Package memory provides an in-process store.API. Identifiers are assigned
// sequentially per collection and returned as integers, like a JSON backend
// with numeric keys would.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/store"
)

// API is a concurrency-safe in-memory backend.
type API struct {
	mu          sync.RWMutex
	collections map[string]map[string]entity.Entity
	sequences   map[string]int64
}

var _ store.API = (*API)(nil)

// New constructs an empty backend.
func New() *API {
	return &API{
		collections: make(map[string]map[string]entity.Entity),
		sequences:   make(map[string]int64),
	}
}

// Seed inserts entities as-is; entities without an id get the next one.
func (a *API) Seed(collection string, items ...entity.Entity) []entity.Entity {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]entity.Entity, 0, len(items))
	for _, item := range items {
		stored := item.Clone()
		if stored == nil {
			stored = entity.Entity{}
		}
		if stored.IsNew() {
			stored[entity.IDField] = a.nextIDLocked(collection)
		} else if n, err := strconv.ParseInt(stored.ID(), 10, 64); err == nil && n > a.sequences[collection] {
			a.sequences[collection] = n
		}
		a.bucketLocked(collection)[stored.ID()] = stored
		out = append(out, stored.Clone())
	}
	return out
}

// FetchEntity implements store.API.
func (a *API) FetchEntity(ctx context.Context, collection, id string) (entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	item, ok := a.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("memory: %s/%s: %w", collection, id, store.ErrNotFound)
	}
	return item.Clone(), nil
}

// CreateEntity implements store.API.
func (a *API) CreateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !e.IsNew() {
		return nil, fmt.Errorf("memory: a new %s cannot already have an id", collection)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	stored := e.Clone()
	stored[entity.IDField] = a.nextIDLocked(collection)
	a.bucketLocked(collection)[stored.ID()] = stored
	return stored.Clone(), nil
}

// UpdateEntity implements store.API.
func (a *API) UpdateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := e.ID()
	if id == "" {
		return nil, fmt.Errorf("memory: update %s: id is required", collection)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("memory: %s/%s: %w", collection, id, store.ErrNotFound)
	}
	stored := e.Clone()
	stored[entity.IDField] = existing[entity.IDField]
	a.collections[collection][id] = stored
	return stored.Clone(), nil
}

// FetchCollection implements store.API.
func (a *API) FetchCollection(ctx context.Context, collection string, page store.PageParams) ([]entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	items := make([]entity.Entity, 0, len(a.collections[collection]))
	for _, item := range a.collections[collection] {
		items = append(items, item.Clone())
	}
	a.mu.RUnlock()

	field, desc := page.SortField()
	sort.SliceStable(items, func(i, j int) bool {
		less := compare(items[i][field], items[j][field])
		if desc {
			return less > 0
		}
		return less < 0
	})

	if page.Size <= 0 {
		return items, nil
	}
	start := page.Page * page.Size
	if start >= len(items) {
		return []entity.Entity{}, nil
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func (a *API) nextIDLocked(collection string) int64 {
	a.sequences[collection]++
	return a.sequences[collection]
}

func (a *API) bucketLocked(collection string) map[string]entity.Entity {
	bucket, ok := a.collections[collection]
	if !ok {
		bucket = make(map[string]entity.Entity)
		a.collections[collection] = bucket
	}
	return bucket
}

func compare(left, right any) int {
	ls, rs := entity.IDString(left), entity.IDString(right)
	ln, lerr := strconv.ParseFloat(ls, 64)
	rn, rerr := strconv.ParseFloat(rs, 64)
	if lerr == nil && rerr == nil {
		switch {
		case ln < rn:
			return -1
		case ln > rn:
			return 1
		default:
			return 0
		}
	}
	switch {
	case ls < rs:
		return -1
	case ls > rs:
		return 1
	default:
		return 0
	}
}
