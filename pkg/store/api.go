package store

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-entityform/pkg/entity"
)

// ErrNotFound is returned by API implementations when an entity is missing.
var ErrNotFound = errors.New("store: entity not found")

// PageParams selects a page of a collection listing. A zero Size requests
// the whole collection.
type PageParams struct {
	Page int
	Size int
	// Sort uses the "field,direction" convention, e.g. "id,asc".
	Sort string
}

// SortField splits Sort into field and descending flag, defaulting to id asc.
func (p PageParams) SortField() (string, bool) {
	raw := strings.TrimSpace(p.Sort)
	if raw == "" {
		return entity.IDField, false
	}
	field, dir, _ := strings.Cut(raw, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		field = entity.IDField
	}
	return field, strings.EqualFold(strings.TrimSpace(dir), "desc")
}

// API is the remote persistence contract the store drives.
type API interface {
	FetchEntity(ctx context.Context, collection, id string) (entity.Entity, error)
	CreateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error)
	UpdateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error)
	FetchCollection(ctx context.Context, collection string, page PageParams) ([]entity.Entity, error)
}

// FieldErrorer is implemented by API errors that carry per-field messages
// (for example a problem+json body with fieldErrors).
type FieldErrorer interface {
	FieldErrors() map[string][]string
}

// Notifier receives out-of-band success and failure messages.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(string) {}
