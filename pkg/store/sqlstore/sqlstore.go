// Package sqlstore implements store.API on SQLite. Entities are stored as
// JSON documents keyed by (collection, id) so any form schema can be
// persisted without migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	collection TEXT NOT NULL,
	id         INTEGER NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
)`

// API persists entities in a SQLite database.
type API struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ store.API = (*API)(nil)

// Option configures the API.
type Option func(*API)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Open opens (or creates) the database at dsn and ensures the schema exists.
// Use "file::memory:?cache=shared" for an ephemeral database.
func Open(ctx context.Context, dsn string, opts ...Option) (*API, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	api := &API{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: create schema: %w", err)
	}
	return api, nil
}

// Close releases the database handle.
func (a *API) Close() error {
	return a.db.Close()
}

// FetchEntity implements store.API.
func (a *API) FetchEntity(ctx context.Context, collection, id string) (entity.Entity, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var body string
	err = a.db.QueryRowContext(ctx,
		`SELECT body FROM entities WHERE collection = ? AND id = ?`, collection, key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlstore: %s/%s: %w", collection, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: fetch %s/%s: %w", collection, id, err)
	}
	return decode(key, body)
}

// CreateEntity implements store.API.
func (a *API) CreateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	if !e.IsNew() {
		return nil, fmt.Errorf("sqlstore: a new %s cannot already have an id", collection)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM entities WHERE collection = ?`, collection,
	).Scan(&next); err != nil {
		return nil, fmt.Errorf("sqlstore: next id: %w", err)
	}

	body, err := encode(e)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entities (collection, id, body) VALUES (?, ?, ?)`, collection, next, body,
	); err != nil {
		return nil, fmt.Errorf("sqlstore: insert %s: %w", collection, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlstore: commit: %w", err)
	}

	a.logger.Debug("entity created", zap.String("collection", collection), zap.Int64("id", next))
	return decode(next, body)
}

// UpdateEntity implements store.API.
func (a *API) UpdateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	key, err := parseID(e.ID())
	if err != nil {
		return nil, err
	}
	body, err := encode(e)
	if err != nil {
		return nil, err
	}
	res, err := a.db.ExecContext(ctx,
		`UPDATE entities SET body = ? WHERE collection = ? AND id = ?`, body, collection, key,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: update %s/%d: %w", collection, key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("sqlstore: %s/%d: %w", collection, key, store.ErrNotFound)
	}
	return decode(key, body)
}

// FetchCollection implements store.API. Only sorting by id is pushed down to
// SQL; other sort fields are ignored.
func (a *API) FetchCollection(ctx context.Context, collection string, page store.PageParams) ([]entity.Entity, error) {
	_, desc := page.SortField()
	query := `SELECT id, body FROM entities WHERE collection = ? ORDER BY id ASC`
	if desc {
		query = `SELECT id, body FROM entities WHERE collection = ? ORDER BY id DESC`
	}
	args := []any{collection}
	if page.Size > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.Page*page.Size)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list %s: %w", collection, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []entity.Entity{}
	for rows.Next() {
		var (
			id   int64
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("sqlstore: scan %s: %w", collection, err)
		}
		item, err := decode(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: list %s: %w", collection, err)
	}
	return out, nil
}

func parseID(id string) (int64, error) {
	key, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: invalid id %q: %w", id, store.ErrNotFound)
	}
	return key, nil
}

func encode(e entity.Entity) (string, error) {
	body := e.Clone()
	delete(body, entity.IDField)
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("sqlstore: encode: %w", err)
	}
	return string(data), nil
}

func decode(id int64, body string) (entity.Entity, error) {
	var out entity.Entity
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("sqlstore: decode: %w", err)
	}
	if out == nil {
		out = entity.Entity{}
	}
	out[entity.IDField] = id
	return out, nil
}
