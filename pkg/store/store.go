// Package store is the injected state container shared by entity forms. It
// keeps one Slice per collection (current entity, loaded listing, request
// flags, last error) and exposes thunk-style operations that drive an API
// and record their outcome in the slice. Collections loaded by one form are
// visible to every other form holding the same Store.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/entity"
)

// Slice is the state held for one collection. Values returned by the Store
// are copies.
type Slice struct {
	Entity   entity.Entity
	Entities []entity.Entity
	// Loading tracks the entity fetch, ListLoading the listing fetch.
	Loading       bool
	ListLoading   bool
	Updating      bool
	UpdateSuccess bool
	// Loaded is true once a listing fetch succeeded.
	Loaded       bool
	ErrorMessage string
}

func (s *Slice) clone() Slice {
	out := *s
	out.Entity = s.Entity.Clone()
	if s.Entities != nil {
		out.Entities = make([]entity.Entity, len(s.Entities))
		for i, e := range s.Entities {
			out.Entities[i] = e.Clone()
		}
	}
	return out
}

// Listener observes slice changes. It is called without the store lock held.
type Listener func(collection string, slice Slice)

// Store holds per-collection state and drives the API.
type Store struct {
	api      API
	notifier Notifier
	logger   *zap.Logger

	mu        sync.RWMutex
	slices    map[string]*Slice
	listeners map[int]Listener
	nextID    int
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier routes success and failure messages to n.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Store over api.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:       api,
		notifier:  nopNotifier{},
		logger:    zap.NewNop(),
		slices:    make(map[string]*Slice),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Slice returns a copy of the collection's state.
func (s *Store) Slice(collection string) Slice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if slice, ok := s.slices[collection]; ok {
		return slice.clone()
	}
	return Slice{}
}

// Entities returns a copy of the most recently loaded listing and whether a
// listing was ever loaded.
func (s *Store) Entities(collection string) ([]entity.Entity, bool) {
	slice := s.Slice(collection)
	return slice.Entities, slice.Loaded
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Reset clears the entity and request flags of a collection, keeping the
// loaded listing.
func (s *Store) Reset(collection string) {
	s.update(collection, func(slice *Slice) {
		slice.Entity = entity.Entity{}
		slice.Loading = false
		slice.Updating = false
		slice.UpdateSuccess = false
		slice.ErrorMessage = ""
	})
}

// GetEntity fetches one entity into the slice.
func (s *Store) GetEntity(ctx context.Context, collection, id string) (entity.Entity, error) {
	s.update(collection, func(slice *Slice) {
		slice.Loading = true
		slice.ErrorMessage = ""
	})

	result, err := s.api.FetchEntity(ctx, collection, id)
	if err != nil {
		s.fail(collection, "fetch entity", err, func(slice *Slice) { slice.Loading = false })
		return nil, err
	}

	s.update(collection, func(slice *Slice) {
		slice.Loading = false
		slice.Entity = result.Clone()
	})
	return result, nil
}

// GetEntities fetches a listing into the slice.
func (s *Store) GetEntities(ctx context.Context, collection string, page PageParams) ([]entity.Entity, error) {
	s.update(collection, func(slice *Slice) {
		slice.ListLoading = true
		slice.ErrorMessage = ""
	})

	list, err := s.api.FetchCollection(ctx, collection, page)
	if err != nil {
		s.fail(collection, "fetch collection", err, func(slice *Slice) { slice.ListLoading = false })
		return nil, err
	}

	s.update(collection, func(slice *Slice) {
		slice.ListLoading = false
		slice.Loaded = true
		slice.Entities = make([]entity.Entity, len(list))
		for i, e := range list {
			slice.Entities[i] = e.Clone()
		}
	})
	return list, nil
}

// CreateEntity persists a new entity.
func (s *Store) CreateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	return s.save(ctx, collection, e, true)
}

// UpdateEntity persists changes to an existing entity.
func (s *Store) UpdateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	return s.save(ctx, collection, e, false)
}

func (s *Store) save(ctx context.Context, collection string, e entity.Entity, create bool) (entity.Entity, error) {
	s.update(collection, func(slice *Slice) {
		slice.Updating = true
		slice.UpdateSuccess = false
		slice.ErrorMessage = ""
	})

	var (
		result entity.Entity
		err    error
		op     = "update entity"
	)
	if create {
		op = "create entity"
		result, err = s.api.CreateEntity(ctx, collection, e)
	} else {
		result, err = s.api.UpdateEntity(ctx, collection, e)
	}
	if err != nil {
		s.fail(collection, op, err, func(slice *Slice) { slice.Updating = false })
		return nil, err
	}

	s.update(collection, func(slice *Slice) {
		slice.Updating = false
		slice.UpdateSuccess = true
		slice.Entity = result.Clone()
	})

	if create {
		s.notifier.Success(fmt.Sprintf("A new %s is created with identifier %s", collection, result.ID()))
	} else {
		s.notifier.Success(fmt.Sprintf("A %s is updated with identifier %s", collection, result.ID()))
	}
	return result, nil
}

func (s *Store) fail(collection, op string, err error, mutate func(*Slice)) {
	s.logger.Warn("store operation failed",
		zap.String("collection", collection),
		zap.String("operation", op),
		zap.Error(err),
	)
	s.update(collection, func(slice *Slice) {
		mutate(slice)
		slice.ErrorMessage = err.Error()
	})
	s.notifier.Failure(err.Error())
}

func (s *Store) update(collection string, mutate func(*Slice)) {
	s.mu.Lock()
	slice, ok := s.slices[collection]
	if !ok {
		slice = &Slice{}
		s.slices[collection] = slice
	}
	mutate(slice)
	snapshot := slice.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(collection, snapshot)
	}
}
