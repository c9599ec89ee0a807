// Package formsync mediates between a remote entity store and a local,
// editable form draft for both create and edit flows.
//
// A Synchronizer is built for one form instance with a Mode fixed at
// construction. Mount issues the entity fetch (edit) or state reset (create)
// together with one listing fetch per referenced collection; the fetches run
// concurrently and may complete in any order. Once the entity side settles the
// draft is populated and the form is ready for editing. Submit validates the
// draft, converts it back to wire values, resolves reference ids against the
// listings this instance loaded, merges the result over the previously loaded
// entity and dispatches exactly one create or update. A successful submit
// navigates to the listing route exactly once.
package formsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/store"
	"github.com/goliatone/go-entityform/pkg/validation"
)

// Navigator receives navigation intents.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(route string) { f(route) }

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}

type collectionState struct {
	done bool
	err  error
}

// Synchronizer binds one form instance to the store.
type Synchronizer struct {
	spec      model.FormSpec
	mode      Mode
	store     *store.Store
	navigator Navigator
	logger    *zap.Logger
	now       func() time.Time
	loc       *time.Location
	page      store.PageParams
	onChange  func(Snapshot)
	instance  string

	mu            sync.Mutex
	mounted       bool
	unmounted     bool
	ready         bool
	loading       bool
	updating      bool
	updateSuccess bool
	entity        entity.Entity
	draft         Draft
	errors        validation.Errors
	entityErr     error
	submitErr     error
	collections   map[string]*collectionState
	cancel        context.CancelFunc
	done          chan struct{}
}

// New constructs a Synchronizer for spec in the given mode.
func New(spec model.FormSpec, mode Mode, st *store.Store, opts ...Option) (*Synchronizer, error) {
	if st == nil {
		return nil, fmt.Errorf("formsync: store is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("formsync: %w", err)
	}

	s := &Synchronizer{
		spec:        spec,
		mode:        mode,
		store:       st,
		navigator:   nopNavigator{},
		logger:      zap.NewNop(),
		now:         time.Now,
		loc:         time.Local,
		instance:    uuid.NewString(),
		collections: make(map[string]*collectionState),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.With(
		zap.String("form", spec.Entity),
		zap.String("instance", s.instance),
		zap.String("mode", mode.String()),
	)
	for _, name := range spec.ReferencedCollections() {
		s.collections[name] = &collectionState{}
	}
	return s, nil
}

// Spec returns the form description.
func (s *Synchronizer) Spec() model.FormSpec {
	return s.spec
}

// Mode returns the mode fixed at construction.
func (s *Synchronizer) Mode() Mode {
	return s.mode
}

// IsNew reports whether the form creates a new entity.
func (s *Synchronizer) IsNew() bool {
	return s.mode.IsNew()
}

// Mount starts the mount-time fetches and returns without waiting for them.
// Cancelling ctx or calling Unmount aborts fetches still in flight.
func (s *Synchronizer) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return ErrUnmounted
	}
	if s.mounted {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.mounted = true
	s.loading = !s.mode.IsNew()
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Debug("mounting form", zap.Strings("references", s.spec.ReferencedCollections()))
	s.emit()

	var g errgroup.Group
	g.Go(func() error {
		s.initEntity(ctx)
		return nil
	})
	for _, name := range s.spec.ReferencedCollections() {
		g.Go(func() error {
			s.loadCollection(ctx, name)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(s.done)
	}()
	return nil
}

// Wait blocks until every mount-time fetch has finished or ctx is done. It
// returns the entity FetchError in edit mode; collection failures are not
// fatal and are reported through Snapshot.
func (s *Synchronizer) Wait(ctx context.Context) error {
	s.mu.Lock()
	mounted := s.mounted
	s.mu.Unlock()
	if !mounted {
		return ErrNotReady
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entityErr
}

// Unmount cancels in-flight fetches. Results arriving afterwards are dropped
// and no further change notifications or navigations are issued.
func (s *Synchronizer) Unmount() {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return
	}
	s.unmounted = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.logger.Debug("form unmounted")
}

// Cancel abandons the edit and navigates back to the listing route.
func (s *Synchronizer) Cancel() {
	s.mu.Lock()
	unmounted := s.unmounted
	s.mu.Unlock()
	if unmounted {
		return
	}
	s.navigator.Navigate(s.spec.ListingRoute())
}

func (s *Synchronizer) initEntity(ctx context.Context) {
	if s.mode.IsNew() {
		s.store.Reset(s.spec.Collection)

		s.mu.Lock()
		if s.unmounted {
			s.mu.Unlock()
			return
		}
		s.entity = entity.Entity{}
		s.draft = createDefaults(s.spec, s.now(), s.loc)
		s.ready = true
		s.loading = false
		s.mu.Unlock()

		s.emit()
		return
	}

	fetched, err := s.store.GetEntity(ctx, s.spec.Collection, s.mode.ID())

	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.entityErr = &FetchError{Collection: s.spec.Collection, ID: s.mode.ID(), Err: err}
		s.mu.Unlock()

		s.logger.Warn("entity fetch failed", zap.String("id", s.mode.ID()), zap.Error(err))
		s.emit()
		return
	}

	draft, convErrs := editDefaults(s.spec, fetched, s.loc)
	s.entity = fetched
	s.draft = draft
	s.ready = true
	s.loading = false
	s.mu.Unlock()

	for _, convErr := range convErrs {
		s.logger.Warn("entity value not editable", zap.Error(convErr))
	}
	s.emit()
}

func (s *Synchronizer) loadCollection(ctx context.Context, name string) {
	_, err := s.store.GetEntities(ctx, name, s.page)

	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return
	}
	state := s.collections[name]
	state.done = true
	if err != nil {
		state.err = &FetchError{Collection: name, Err: err}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("reference collection fetch failed", zap.String("collection", name), zap.Error(err))
	}
	s.emit()
}

// emit publishes a snapshot to the change listener unless unmounted.
func (s *Synchronizer) emit() {
	if s.onChange == nil {
		return
	}
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.onChange(snap)
}
