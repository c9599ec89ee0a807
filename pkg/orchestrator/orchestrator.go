package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/renderers"
	"github.com/goliatone/go-entityform/pkg/renderers/html"
	"github.com/goliatone/go-entityform/pkg/store"
)

const defaultRendererName = "html"

// ErrUnknownForm is returned when the catalog has no form for an entity.
var ErrUnknownForm = errors.New("orchestrator: unknown form")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithCatalog sets the catalog forms are looked up in.
func WithCatalog(catalog Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = catalog
	}
}

// WithStore sets the entity store synchronizers read from and write to.
func WithStore(st *store.Store) Option {
	return func(o *Orchestrator) {
		o.store = st
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *renderers.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.defaultRenderer = name
		}
	}
}

// WithSyncOptions appends options applied to every synchronizer.
func WithSyncOptions(opts ...formsync.Option) Option {
	return func(o *Orchestrator) {
		o.syncOptions = append(o.syncOptions, opts...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator opens forms from a catalog against one store. The html and
// json renderers are registered unless a registry is supplied.
type Orchestrator struct {
	catalog         Catalog
	store           *store.Store
	registry        *renderers.Registry
	defaultRenderer string
	syncOptions     []formsync.Option
	logger          *zap.Logger
}

// New constructs an Orchestrator. A catalog and a store are required.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.catalog == nil {
		return nil, errors.New("orchestrator: catalog is required")
	}
	if o.store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if o.registry == nil {
		htmlRenderer, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: html renderer: %w", err)
		}
		o.registry, err = renderers.NewRegistry(htmlRenderer, renderers.NewJSONRenderer("  "))
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Request selects a form and the entity it edits.
type Request struct {
	// Entity names the form in the catalog.
	Entity string
	// ID of the entity to edit; empty opens the form in create mode.
	ID string
	// Renderer names the renderer Generate uses. Empty selects the default.
	Renderer string
}

// Mode returns the form mode the request asks for.
func (r Request) Mode() formsync.Mode {
	return formsync.FromRoute(r.ID, r.ID != "")
}

// Catalog exposes the configured catalog.
func (o *Orchestrator) Catalog() Catalog {
	return o.catalog
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	return o.registry.List()
}

// Form looks up the form description of entity.
func (o *Orchestrator) Form(entity string) (model.FormSpec, error) {
	form, ok := o.catalog.Form(entity)
	if !ok {
		return model.FormSpec{}, fmt.Errorf("%w: %q", ErrUnknownForm, entity)
	}
	return form, nil
}

// Open builds a synchronizer for req, mounts it and waits for the mount-time
// fetches. Fetch failures are part of the returned form's state, not errors.
// The caller owns the synchronizer and must Unmount it.
func (o *Orchestrator) Open(ctx context.Context, req Request, opts ...formsync.Option) (*formsync.Synchronizer, error) {
	form, err := o.Form(req.Entity)
	if err != nil {
		return nil, err
	}

	syncOpts := append([]formsync.Option{formsync.WithLogger(o.logger)}, o.syncOptions...)
	syncOpts = append(syncOpts, opts...)
	s, err := formsync.New(form, req.Mode(), o.store, syncOpts...)
	if err != nil {
		return nil, err
	}
	if err := s.Mount(ctx); err != nil {
		s.Unmount()
		return nil, err
	}
	if err := s.Wait(ctx); err != nil {
		var ferr *formsync.FetchError
		if !errors.As(err, &ferr) {
			s.Unmount()
			return nil, err
		}
		o.logger.Warn("entity unavailable", zap.String("form", form.Entity), zap.String("id", req.ID), zap.Error(err))
	}
	o.logger.Debug("form opened", zap.String("form", form.Entity), zap.String("mode", req.Mode().String()))
	return s, nil
}

// Generate opens the form of req and renders its state.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	name := req.Renderer
	if name == "" {
		name = o.defaultRenderer
	}
	renderer, err := o.registry.Get(name)
	if err != nil {
		return nil, err
	}

	s, err := o.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.Unmount()

	out, err := renderer.Render(ctx, s.Spec(), s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render %s: %w", name, err)
	}
	return out, nil
}
