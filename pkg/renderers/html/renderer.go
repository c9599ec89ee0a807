// Package html renders entity forms as HTML through pongo2 templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/validation"
)

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS  fs.FS
	executor    Executor
	submitLabel string
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/form.tmpl and templates/field.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithExecutor replaces the pongo2 template executor. The executor receives
// templates/form.tmpl and a context holding "view".
func WithExecutor(executor Executor) Option {
	return func(cfg *config) {
		if executor != nil {
			cfg.executor = executor
		}
	}
}

// WithSubmitLabel overrides the "Save" button caption.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if label != "" {
			cfg.submitLabel = label
		}
	}
}

type Renderer struct {
	templates   Executor
	submitLabel string
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	executor := cfg.executor
	if executor == nil {
		executor = newPongoExecutor(cfg.templateFS)
	}
	return &Renderer{templates: executor, submitLabel: cfg.submitLabel}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders the current state of a synchronized form.
func (r *Renderer) Render(ctx context.Context, form model.FormSpec, snap formsync.Snapshot) ([]byte, error) {
	return r.RenderView(ctx, FromSnapshot(form, snap))
}

// RenderValues renders a form that is not bound to a synchronizer.
func (r *Renderer) RenderValues(ctx context.Context, form model.FormSpec, values map[string]any, errs validation.Errors) ([]byte, error) {
	return r.RenderView(ctx, FromValues(form, values, errs))
}

// RenderView executes the form template with a prepared view.
func (r *Renderer) RenderView(ctx context.Context, view View) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.submitLabel != "" {
		view.SubmitLabel = r.submitLabel
	}
	data, err := templateData(view)
	if err != nil {
		return nil, fmt.Errorf("html renderer: encode view: %w", err)
	}
	out, err := r.templates.Execute(formTemplate, map[string]any{"view": data})
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	return out, nil
}
