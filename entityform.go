// Package entityform keeps CRUD entity forms in sync with a remote store:
// it loads the edited entity and the collections its reference fields pick
// from, validates the draft and sends exactly one create or update.
package entityform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-entityform/pkg/orchestrator"
	"github.com/goliatone/go-entityform/pkg/renderers/html"
	"github.com/goliatone/go-entityform/pkg/store"
)

// Request aliases orchestrator.Request for callers of the top-level helpers.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(options...)
}

// GenerateHTML opens the form of req against api and renders it with the
// built-in HTML templates.
func GenerateHTML(ctx context.Context, catalog orchestrator.Catalog, api store.API, req Request, options ...orchestrator.Option) ([]byte, error) {
	base := []orchestrator.Option{
		orchestrator.WithCatalog(catalog),
		orchestrator.WithStore(store.New(api)),
	}
	gen, err := orchestrator.New(append(base, options...)...)
	if err != nil {
		return nil, err
	}
	req.Renderer = "html"
	return gen.Generate(ctx, req)
}

// EmbeddedTemplates exposes the built-in HTML form templates so callers can
// reuse or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
