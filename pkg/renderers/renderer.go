// Package renderers defines the output renderer contract and a registry of
// renderers selectable by name.
package renderers

import (
	"context"

	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/model"
)

// Renderer turns the current state of a synchronized form into bytes (HTML,
// JSON, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormSpec, snap formsync.Snapshot) ([]byte, error)
}
