package renderers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-entityform/pkg/fielderrors"
	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/model"
)

// JSONRenderer emits the form state as a JSON document for API consumers.
type JSONRenderer struct {
	indent string
}

// NewJSONRenderer returns a renderer that indents with indent; empty means
// compact output.
func NewJSONRenderer(indent string) *JSONRenderer {
	return &JSONRenderer{indent: indent}
}

func (r *JSONRenderer) Name() string        { return "json" }
func (r *JSONRenderer) ContentType() string { return "application/json" }

type stateDocument struct {
	Entity      string                       `json:"entity"`
	Mode        string                       `json:"mode"`
	IsNew       bool                         `json:"isNew"`
	Loading     bool                         `json:"loading"`
	Updating    bool                         `json:"updating"`
	Saved       bool                         `json:"saved"`
	Values      map[string]any               `json:"values,omitempty"`
	Errors      map[string][]string          `json:"errors,omitempty"`
	FormErrors  []string                     `json:"formErrors,omitempty"`
	Choices     map[string][]formsync.Choice `json:"choices,omitempty"`
	EntityError string                       `json:"entityError,omitempty"`
	Unavailable map[string]string            `json:"unavailable,omitempty"`
}

// Render implements Renderer.
func (r *JSONRenderer) Render(ctx context.Context, form model.FormSpec, snap formsync.Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := stateDocument{
		Entity:   form.Entity,
		Mode:     snap.Mode.String(),
		IsNew:    snap.Mode.IsNew(),
		Loading:  snap.Loading,
		Updating: snap.Updating,
		Saved:    snap.UpdateSuccess,
		Values:   snap.Draft,
		Errors:   snap.Errors,
		Choices:  snap.Choices,
	}
	if snap.EntityErr != nil {
		doc.EntityError = snap.EntityErr.Error()
	}
	for collection, err := range snap.CollectionErrs {
		if doc.Unavailable == nil {
			doc.Unavailable = make(map[string]string)
		}
		doc.Unavailable[collection] = err.Error()
	}
	var serr *formsync.SubmitError
	switch {
	case errors.As(snap.SubmitErr, &serr):
		doc.FormErrors = fielderrors.Merge(serr.Form)
		if len(doc.FormErrors) == 0 && len(serr.Fields) == 0 {
			doc.FormErrors = []string{serr.Err.Error()}
		}
	case snap.SubmitErr != nil:
		doc.FormErrors = []string{snap.SubmitErr.Error()}
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("renderers: encode state: %w", err)
	}
	return out, nil
}
