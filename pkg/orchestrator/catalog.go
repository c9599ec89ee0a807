package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/openapi"
)

// Catalog resolves form descriptions by entity name. *model.Registry
// implements it.
type Catalog interface {
	Form(entity string) (model.FormSpec, bool)
	Names() []string
}

// FromDocument builds a catalog holding one form per entity schema of doc.
func FromDocument(doc *openapi.Document) (*model.Registry, error) {
	forms, err := doc.Forms()
	if err != nil {
		return nil, err
	}
	return model.NewRegistry(forms...)
}

// LoadCatalog reads forms from location: an http(s) OpenAPI document, a
// directory of form files, a single form file or a local OpenAPI document.
func LoadCatalog(ctx context.Context, location string, opts ...openapi.LoaderOption) (Catalog, error) {
	if location == "" {
		return nil, fmt.Errorf("orchestrator: schema location is required")
	}
	src, err := openapi.SourceFromLocation(location)
	if err != nil {
		return nil, err
	}
	if src.Kind() == openapi.SourceKindURL {
		doc, err := openapi.Load(ctx, src, opts...)
		if err != nil {
			return nil, err
		}
		return FromDocument(doc)
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: schema %s: %w", location, err)
	}
	if info.IsDir() {
		return model.LoadFS(os.DirFS(location))
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: read %s: %w", location, err)
	}
	if isOpenAPI(data) {
		doc, err := openapi.Parse(ctx, src, data)
		if err != nil {
			return nil, err
		}
		return FromDocument(doc)
	}
	forms, err := model.ParseForms(data, filepath.Base(location))
	if err != nil {
		return nil, err
	}
	return model.NewRegistry(forms...)
}

// isOpenAPI reports whether data declares an openapi version at the top
// level. JSON is valid YAML, so one decoder covers both.
func isOpenAPI(data []byte) bool {
	var head struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return false
	}
	return head.OpenAPI != ""
}
