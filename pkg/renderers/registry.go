package renderers

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownRenderer is returned when neither a name nor a media type
// matches a registered renderer.
var ErrUnknownRenderer = errors.New("renderers: renderer not found")

// Registry indexes renderers by name and by the media type they produce.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Renderer
	byMedia map[string]string
}

// NewRegistry registers every renderer, failing on the first conflict.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]Renderer),
		byMedia: make(map[string]string),
	}
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds renderer under its Name. The first renderer registered for
// a media type answers lookups by that type.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil || renderer.Name() == "" {
		return errors.New("renderers: renderer with a name is required")
	}
	name := renderer.Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("renderers: %q already registered", name)
	}
	r.byName[name] = renderer
	if media := mediaType(renderer.ContentType()); media != "" {
		if _, taken := r.byMedia[media]; !taken {
			r.byMedia[media] = name
		}
	}
	return nil
}

// Get returns the renderer registered as name. A name containing "/" is
// treated as a media type, so "text/html" finds the html renderer.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if renderer, ok := r.byName[name]; ok {
		return renderer, nil
	}
	if strings.Contains(name, "/") {
		if owner, ok := r.byMedia[mediaType(name)]; ok {
			return r.byName[owner], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
}

// Negotiate picks the renderer for an Accept header value, honouring the
// order of the listed types. Wildcards and an empty header yield fallback.
func (r *Registry) Negotiate(accept, fallback string) (Renderer, error) {
	for _, part := range strings.Split(accept, ",") {
		media := mediaType(part)
		if media == "" || strings.Contains(media, "*") {
			continue
		}
		if renderer, err := r.Get(media); err == nil {
			return renderer, nil
		}
	}
	return r.Get(fallback)
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mediaType(value string) string {
	media, _, err := mime.ParseMediaType(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	return media
}
