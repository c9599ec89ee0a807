package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var templates embed.FS

// TemplatesFS exposes the built-in form templates.
func TemplatesFS() fs.FS {
	return templates
}
