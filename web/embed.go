// Package web holds the dashboard pages, partials and browser assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the pages and the period partial into one set.
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

// Static returns the asset tree served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
