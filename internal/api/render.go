package api

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
)

// templateRenderer renders the page templates embedded in the frontend.
type templateRenderer struct {
	templates *template.Template
}

// newTemplateRenderer parses every templates/*.html file in assets.
func newTemplateRenderer(assets fs.FS) (*templateRenderer, error) {
	t, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &templateRenderer{templates: t}, nil
}

// Render implements echo.Renderer.
func (r *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
