package controller

import (
	"html/template"
	"io"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Renderer adapts a parsed template set to echo's Renderer interface.
type Renderer struct {
	templates *template.Template
}

func NewRenderer(templatesDir string) (*Renderer, error) {
	templates, err := template.ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates}, nil
}

func NewRendererFromTemplates(templates *template.Template) *Renderer {
	return &Renderer{templates: templates}
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
