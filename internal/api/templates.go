package api

import (
	"embed"
	"html/template"

	"github.com/lox/crashwatch/internal/figures"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates parses the embedded HTML templates with their helpers.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"count": figures.Count,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
