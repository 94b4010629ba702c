package http

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/controller"
)

//go:embed templates/search.html
var searchTemplate string

// untitled is shown for products without a name.
const untitled = "Untitled product"

// pageData is what the search template renders.
type pageData struct {
	View  controller.ViewState
	Links controller.Links
}

// Renderer renders the search page.
type Renderer struct {
	template *template.Template
}

// NewRenderer parses the embedded search template. Counts are formatted for
// lang.
func NewRenderer(lang language.Tag) (*Renderer, error) {
	printer := message.NewPrinter(lang)
	tmpl, err := template.New("search").Funcs(template.FuncMap{
		"count": func(n int64) string { return printer.Sprintf("%d", n) },
		"inc":   func(n int) int { return n + 1 },
		"productName": func(name *string) string {
			if name == nil || *name == "" {
				return untitled
			}
			return *name
		},
	}).Parse(searchTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse search template: %w", err)
	}
	return &Renderer{template: tmpl}, nil
}

// Render writes the search page for v.
func (r *Renderer) Render(w io.Writer, v controller.ViewState, links controller.Links) error {
	return r.template.Execute(w, pageData{View: v, Links: links})
}
