// Package render turns cards into HTML fragments, full pages, or terminal
// output.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/starford/depot/internal/card"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// CardView is a card at a fixed position in a view.
type CardView struct {
	Index   int
	Card    card.Card
	Visible bool
}

// Page is the data for the catalog page shell. Cards arrive later through
// the view's event stream.
type Page struct {
	Title  string
	ViewID string
	Watch  bool // reload when the catalog changes on disk
}

// HTML renders catalog markup.
type HTML struct {
	tmpl *template.Template
}

// NewHTML parses the embedded templates.
func NewHTML() (*HTML, error) {
	tmpl, err := template.New("depot").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

// Page writes a complete HTML document.
func (h *HTML) Page(w io.Writer, p Page) error {
	return h.tmpl.ExecuteTemplate(w, "page", p)
}

// Card returns the markup of a single card element.
func (h *HTML) Card(v CardView) (string, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "card", v); err != nil {
		return "", fmt.Errorf("render: card: %w", err)
	}
	return buf.String(), nil
}

// ErrorPanel returns the markup shown in place of the catalog when the
// manifest cannot be loaded.
func (h *HTML) ErrorPanel(resource string) (string, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "error", resource); err != nil {
		return "", fmt.Errorf("render: error panel: %w", err)
	}
	return buf.String(), nil
}
