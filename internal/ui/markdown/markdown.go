// Package markdown renders rule sheets through glamour.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes document margins on top of the chosen style.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Styles accepted by New.
var Styles = []string{"dark", "light", "notty", "ascii", "auto"}

// Renderer wraps a glamour renderer with the width it wraps at.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer wrapping at width in the named style.
func New(width int, style string) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch style {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	case "dark", "light", "notty", "ascii":
		opts = append(opts, glamour.WithStandardStyle(style))
	default:
		return nil, fmt.Errorf("unknown markdown style %q", style)
	}
	opts = append(opts, glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)))
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// Sheet builds a markdown document section by section.
type Sheet struct {
	b strings.Builder
}

// Heading adds a heading of the given level.
func (s *Sheet) Heading(level int, text string) {
	s.b.WriteString(strings.Repeat("#", max(level, 1)) + " " + text + "\n\n")
}

// Paragraph adds a paragraph.
func (s *Sheet) Paragraph(text string) {
	s.b.WriteString(text + "\n\n")
}

// Table adds a table. Cells are escaped so formula notation such as "|"
// stays inside its cell.
func (s *Sheet) Table(headers []string, rows [][]string) {
	s.row(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	s.b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, r := range rows {
		s.row(r)
	}
	s.b.WriteString("\n")
}

func (s *Sheet) row(cells []string) {
	esc := make([]string, len(cells))
	for i, c := range cells {
		esc[i] = Escape(c)
	}
	s.b.WriteString("| " + strings.Join(esc, " | ") + " |\n")
}

// String returns the document.
func (s *Sheet) String() string {
	return s.b.String()
}

// Escape makes text safe inside a table cell.
func Escape(text string) string {
	r := strings.NewReplacer(`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "\n", " ")
	return r.Replace(text)
}
