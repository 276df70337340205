package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Rounded border pieces.
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Panel is a bordered box whose title sits in the top border:
//
//	╭─ Formula ─────╮
//	│ [N] → m / _ p │
//	╰───────────────╯
type Panel struct {
	Title   string
	Content string
	// Width and Height include the border.
	Width   int
	Height  int
	Focused bool
}

// Render draws the panel. Content wider than the panel is wrapped by
// lipgloss; extra lines are cut.
func (p Panel) Render() string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if p.Focused {
		borderColor = BorderFocusColor
	}
	border := lipgloss.NewStyle().Foreground(borderColor)
	title := lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(p.Focused)

	inner := max(p.Width-2, 1)
	rows := max(p.Height-2, 1)

	body := lipgloss.NewStyle().Width(inner).Height(rows).Render(p.Content)
	lines := strings.Split(body, "\n")

	var b strings.Builder
	b.WriteString(topBorder(p.Title, inner, border, title))
	for i := 0; i < rows; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		if w := lipgloss.Width(line); w < inner {
			line += strings.Repeat(" ", inner-w)
		}
		b.WriteString("\n" + border.Render(borderVertical) + line + border.Render(borderVertical))
	}
	b.WriteString("\n" + border.Render(borderBottomLeft+strings.Repeat(borderHorizontal, inner)+borderBottomRight))
	return b.String()
}

// topBorder builds "╭─ title ───╮". A title that does not fit is cut with
// an ellipsis; below four columns the title is dropped.
func topBorder(text string, inner int, border, title lipgloss.Style) string {
	if text == "" || inner < 4 {
		return border.Render(borderTopLeft + strings.Repeat(borderHorizontal, inner) + borderTopRight)
	}
	text = Truncate(text, inner-4)
	fill := max(inner-3-lipgloss.Width(text), 0)
	return border.Render(borderTopLeft+borderHorizontal+" ") +
		title.Render(text) +
		border.Render(" "+strings.Repeat(borderHorizontal, fill)+borderTopRight)
}

// Truncate cuts s to maxWidth cells, ending in "..." when anything was cut.
func Truncate(s string, maxWidth int) string {
	switch {
	case maxWidth < 1:
		return ""
	case ansi.StringWidth(s) <= maxWidth:
		return s
	case maxWidth <= 3:
		return strings.Repeat(".", maxWidth)
	}
	return ansi.Truncate(s, maxWidth, "...")
}
