package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/session"
	"github.com/zjrosen/phonrule/internal/ui/markdown"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show [rule...]",
	Short: "Print rules as a formatted sheet",
	Long: `Print stored rules with their formulas, one section per rule.

The sheet is rendered with the editor.markdown_style style. Use --raw for
the markdown source.

Examples:
  phonrule show
  phonrule show nasal-assimilation
  phonrule show --raw > rules.md`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print markdown without rendering")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	rules, err := ws.rules(args)
	if err != nil {
		return err
	}
	doc := ruleSheet(ws.data, rules)

	out := cmd.OutOrStdout()
	if showRaw {
		_, err := fmt.Fprint(out, doc)
		return err
	}

	width := cfg.Editor.Width
	if width <= 0 {
		width = 80
	}
	r, err := markdown.New(width, cfg.Editor.MarkdownStyle)
	if err != nil {
		return err
	}
	rendered, err := r.Render(doc)
	if err != nil {
		return fmt.Errorf("rendering sheet: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// ruleSheet writes a markdown sheet with one section per rule.
func ruleSheet(data *domain.PhonData, rules []domain.Rule) string {
	var s markdown.Sheet
	s.Heading(1, "Rules")
	switch len(rules) {
	case 0:
		s.Paragraph("No rules.")
		return s.String()
	case 1:
		s.Paragraph("1 rule")
	default:
		s.Paragraph(fmt.Sprintf("%d rules", len(rules)))
	}

	for _, r := range rules {
		s.Heading(2, markdown.Escape(r.Name()))
		s.Paragraph(kindTitle(r.Kind()))
		formulas := session.Describe(data, r)
		rows := make([][]string, len(formulas))
		for i, f := range formulas {
			rows[i] = []string{fmt.Sprint(i + 1), f}
		}
		s.Table([]string{"#", "Formula"}, rows)
	}
	return s.String()
}

func kindTitle(k domain.RuleKind) string {
	switch k {
	case domain.RuleAffixProcess:
		return "Affix process rule"
	case domain.RuleMetathesis:
		return "Metathesis rule"
	case domain.RuleRegular:
		return "Regular rule"
	}
	return string(k)
}
