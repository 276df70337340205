package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
	"github.com/zjrosen/phonrule/internal/inventory"
)

var parseEnvStrict bool

var parseEnvCmd = &cobra.Command{
	Use:   "parse-env ENVIRONMENT",
	Short: "Parse an environment string against the inventory",
	Long: `Parse an environment string such as "/ [C] _ #" and print what it
resolves to. Spans the parser could not resolve are reported and dropped.

Examples:
  phonrule parse-env '/ [N] _ p'
  phonrule parse-env --strict '/ (a) x _'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseEnv,
}

func init() {
	parseEnvCmd.Flags().BoolVar(&parseEnvStrict, "strict", false, "fail when any span is dropped")
	rootCmd.AddCommand(parseEnvCmd)
}

func runParseEnv(cmd *cobra.Command, args []string) error {
	data, err := inventory.Load(cfg.Inventory.Path)
	if err != nil {
		return err
	}
	input := strings.Join(args, " ")
	env, diags := envstring.Parse(input, inventory.NewIndex(data, cfg.Inventory.CacheTTL))

	out := cmd.OutOrStdout()
	normalized, err := envstring.Format(domain.NewSequence(env.Left...), domain.NewSequence(env.Right...))
	if err != nil {
		normalized = "(" + err.Error() + ")"
	}
	_, _ = fmt.Fprintf(out, "environment: %s\n", normalized)
	_, _ = fmt.Fprintf(out, "left:  %s\n", describeItems(env.Left))
	_, _ = fmt.Fprintf(out, "right: %s\n", describeItems(env.Right))
	for _, d := range diags {
		_, _ = fmt.Fprintf(out, "%s at %d: %s\n", d.Severity, d.Pos, d.Message)
	}

	if warnings := diags.Warnings(); parseEnvStrict && len(warnings) > 0 {
		return fmt.Errorf("%d span(s) dropped", len(warnings))
	}
	return nil
}

func describeItems(items []domain.Context) string {
	if len(items) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(items))
	for i, c := range items {
		parts[i] = c.Kind().String()
	}
	return strings.Join(parts, ", ")
}
