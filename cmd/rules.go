package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/presentation"
	"github.com/zjrosen/phonrule/internal/ruledoc"
	"github.com/zjrosen/phonrule/internal/session"
)

var (
	rulesJSON   bool
	rulesOutput string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage stored rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rules",
	Long: `List stored rules with their kind and formulas.

Examples:
  phonrule rules list
  phonrule rules list --json | jq '.[].name'`,
	Args: cobra.NoArgs,
	RunE: runRulesList,
}

var rulesExportCmd = &cobra.Command{
	Use:   "export [rule...]",
	Short: "Write rules as YAML documents",
	Long: `Write stored rules as a stream of YAML rule documents, all rules when
none are named.

Examples:
  phonrule rules export > rules.yaml
  phonrule rules export nasal-assimilation -o nasal.yaml`,
	RunE: runRulesExport,
}

var rulesImportCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Store rules from YAML documents",
	Long: `Decode YAML rule documents against the inventory and store them.
A stored rule with the same name is replaced. Nothing is stored when any
document fails to decode.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRulesImport,
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete RULE...",
	Short: "Delete stored rules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = ws.Close() }()

		for _, name := range args {
			if err := ws.repo.Delete(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
		}
		return nil
	},
}

func init() {
	rulesListCmd.Flags().BoolVar(&rulesJSON, "json", false, "print JSON")
	rulesExportCmd.Flags().StringVarP(&rulesOutput, "output", "o", "", "write to file instead of stdout")

	rulesCmd.AddCommand(rulesListCmd, rulesExportCmd, rulesImportCmd, rulesDeleteCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	dtos := make([]presentation.RuleDTO, 0, len(ws.data.Rules))
	for _, r := range ws.data.Rules {
		dto := presentation.FromDomainRule(r, session.Describe(ws.data, r))
		if st, err := ws.repo.Stat(r.Name()); err == nil {
			dto = dto.WithTimes(st.CreatedAt, st.UpdatedAt)
		}
		dtos = append(dtos, dto)
	}

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if rulesJSON {
		return formatter.FormatRules(dtos)
	}
	if len(dtos) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no rules stored")
		return err
	}
	return formatter.FormatRuleLines(dtos)
}

func runRulesExport(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	rules, err := ws.rules(args)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if rulesOutput != "" {
		f, err := os.Create(rulesOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", rulesOutput, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return ruledoc.WriteAll(w, rules, ws.index)
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	var imported []domain.Rule
	for _, path := range args {
		rules, err := readRules(ws.data, path)
		if err != nil {
			return err
		}
		imported = append(imported, rules...)
	}
	if err := ws.repo.SaveAll(ws.data, imported); err != nil {
		return err
	}
	for _, r := range imported {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s)\n", r.Name(), r.Kind())
	}
	return nil
}

func readRules(data *domain.PhonData, path string) ([]domain.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	rules, err := ruledoc.ReadAll(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
