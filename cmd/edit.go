package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/phonrule/internal/flags"
	"github.com/zjrosen/phonrule/internal/session"
	"github.com/zjrosen/phonrule/internal/templates"
)

var (
	editScript  string
	editExample string
	editDryRun  bool
)

var editCmd = &cobra.Command{
	Use:   "edit --script FILE",
	Short: "Apply an edit script to stored rules",
	Long: `Run the editor commands of a YAML edit script and save the result.

A script is a list of blocks. Each block selects a rule, or creates it when
"create" names a kind, optionally selects a right-hand side, and runs its
steps. Steps are playground commands; run 'phonrule edit --help-commands'
for the list.

  - rule: nasal-assimilation
    create: regular
    steps:
      - ins natural-class N
      - cell SC
      - ins phoneme m
      - env / _ p

Execution stops at the first failing step and nothing is saved.

Examples:
  phonrule edit --script nasal.yaml
  phonrule edit --example nasal-assimilation
  cat nasal.yaml | phonrule edit --script -
  phonrule edit --script nasal.yaml --dry-run`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editScript, "script", "s", "", "edit script, or - for stdin")
	editCmd.Flags().StringVarP(&editExample, "example", "e", "",
		"run a bundled example script ("+strings.Join(templates.Scripts(), ", ")+")")
	editCmd.Flags().BoolVarP(&editDryRun, "dry-run", "n", false, "run the script without saving")
	editCmd.Flags().Bool("help-commands", false, "list the commands a step may use")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if list, _ := cmd.Flags().GetBool("help-commands"); list {
		for _, line := range session.Usage() {
			_, _ = fmt.Fprintln(out, line)
		}
		return nil
	}
	var (
		sc  session.Script
		err error
	)
	switch {
	case editScript != "" && editExample != "":
		return errors.New("--script and --example are exclusive")
	case editExample != "":
		sc, err = exampleScript(editExample)
	case editScript != "":
		sc, err = readScript(cmd.InOrStdin(), editScript)
	default:
		return errors.New("--script is required")
	}
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	tracer, stopTracing, err := startTracing()
	if err != nil {
		return err
	}
	defer stopTracing()

	s := ws.session(tracer)
	defer s.Close()

	reg := flags.New(cfg.Flags)
	outcomes, runErr := s.RunScript(cmd.Context(), sc)
	for _, o := range outcomes {
		if o.Message != "" {
			_, _ = fmt.Fprintln(out, o.Message)
		}
		if reg.Enabled(flags.FlagEnvDiagnostics) {
			for _, d := range o.Diagnostics.Warnings() {
				_, _ = fmt.Fprintf(out, "  warning: %s\n", d)
			}
		}
	}
	if runErr != nil {
		return runErr
	}

	for _, line := range summarize(s) {
		_, _ = fmt.Fprintln(out, line)
	}
	if editDryRun {
		_, _ = fmt.Fprintln(out, "dry run: nothing saved")
		return nil
	}
	if err := s.Save(); err != nil {
		return fmt.Errorf("saving rules: %w", err)
	}
	_, _ = fmt.Fprintf(out, "saved %d rules\n", len(s.Data().Rules))
	return nil
}

func readScript(stdin io.Reader, path string) (session.Script, error) {
	if path == "-" {
		return session.ParseScript(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return session.ParseScript(f)
}

func exampleScript(name string) (session.Script, error) {
	body, err := templates.Script(name)
	if err != nil {
		return nil, err
	}
	return session.ParseScript(bytes.NewReader(body))
}

// summarize lists the edited rule's formulas.
func summarize(s *session.Session) []string {
	r := s.Rule()
	if r == nil {
		return nil
	}
	var out []string
	for _, f := range session.Describe(s.Data(), r) {
		out = append(out, fmt.Sprintf("%s: %s", r.Name(), f))
	}
	return out
}
