package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// harness runs the root command against a config and rule store in a
// temporary directory.
type harness struct {
	t      *testing.T
	dir    string
	config string
	stdin  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PHONRULE_DEBUG", "")

	h := &harness{t: t, dir: dir, config: filepath.Join(dir, "config.yaml")}
	body := "store:\n  path: " + filepath.Join(dir, "rules.db") + "\n" +
		"editor:\n  markdown_style: notty\n"
	require.NoError(t, os.WriteFile(h.config, []byte(body), 0o600))
	return h
}

// run executes args and returns everything written to stdout and stderr.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	viper.Reset()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(h.stdin))
	rootCmd.SetArgs(append([]string{"--config", h.config}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) write(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// resetFlags restores every flag to its default so state does not leak
// between runs of the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

const nasalScript = `
- rule: nasal
  create: regular
  steps:
    - ins natural-class N
    - cell SC
    - ins phoneme m
    - env / _ p
`

func TestParseEnv(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("parse-env", "/ [N] _ p")
	require.Contains(t, out, "environment: / [N] _ p")
	require.Contains(t, out, "left:  natural-class")
	require.Contains(t, out, "right: segment")
	require.NotContains(t, out, "warning")
}

func TestParseEnv_Strict(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"lenient keeps going", []string{"parse-env", "/ [Q] _ p"}, false},
		{"strict fails", []string{"parse-env", "--strict", "/ [Q] _ p"}, true},
		{"strict clean input", []string{"parse-env", "--strict", "/ # _"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			out, err := h.run(tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, out, "unknown natural class [Q]")
				return
			}
			require.NoError(t, err, out)
		})
	}
}

func TestEdit_SavesRules(t *testing.T) {
	h := newHarness(t)
	script := h.write("nasal.yaml", nasalScript)

	out := h.mustRun("edit", "--script", script)
	require.Contains(t, out, "nasal: [N] → m / _ p")
	require.Contains(t, out, "saved 1 rules")

	out = h.mustRun("rules", "list")
	require.Contains(t, out, "nasal")
	require.Contains(t, out, "regular")
	require.Contains(t, out, "[N] → m / _ p")
}

func TestEdit_Stdin(t *testing.T) {
	h := newHarness(t)
	h.stdin = nasalScript
	require.Contains(t, h.mustRun("edit", "--script", "-"), "saved 1 rules")
}

func TestEdit_DryRun(t *testing.T) {
	h := newHarness(t)
	script := h.write("nasal.yaml", nasalScript)

	out := h.mustRun("edit", "--script", script, "--dry-run")
	require.Contains(t, out, "dry run: nothing saved")

	out = h.mustRun("rules", "list")
	require.Contains(t, out, "no rules stored")
}

func TestEdit_FailingStepSavesNothing(t *testing.T) {
	h := newHarness(t)
	script := h.write("bad.yaml", `
- rule: nasal
  create: regular
  steps:
    - ins natural-class N
    - ins phoneme q
`)

	_, err := h.run("edit", "--script", script)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown phoneme")

	out := h.mustRun("rules", "list", "--json")
	require.Equal(t, "[]\n", out)
}

func TestEdit_Usage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("edit")
	require.EqualError(t, err, "--script is required")

	out := h.mustRun("edit", "--help-commands")
	require.True(t, strings.HasPrefix(out, "addrhs"), out)
	require.Contains(t, out, "env <environment>")
}

func TestRules_ListJSON(t *testing.T) {
	h := newHarness(t)
	h.mustRun("edit", "--script", h.write("nasal.yaml", nasalScript))

	var rules []struct {
		Name      string   `json:"name"`
		Kind      string   `json:"kind"`
		Formulas  []string `json:"formulas"`
		UpdatedAt string   `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("rules", "list", "--json")), &rules))
	require.Len(t, rules, 1)
	require.Equal(t, "nasal", rules[0].Name)
	require.Equal(t, "regular", rules[0].Kind)
	require.Equal(t, []string{"[N] → m / _ p"}, rules[0].Formulas)
	require.NotEmpty(t, rules[0].UpdatedAt)
}

func TestRules_ExportDeleteImport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("edit", "--script", h.write("nasal.yaml", nasalScript))

	exported := filepath.Join(h.dir, "export.yaml")
	h.mustRun("rules", "export", "-o", exported)
	body, err := os.ReadFile(exported)
	require.NoError(t, err)
	require.Contains(t, string(body), "name: nasal")

	require.Contains(t, h.mustRun("rules", "delete", "nasal"), "deleted nasal")
	require.Contains(t, h.mustRun("rules", "list"), "no rules stored")

	_, err = h.run("rules", "delete", "nasal")
	require.Error(t, err)

	require.Contains(t, h.mustRun("rules", "import", exported), "imported nasal (regular)")
	require.Contains(t, h.mustRun("rules", "list"), "[N] → m / _ p")
}

func TestRules_ExportUnknownRule(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("rules", "export", "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestRules_ImportInvalidStoresNothing(t *testing.T) {
	h := newHarness(t)
	path := h.write("bad.yaml", "name: broken\nkind: sideways\n")

	_, err := h.run("rules", "import", path)
	require.Error(t, err)
	require.Contains(t, h.mustRun("rules", "list"), "no rules stored")
}

func TestShow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("edit", "--script", h.write("nasal.yaml", nasalScript))

	raw := h.mustRun("show", "--raw")
	require.Contains(t, raw, "# Rules")
	require.Contains(t, raw, "## nasal")
	require.Contains(t, raw, "Regular rule")
	require.Contains(t, raw, `| 1 | \[N\] → m / \_ p |`)

	rendered := h.mustRun("show", "nasal")
	require.Contains(t, rendered, "nasal")
	require.Contains(t, rendered, "[N] → m / _ p")
	require.NotContains(t, rendered, `\[N\]`)
}

func TestShow_NoRules(t *testing.T) {
	h := newHarness(t)
	require.Contains(t, h.mustRun("show", "--raw"), "No rules.")
}

func TestConfigSet(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "set", "flags.autosave", "true")
	require.Contains(t, out, "flags.autosave = true")

	h.mustRun("config", "set", "editor.history_limit", "250")
	body, err := os.ReadFile(h.config)
	require.NoError(t, err)
	require.Contains(t, string(body), "autosave: true")
	require.Contains(t, string(body), "history_limit: 250")
	require.Contains(t, string(body), "markdown_style: notty", "existing keys are kept")

	require.Equal(t, h.config+"\n", h.mustRun("config", "path"))
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		wantErr  string
	}{
		{"history limit", "editor:\n", "editor:\n  history_limit: 0\n", "history_limit"},
		{"markdown style", "markdown_style: notty", "markdown_style: sepia", "markdown_style"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			body, err := os.ReadFile(h.config)
			require.NoError(t, err)
			patched := strings.Replace(string(body), tt.old, tt.new, 1)
			require.NoError(t, os.WriteFile(h.config, []byte(patched), 0o600))

			_, err = h.run("rules", "list")
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInventoryInit(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "lang.yaml")

	require.Contains(t, h.mustRun("inventory", "init", path), "wrote "+path)

	_, err := h.run("inventory", "init", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--force")
	h.mustRun("inventory", "init", "--force", path)

	out := h.mustRun("inventory", "check", path)
	require.Contains(t, out, "22 phonemes, 5 classes, 2 boundaries")

	// The written inventory drives parsing once configured.
	out = h.mustRun("--inventory", path, "parse-env", "/ [L] _")
	require.Contains(t, out, "environment: / [L] _")
}

func TestInventoryFlag_Missing(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--inventory", filepath.Join(h.dir, "nope.yaml"), "parse-env", "/ _")
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading inventory")
}

func TestEdit_Example(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("edit", "--example", "nasal-assimilation")
	require.Contains(t, out, "nasal-assimilation: [N] → n / _ t")

	_, err := h.run("edit", "--example", "nasal-assimilation")
	require.Error(t, err, "the rule already exists")

	_, err = h.run("edit", "--example", "nope")
	require.Error(t, err)

	_, err = h.run("edit", "--example", "p-prefix", "--script", "x.yaml")
	require.EqualError(t, err, "--script and --example are exclusive")
}

func TestConfig_RelativeInventoryPath(t *testing.T) {
	h := newHarness(t)
	h.mustRun("inventory", "init", filepath.Join(h.dir, "lang.yaml"))
	h.mustRun("config", "set", "inventory.path", "lang.yaml")

	// lang.yaml sits next to the config file, not in the working directory.
	out := h.mustRun("parse-env", "/ [L] _")
	require.Contains(t, out, "environment: / [L] _")
}

func TestConfigSet_CreatesFile(t *testing.T) {
	h := newHarness(t)
	h.config = filepath.Join(h.dir, "fresh", "config.yaml")

	h.mustRun("config", "set", "editor.width", "72")
	body, err := os.ReadFile(h.config)
	require.NoError(t, err)
	require.Contains(t, string(body), "width: 72")
}

func TestSetup_StartsFileLogging(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(h.dir, "phonrule.log")
	h.mustRun("config", "set", "log.path", logPath)

	h.mustRun("parse-env", "/ _")
	body, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(body), "phonrule starting")
	require.Contains(t, string(body), "phonrule parse-env")
}
