package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/phonrule/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set one configuration value",
	Long: `Set a dotted configuration key in the config file. Values are read as
YAML scalars, so "true" is a boolean and "10m" stays a string.

Examples:
  phonrule config set flags.autosave true
  phonrule config set inventory.path ~/lang/inventory.yaml
  phonrule config set editor.history_limit 250`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath())
		return err
	},
}

func init() {
	configCmd.AddCommand(configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := strings.ToLower(args[0]), args[1]

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		value = raw
	}

	path := configPath()
	if err := config.SaveValue(path, key, value); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", key, value, path)
	return err
}
