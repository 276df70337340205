package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/phonrule/internal/inventory"
)

var inventoryForce bool

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Work with phoneme inventories",
}

var inventoryInitCmd = &cobra.Command{
	Use:   "init [FILE]",
	Short: "Write the built-in inventory to a file to customize",
	Long: `Write the built-in inventory as YAML (default inventory.yaml). Point
inventory.path at the file to use it:

  phonrule inventory init lang.yaml
  phonrule config set inventory.path "$PWD/lang.yaml"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInventoryInit,
}

var inventoryCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate an inventory file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := inventory.Load(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d phonemes, %d classes, %d boundaries\n",
			args[0], len(data.Phonemes), len(data.NaturalClasses), len(data.Boundaries))
		return err
	},
}

func init() {
	inventoryInitCmd.Flags().BoolVarP(&inventoryForce, "force", "f", false, "overwrite an existing file")
	inventoryCmd.AddCommand(inventoryInitCmd, inventoryCheckCmd)
	rootCmd.AddCommand(inventoryCmd)
}

func runInventoryInit(cmd *cobra.Command, args []string) error {
	path := "inventory.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !inventoryForce {
		return fmt.Errorf("%s exists, use --force to overwrite", path)
	}
	if err := os.WriteFile(path, inventory.DefaultYAML(), 0o644); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return err
}
