package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/phonrule/internal/flags"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/mode/playground"
	"github.com/zjrosen/phonrule/internal/watcher"
)

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Edit rules interactively",
	Long: `Open the interactive rule editor.

Move the caret with the arrow keys or h/l, step between cells with tab and
between rules with j/k, delete with backspace or x. Press ':' for the
command line; ':help' lists every command. Edits are undoable with u and
are saved with ctrl+s, or after every edit when the autosave flag is on.

With inventory.watch set the inventory file is reloaded when it changes.`,
	RunE: runPlayground,
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, _ []string) error {
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

	var changes <-chan watcher.Change
	if cfg.Inventory.Watch && cfg.Inventory.Path != "" {
		w, err := watcher.New(watcher.DefaultConfig(cfg.Inventory.Path))
		if err != nil {
			return fmt.Errorf("watching inventory: %w", err)
		}
		defer func() { _ = w.Stop() }()
		if changes, err = w.Start(); err != nil {
			return fmt.Errorf("watching inventory: %w", err)
		}
		log.Info(log.CatWatcher, "Watching inventory", "path", cfg.Inventory.Path)
	}

	invPath := cfg.Inventory.Path
	if invPath != "" {
		if abs, err := filepath.Abs(invPath); err == nil {
			invPath = abs
		}
	}

	zone.NewGlobal()
	model := playground.New(playground.Config{
		Session:       s,
		Index:         ws.index,
		InventoryPath: invPath,
		Inventory:     changes,
		Flags:         flags.New(cfg.Flags),
		Width:         cfg.Editor.Width,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	return nil
}
