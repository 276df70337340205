package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/phonrule/internal/config"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/paths"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	// cfgErr is set by initConfig, which cobra gives no way to fail.
	cfgErr     error
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "phonrule",
	Short: "A structural editor for phonological rules",
	Long: `phonrule edits phonological rule formulas (regular, metathesis and
affix process rules) against a phoneme inventory. Without a subcommand it
opens the interactive playground.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPostRun: teardown,
	RunE:              runPlayground,
}

func init() {
	cobra.OnInitialize(initConfig)
	// Assigned here: setup compares against rootCmd.
	rootCmd.PersistentPreRunE = setup

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/phonrule/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also PHONRULE_DEBUG)")
	rootCmd.PersistentFlags().StringP("inventory", "i", "",
		"phoneme inventory YAML file (default: built-in inventory)")
	rootCmd.PersistentFlags().String("store", "",
		"rule database (default: ~/.config/phonrule/rules.db)")
}

func initConfig() {
	// Flags are bound here rather than in init so a reset viper, as the
	// tests use between runs, still sees them.
	_ = viper.BindPFlag("inventory.path", rootCmd.PersistentFlags().Lookup("inventory"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))

	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("PHONRULE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .phonrule/config.yaml (current directory)
		// 2. ~/.config/phonrule/config.yaml (user config)
		if _, err := os.Stat(filepath.Join(".phonrule", "config.yaml")); err == nil {
			viper.SetConfigFile(filepath.Join(".phonrule", "config.yaml"))
		} else {
			viper.AddConfigPath(config.DefaultConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	cfgErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// No config file found anywhere - create the default user config
			if dir := config.DefaultConfigDir(); dir != "" {
				defaultPath := filepath.Join(dir, "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		case errors.Is(err, fs.ErrNotExist):
			// --config names a file not written yet; "config set" creates it.
		default:
			cfgErr = fmt.Errorf("reading config: %w", err)
			return
		}
	}

	cfg, cfgErr = config.Load(viper.GetViper())
	if cfgErr == nil {
		resolvePaths(&cfg, viper.ConfigFileUsed())
	}
}

// resolvePaths expands "~" and environment variables in configured paths.
// Relative paths from the config file are taken relative to it; paths
// given as flags stay relative to the working directory.
func resolvePaths(c *config.Config, file string) {
	fl := rootCmd.PersistentFlags()
	resolve := func(p string, fromFlag bool) string {
		p = paths.Expand(p)
		if fromFlag {
			return p
		}
		return paths.RelativeTo(file, p)
	}
	c.Inventory.Path = resolve(c.Inventory.Path, fl.Changed("inventory"))
	c.Store.Path = resolve(c.Store.Path, fl.Changed("store"))
	c.Log.Path = resolve(c.Log.Path, false)
	c.Tracing.FilePath = resolve(c.Tracing.FilePath, false)
}

// setup runs before every command: it surfaces config errors and starts
// logging.
func setup(cmd *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}

	debug := os.Getenv("PHONRULE_DEBUG") != "" || debugFlag
	if !debug && cfg.Log.Path == "" {
		return nil
	}
	logPath := cfg.Log.Path
	if logPath == "" {
		logPath = "debug.log"
	}

	var err error
	if cmd == rootCmd || cmd == playgroundCmd {
		logCleanup, err = log.InitWithTeaLog(logPath, "phonrule")
	} else {
		logCleanup, err = log.Init(logPath)
	}
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	level := log.LevelDebug
	if !debug {
		// ValidateLog already accepted the level.
		level, _ = log.ParseLevel(cfg.Log.Level)
	}
	log.SetMinLevel(level)
	log.Info(log.CatConfig, "phonrule starting", "command", cmd.CommandPath(), "config", viper.ConfigFileUsed())
	return nil
}

func teardown(*cobra.Command, []string) {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// configPath is the file "config set" writes: the one loaded, or the
// default user config.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(config.DefaultConfigDir(), "config.yaml")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
