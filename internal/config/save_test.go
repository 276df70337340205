package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveValue_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveValue(configPath, "inventory.path", "inv.yaml"))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inventory:")
	assert.Contains(t, string(data), "path: inv.yaml")
}

func TestSaveValue_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my settings
editor:
  width: 40 # narrow terminal
flags:
  autosave: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	require.NoError(t, SaveValue(configPath, "flags.autosave", true))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# my settings")
	assert.Contains(t, content, "width: 40 # narrow terminal")
	assert.Contains(t, content, "autosave: true")
	assert.NotContains(t, content, "autosave: false")
}

func TestSaveValue_ReplacesScalarSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("store: null\n"), 0o600))

	require.NoError(t, SaveValue(configPath, "store.path", "/tmp/rules.db"))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "/tmp/rules.db", v.GetString("store.path"))
}

func TestSaveValue_CommentOnlyFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("# nothing yet\n"), 0o600))

	require.NoError(t, SaveValue(configPath, "editor.width", 72))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, 72, v.GetInt("editor.width"))
}

func TestSaveValue_Roundtrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	require.NoError(t, SaveValue(configPath, "editor.history_limit", 25))
	require.NoError(t, SaveValue(configPath, "flags.env-diagnostics", false))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Editor.HistoryLimit)
	require.False(t, cfg.Flags["env-diagnostics"])
	require.Equal(t, "dark", cfg.Editor.MarkdownStyle)
}

func TestSaveValue_InvalidKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	err := SaveValue(configPath, "editor..width", 1)
	require.Error(t, err)
	_, statErr := os.Stat(configPath)
	require.True(t, os.IsNotExist(statErr))
}
