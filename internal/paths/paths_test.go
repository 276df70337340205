package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PHONRULE_TEST_DIR", "/srv/lang")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty stays empty", "", ""},
		{"bare tilde", "~", home},
		{"tilde prefix", "~/rules.db", filepath.Join(home, "rules.db")},
		{"environment variable", "$PHONRULE_TEST_DIR/inventory.yaml", "/srv/lang/inventory.yaml"},
		{"cleaned", "/a/b/../c.yaml", "/a/c.yaml"},
		{"relative kept relative", "lang/inv.yaml", "lang/inv.yaml"},
		{"other user untouched", "~bob/x", "~bob/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Expand(tt.in))
		})
	}
}

func TestRelativeTo(t *testing.T) {
	tests := []struct {
		name       string
		file, path string
		want       string
	}{
		{"relative joins config dir", "/home/u/.phonrule/config.yaml", "inventory.yaml", "/home/u/.phonrule/inventory.yaml"},
		{"absolute unchanged", "/home/u/.phonrule/config.yaml", "/srv/inv.yaml", "/srv/inv.yaml"},
		{"no config file", "", "inv.yaml", "inv.yaml"},
		{"unset path", "/home/u/config.yaml", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RelativeTo(tt.file, tt.path))
		})
	}
}
