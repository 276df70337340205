// Package templates holds example edit scripts shipped with the binary.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// exampleScripts embeds the example edit scripts. Each file is one script
// written against the built-in inventory:
//   - scripts/<name>.yaml
//
//go:embed scripts
var exampleScripts embed.FS

// ScriptFS returns the embedded filesystem containing the example scripts.
func ScriptFS() fs.FS {
	sub, err := fs.Sub(exampleScripts, "scripts")
	if err != nil {
		// The directory is embedded above, so Sub cannot fail.
		panic(err)
	}
	return sub
}

// Scripts returns the example names in sorted order.
func Scripts() []string {
	entries, _ := fs.ReadDir(ScriptFS(), ".")
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".yaml" {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}

// Script returns the example named name.
func Script(name string) ([]byte, error) {
	data, err := fs.ReadFile(ScriptFS(), name+".yaml")
	if err != nil {
		return nil, fmt.Errorf("no example script %q (have %s)", name, strings.Join(Scripts(), ", "))
	}
	return data, nil
}
