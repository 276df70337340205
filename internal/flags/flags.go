// Package flags provides feature flag support for optional editor behavior.
// Flags are read-only after initialization and unknown flags are off.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/phonrule/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagEnvDiagnostics prints the spans dropped while parsing an
	// environment string.
	FlagEnvDiagnostics = "env-diagnostics"

	// FlagAutosave persists the edited rule after every committed unit of
	// work.
	FlagAutosave = "autosave"
)

// Known describes every flag the program reads.
var Known = map[string]string{
	FlagEnvDiagnostics: "report dropped environment string spans",
	FlagAutosave:       "save the edited rule after every change",
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. A nil map disables every flag.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	for name, on := range flags {
		if _, known := Known[name]; !known {
			log.Warn(log.CatConfig, "Ignoring unknown feature flag", "flag", name)
			continue
		}
		r.flags[name] = on
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. Unknown flags and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	return r.flags[name]
}

// With returns a copy of r with name set to on, for command line overrides.
func (r *Registry) With(name string, on bool) *Registry {
	out := &Registry{flags: r.All()}
	if _, known := Known[name]; known {
		out.flags[name] = on
	}
	return out
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}

// Names returns the known flag names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(Known))
}
