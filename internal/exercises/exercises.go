// Package exercises wires every implemented exercise analyzer into a
// registry. Commands share this single construction point so the set of
// supported slugs stays consistent across analyze, batch, watch, and query.
package exercises

import (
	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/analyzer/resistorcolorduo"
)

// DefaultRegistry returns a registry with all built-in exercises registered.
func DefaultRegistry() *analyzer.Registry {
	registry := analyzer.NewRegistry()

	// Registration only fails on duplicate slugs, which would be a
	// programming error in this list.
	if err := registry.Register(resistorcolorduo.New()); err != nil {
		panic(err)
	}

	return registry
}
