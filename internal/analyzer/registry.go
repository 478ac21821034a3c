package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/crashb/javascript-analyzer/internal/extract"
	"github.com/crashb/javascript-analyzer/internal/rules"
)

// ErrUnknownExercise marks a slug no exercise analyzer is registered for.
var ErrUnknownExercise = errors.New("unknown exercise")

// Exercise is one exercise-specific analyzer. Analyze must be deterministic:
// identical source yields an identical result, and a run never mutates state
// shared with other runs.
type Exercise interface {
	// Slug returns the exercise identifier, e.g. "resistor-color-duo".
	Slug() string
	// Analyze classifies one parsed submission.
	Analyze(ctx context.Context, prog *extract.Program) (*Result, error)
}

// Inspector is implemented by exercises that can expose their evaluated
// rule kernel. Debugging surfaces use it to print the derived fact base
// for a submission without running the verdict machine.
type Inspector interface {
	Inspect(prog *extract.Program) (*rules.Kernel, error)
}

// Registry maps exercise slugs to their analyzers.
type Registry struct {
	mu        sync.RWMutex
	exercises map[string]Exercise
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{exercises: make(map[string]Exercise)}
}

// Register adds an exercise analyzer. Registering the same slug twice is a
// programming error.
func (r *Registry) Register(ex Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slug := ex.Slug()
	if _, exists := r.exercises[slug]; exists {
		return fmt.Errorf("exercise %q already registered", slug)
	}
	r.exercises[slug] = ex
	return nil
}

// Lookup returns the analyzer for a slug.
func (r *Registry) Lookup(slug string) (Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ex, ok := r.exercises[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, slug)
	}
	return ex, nil
}

// Slugs returns the registered exercise slugs in sorted order.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slugs := make([]string, 0, len(r.exercises))
	for slug := range r.exercises {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
