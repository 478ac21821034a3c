// Package rules wraps the google/mangle Datalog engine behind a small
// kernel. Extraction asserts ground facts about a submission, the embedded
// rule program derives pattern judgements, and callers query the derived
// predicates. Each analysis run evaluates over its own Kernel instance.
package rules

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// Fact is a single ground atom of the extensional database.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// String returns the Datalog source representation of the fact. String
// arguments beginning with "/" are emitted as Mangle name constants.
func (f Fact) String() string {
	var args []string
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case string:
			if strings.HasPrefix(v, "/") {
				args = append(args, v)
			} else {
				args = append(args, fmt.Sprintf("%q", v))
			}
		case int:
			args = append(args, fmt.Sprintf("%d", v))
		case int64:
			args = append(args, fmt.Sprintf("%d", v))
		case float64:
			args = append(args, fmt.Sprintf("%f", v))
		case bool:
			if v {
				args = append(args, "/true")
			} else {
				args = append(args, "/false")
			}
		default:
			args = append(args, fmt.Sprintf("%v", v))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// Kernel evaluates one rule program over asserted facts. Queries are safe
// from multiple goroutines once the kernel is evaluated; assertion is not.
type Kernel struct {
	mu          sync.RWMutex
	facts       []Fact
	store       factstore.FactStore
	programInfo *analysis.ProgramInfo
	schemas     string
	policy      string
	initialized bool
}

// NewKernel creates a kernel over the given schema declarations and policy
// rules.
func NewKernel(schemas, policy string) *Kernel {
	return &Kernel{
		facts:   make([]Fact, 0),
		store:   factstore.NewSimpleInMemoryStore(),
		schemas: schemas,
		policy:  policy,
	}
}

// LoadFacts adds facts to the extensional database and re-evaluates the
// program to fixpoint.
func (k *Kernel) LoadFacts(facts []Fact) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.facts = append(k.facts, facts...)
	return k.rebuild()
}

// rebuild assembles declarations, facts and rules into one program, parses
// and analyzes it, then evaluates to fixpoint into a fresh store.
func (k *Kernel) rebuild() error {
	var sb strings.Builder

	if k.schemas != "" {
		sb.WriteString(k.schemas)
		sb.WriteString("\n")
	}

	for _, f := range k.facts {
		sb.WriteString(f.String())
		sb.WriteString("\n")
	}

	if k.policy != "" {
		sb.WriteString(k.policy)
	}

	parsed, err := parse.Unit(strings.NewReader(sb.String()))
	if err != nil {
		return fmt.Errorf("failed to parse program: %w", err)
	}

	programInfo, err := analysis.AnalyzeOneUnit(parsed, nil)
	if err != nil {
		return fmt.Errorf("failed to analyze program: %w", err)
	}
	k.programInfo = programInfo

	k.store = factstore.NewSimpleInMemoryStore()

	if _, err := engine.EvalProgramWithStats(programInfo, k.store); err != nil {
		return fmt.Errorf("failed to evaluate program: %w", err)
	}

	k.initialized = true
	return nil
}

// Query retrieves all derived facts of one predicate.
func (k *Kernel) Query(predicate string) ([]Fact, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if !k.initialized {
		return nil, fmt.Errorf("kernel not initialized")
	}

	results := make([]Fact, 0)
	if k.programInfo == nil {
		return results, nil
	}

	for pred := range k.programInfo.Decls {
		if pred.Symbol == predicate {
			k.store.GetFacts(ast.NewQuery(pred), func(a ast.Atom) error {
				results = append(results, atomToFact(a))
				return nil
			})
			break
		}
	}

	return results, nil
}

// Holds reports whether any fact of the predicate was derived.
func (k *Kernel) Holds(predicate string) (bool, error) {
	facts, err := k.Query(predicate)
	if err != nil {
		return false, err
	}
	return len(facts) > 0, nil
}

// HoldsFor reports whether the predicate was derived with the given first
// argument.
func (k *Kernel) HoldsFor(predicate, arg string) (bool, error) {
	facts, err := k.Query(predicate)
	if err != nil {
		return false, err
	}
	for _, f := range facts {
		if len(f.Args) > 0 {
			if s, ok := f.Args[0].(string); ok && s == arg {
				return true, nil
			}
		}
	}
	return false, nil
}

// QueryAll retrieves every derived fact organized by predicate.
func (k *Kernel) QueryAll() (map[string][]Fact, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if !k.initialized {
		return nil, fmt.Errorf("kernel not initialized")
	}

	results := make(map[string][]Fact)
	if k.programInfo == nil {
		return results, nil
	}

	for pred := range k.programInfo.Decls {
		predName := pred.Symbol
		results[predName] = make([]Fact, 0)

		k.store.GetFacts(ast.NewQuery(pred), func(a ast.Atom) error {
			results[predName] = append(results[predName], atomToFact(a))
			return nil
		})
	}

	return results, nil
}

// FactCount returns the number of asserted facts.
func (k *Kernel) FactCount() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.facts)
}

// atomToFact converts a Mangle atom back into a Fact.
func atomToFact(a ast.Atom) Fact {
	args := make([]interface{}, len(a.Args))
	for i, term := range a.Args {
		args[i] = baseTermToValue(term)
	}
	return Fact{
		Predicate: a.Predicate.Symbol,
		Args:      args,
	}
}

// baseTermToValue extracts the Go value from a Mangle base term.
func baseTermToValue(term ast.BaseTerm) interface{} {
	switch t := term.(type) {
	case ast.Constant:
		switch t.Type {
		case ast.NameType:
			return t.Symbol
		case ast.StringType:
			return t.Symbol
		case ast.NumberType:
			return t.NumValue
		case ast.Float64Type:
			return t.Float64Value
		default:
			return t.Symbol
		}
	case ast.Variable:
		return fmt.Sprintf("?%s", t.Symbol)
	default:
		return fmt.Sprintf("%v", term)
	}
}
