package rules

import (
	"strings"
	"testing"
)

const testSchemas = `
Decl submission(Name).
Decl passing(Name).
Decl failing(Name).
Decl score(Name, Value).
`

const testPolicy = `
passing(Name) :- submission(Name), score(Name, V), V >= 60.
failing(Name) :- submission(Name), !passing(Name).
`

func TestKernelDerivesFacts(t *testing.T) {
	k := NewKernel(testSchemas, testPolicy)
	err := k.LoadFacts([]Fact{
		{Predicate: "submission", Args: []interface{}{"alpha"}},
		{Predicate: "submission", Args: []interface{}{"beta"}},
		{Predicate: "score", Args: []interface{}{"alpha", 82}},
		{Predicate: "score", Args: []interface{}{"beta", 41}},
	})
	if err != nil {
		t.Fatalf("LoadFacts: %v", err)
	}

	passing, err := k.Query("passing")
	if err != nil {
		t.Fatalf("Query(passing): %v", err)
	}
	if len(passing) != 1 {
		t.Fatalf("got %d passing facts, want 1: %v", len(passing), passing)
	}
	if passing[0].Args[0] != "alpha" {
		t.Fatalf("passing = %v, want alpha", passing[0].Args[0])
	}

	ok, err := k.HoldsFor("failing", "beta")
	if err != nil {
		t.Fatalf("HoldsFor: %v", err)
	}
	if !ok {
		t.Fatal("failing(beta) should hold")
	}

	ok, err = k.HoldsFor("failing", "alpha")
	if err != nil {
		t.Fatalf("HoldsFor: %v", err)
	}
	if ok {
		t.Fatal("failing(alpha) should not hold")
	}
}

func TestKernelInequality(t *testing.T) {
	schemas := `
Decl table(Name).
Decl duplicated(Name).
`
	policy := `
duplicated(A) :- table(A), table(B), A != B.
`
	k := NewKernel(schemas, policy)
	err := k.LoadFacts([]Fact{
		{Predicate: "table", Args: []interface{}{"COLORS"}},
	})
	if err != nil {
		t.Fatalf("LoadFacts: %v", err)
	}
	ok, err := k.Holds("duplicated")
	if err != nil {
		t.Fatalf("Holds: %v", err)
	}
	if ok {
		t.Fatal("duplicated should not hold with a single table")
	}

	if err := k.LoadFacts([]Fact{{Predicate: "table", Args: []interface{}{"EXTRA"}}}); err != nil {
		t.Fatalf("LoadFacts: %v", err)
	}
	ok, err = k.Holds("duplicated")
	if err != nil {
		t.Fatalf("Holds: %v", err)
	}
	if !ok {
		t.Fatal("duplicated should hold once two distinct tables exist")
	}
}

func TestKernelQueryBeforeLoad(t *testing.T) {
	k := NewKernel(testSchemas, testPolicy)
	if _, err := k.Query("passing"); err == nil {
		t.Fatal("expected error before facts are loaded")
	}
	if _, err := k.QueryAll(); err == nil {
		t.Fatal("expected error before facts are loaded")
	}
}

func TestKernelRejectsBadPolicy(t *testing.T) {
	k := NewKernel("", "broken(X :- missing")
	err := k.LoadFacts([]Fact{{Predicate: "submission", Args: []interface{}{"alpha"}}})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Fatalf("error = %v, want parse failure", err)
	}
}

func TestKernelQueryAll(t *testing.T) {
	k := NewKernel(testSchemas, testPolicy)
	err := k.LoadFacts([]Fact{
		{Predicate: "submission", Args: []interface{}{"alpha"}},
		{Predicate: "score", Args: []interface{}{"alpha", 99}},
	})
	if err != nil {
		t.Fatalf("LoadFacts: %v", err)
	}

	all, err := k.QueryAll()
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(all["passing"]) != 1 {
		t.Fatalf("passing = %v, want one fact", all["passing"])
	}
	if len(all["failing"]) != 0 {
		t.Fatalf("failing = %v, want none", all["failing"])
	}
	if k.FactCount() != 2 {
		t.Fatalf("FactCount = %d, want 2", k.FactCount())
	}
}

func TestFactString(t *testing.T) {
	tests := []struct {
		fact Fact
		want string
	}{
		{
			fact: Fact{Predicate: "constant", Args: []interface{}{"COLORS", "/const", "/array"}},
			want: `constant("COLORS", /const, /array).`,
		},
		{
			fact: Fact{Predicate: "parameter", Args: []interface{}{"value", 0, "/plain"}},
			want: `parameter("value", 0, /plain).`,
		},
		{
			fact: Fact{Predicate: "flag", Args: []interface{}{true}},
			want: `flag(/true).`,
		},
	}
	for _, tt := range tests {
		if got := tt.fact.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}
