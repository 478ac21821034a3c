package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crashb/javascript-analyzer/internal/render"
)

func TestExtractCommentIDs(t *testing.T) {
	source := `package comment

const (
	IDNoMethod      = "javascript.general.no_method"
	IDTipSomething  = "javascript.general.tip_something"
	IDNoMethod2     = "javascript.general.no_method"
)

const unrelated = "not.a.comment id"
`
	path := filepath.Join(t.TempDir(), "comment.go")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ids, err := extractCommentIDs(path)
	if err != nil {
		t.Fatalf("extractCommentIDs failed: %v", err)
	}

	want := []string{
		"javascript.general.no_method",
		"javascript.general.tip_something",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("extracted IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractCommentIDs_NoConstants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.go")
	if err := os.WriteFile(path, []byte("package comment\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := extractCommentIDs(path); err == nil {
		t.Fatal("expected an error for a file without ID constants")
	}
}

// The shipped constants, templates, and factories must agree. This is the
// check the tool exists for; a failure here means the sets drifted.
func TestLint_ShippedSetIsClean(t *testing.T) {
	declared, err := extractCommentIDs("../../../internal/comment/comment.go")
	if err != nil {
		t.Fatalf("extractCommentIDs failed: %v", err)
	}

	renderer := render.MustNew()
	var templates []render.Template
	for _, id := range renderer.IDs() {
		tmpl, _ := renderer.Template(id)
		templates = append(templates, tmpl)
	}

	issues := lint(declared, templates, knownFactories())
	for _, it := range issues {
		t.Errorf("unexpected issue: %s: %s: %s", it.Severity, it.ID, it.Message)
	}
}

func TestLint_MissingTemplate(t *testing.T) {
	declared := []string{"javascript.general.brand_new"}

	issues := lint(declared, nil, knownFactories())

	var found bool
	for _, it := range issues {
		if it.Severity == severityError && it.ID == "javascript.general.brand_new" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error for the constant without a template, got %v", issues)
	}
}

func TestLint_OrphanTemplate(t *testing.T) {
	templates := []render.Template{{ID: "javascript.general.orphan", Body: "Some body."}}

	issues := lint(nil, templates, nil)

	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %v", issues)
	}
	if issues[0].Severity != severityWarning {
		t.Errorf("expected a warning, got %s", issues[0].Severity)
	}
}

func TestLint_PlaceholderWithoutParam(t *testing.T) {
	declared := []string{"javascript.general.no_method"}
	templates := []render.Template{{
		ID:   "javascript.general.no_method",
		Body: "Mentions %{method_name} and %{bogus_param}.",
	}}

	issues := lint(declared, templates, knownFactories())

	var found bool
	for _, it := range issues {
		if it.Severity == severityError && it.ID == "javascript.general.no_method" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error for the unsatisfiable placeholder, got %v", issues)
	}
}

func TestLint_UnusedFactoryParam(t *testing.T) {
	declared := []string{"javascript.general.no_method"}
	templates := []render.Template{{
		ID:   "javascript.general.no_method",
		Body: "No placeholders here.",
	}}

	issues := lint(declared, templates, knownFactories())

	var found bool
	for _, it := range issues {
		if it.Severity == severityWarning && it.ID == "javascript.general.no_method" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning for the unused factory param, got %v", issues)
	}
}

func TestLintMarkdown_EmptyLink(t *testing.T) {
	issues := lintMarkdown("x", "See [the docs]() for details.")

	if len(issues) != 1 || issues[0].Severity != severityError {
		t.Fatalf("expected one error for the empty link, got %v", issues)
	}
}

func TestLintMarkdown_UnlabeledFence(t *testing.T) {
	issues := lintMarkdown("x", "```\ncode\n```\n")

	if len(issues) != 1 || issues[0].Severity != severityWarning {
		t.Fatalf("expected one warning for the unlabeled fence, got %v", issues)
	}
}

func TestLintMarkdown_CleanBody(t *testing.T) {
	body := "A [link](https://example.com) and a fence:\n\n```javascript\nconst x = 1;\n```\n"
	if issues := lintMarkdown("x", body); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}
