package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/comment"
)

func TestNew_LoadsAllTemplates(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := []string{
		comment.IDNoMethod,
		comment.IDNoNamedExport,
		comment.IDNoParameter,
		comment.IDTipExportInline,
		comment.IDUnexpectedSplatArgs,
	}
	if diff := cmp.Diff(want, renderer.IDs()); diff != "" {
		t.Errorf("template IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplate_Placeholders(t *testing.T) {
	renderer := MustNew()

	tests := []struct {
		id   string
		want []string
	}{
		{comment.IDNoMethod, []string{"method_name"}},
		{comment.IDNoNamedExport, []string{"export_name"}},
		{comment.IDNoParameter, []string{"function_name"}},
		{comment.IDUnexpectedSplatArgs, []string{"parameter_type", "splat_arg_name"}},
		{comment.IDTipExportInline, nil},
	}
	for _, tt := range tests {
		tmpl, ok := renderer.Template(tt.id)
		if !ok {
			t.Errorf("no template for %s", tt.id)
			continue
		}
		if diff := cmp.Diff(tt.want, tmpl.Placeholders()); diff != "" {
			t.Errorf("%s placeholders mismatch (-want +got):\n%s", tt.id, diff)
		}
	}
}

func TestRender_InterpolatesParams(t *testing.T) {
	renderer := MustNew()

	body, err := renderer.Render(comment.NoMethod("value"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(body, "`value`") {
		t.Errorf("expected body to contain the interpolated name:\n%s", body)
	}
	if strings.Contains(body, "%{") {
		t.Errorf("expected no placeholders left in body:\n%s", body)
	}
}

// Every comment the engine can emit must render. This is the runtime mirror
// of the template lint tool.
func TestRender_AllFactories(t *testing.T) {
	renderer := MustNew()

	comments := []comment.Comment{
		comment.NoMethod("value"),
		comment.NoNamedExport("value"),
		comment.NoParameter("value"),
		comment.UnexpectedSplatArgs("colors", "untyped"),
		comment.UnexpectedSplatArgs("colors", "string[]"),
		comment.TipExportInline(),
	}
	for _, c := range comments {
		body, err := renderer.Render(c)
		if err != nil {
			t.Errorf("Render(%s) failed: %v", c.ID, err)
			continue
		}
		if strings.TrimSpace(body) == "" {
			t.Errorf("Render(%s) produced an empty body", c.ID)
		}
	}
}

func TestRender_MissingParam(t *testing.T) {
	renderer := MustNew()

	_, err := renderer.Render(comment.Comment{ID: comment.IDNoMethod})
	if err == nil {
		t.Fatal("expected an error for a comment without params")
	}
	if !strings.Contains(err.Error(), "method_name") {
		t.Errorf("expected the error to name the missing param, got: %v", err)
	}
}

func TestRender_UnknownID(t *testing.T) {
	renderer := MustNew()

	if _, err := renderer.Render(comment.Comment{ID: "javascript.general.nonexistent"}); err == nil {
		t.Fatal("expected an error for an unknown comment ID")
	}
}

func TestRenderResult(t *testing.T) {
	renderer := MustNew()

	result := analyzer.NewResult(analyzer.VerdictDisapproved, []comment.Comment{
		comment.NoMethod("value"),
		comment.NoNamedExport("value"),
	})
	doc, err := renderer.RenderResult(result)
	if err != nil {
		t.Fatalf("RenderResult failed: %v", err)
	}

	for _, want := range []string{
		"# Analysis: disapprove",
		"## " + comment.IDNoMethod,
		"## " + comment.IDNoNamedExport,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected document to contain %q:\n%s", want, doc)
		}
	}
}

func TestRenderResult_NoComments(t *testing.T) {
	renderer := MustNew()

	doc, err := renderer.RenderResult(analyzer.NewResult(analyzer.VerdictApproved, nil))
	if err != nil {
		t.Fatalf("RenderResult failed: %v", err)
	}
	if !strings.Contains(doc, "No comments.") {
		t.Errorf("expected an explicit no-comments marker:\n%s", doc)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# Heading\n\nSome *styled* text.\n", 80)
	if err != nil {
		t.Fatalf("Terminal failed: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Error("expected non-empty terminal output")
	}
}
