// Package main implements a template drift linter for the analyzer.
//
// It cross-checks:
// - Comment ID constants declared in internal/comment
// - Embedded markdown templates in internal/render
// - The params each comment factory actually sets
//
// Template bodies are also parsed as markdown and checked for broken
// links and unlabeled code fences.
//
// Usage:
//
//	go run ./cmd/tools/comment_lint -comment-file internal/comment/comment.go
package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/crashb/javascript-analyzer/internal/comment"
	"github.com/crashb/javascript-analyzer/internal/render"
)

type issueSeverity string

const (
	severityError   issueSeverity = "error"
	severityWarning issueSeverity = "warning"
)

type issue struct {
	Severity issueSeverity
	ID       string
	Message  string
}

func main() {
	commentFile := flag.String("comment-file", "internal/comment/comment.go", "Path to the comment ID constant declarations")
	failOnWarn := flag.Bool("fail-on-warn", false, "Exit non-zero if warnings are present")
	flag.Parse()

	declared, err := extractCommentIDs(*commentFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "comment_lint: failed to scan comment constants: %v\n", err)
		os.Exit(2)
	}

	renderer, err := render.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "comment_lint: failed to load templates: %v\n", err)
		os.Exit(2)
	}
	var templates []render.Template
	for _, id := range renderer.IDs() {
		tmpl, _ := renderer.Template(id)
		templates = append(templates, tmpl)
	}

	issues := lint(declared, templates, knownFactories())

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity < issues[j].Severity
		}
		if issues[i].ID != issues[j].ID {
			return issues[i].ID < issues[j].ID
		}
		return issues[i].Message < issues[j].Message
	})

	var errCount, warnCount int
	for _, it := range issues {
		switch it.Severity {
		case severityError:
			errCount++
		case severityWarning:
			warnCount++
		}
	}

	fmt.Printf("Comments: declared=%d, templates=%d, factories=%d\n", len(declared), len(templates), len(knownFactories()))
	if errCount == 0 && warnCount == 0 {
		fmt.Println("OK: no issues found")
		return
	}

	fmt.Printf("Issues: %d errors, %d warnings\n", errCount, warnCount)
	for _, it := range issues {
		fmt.Printf("- %s: %s: %s\n", it.Severity, it.ID, it.Message)
	}

	if errCount > 0 || (*failOnWarn && warnCount > 0) {
		os.Exit(1)
	}
}

// knownFactories instantiates every comment factory with sample arguments.
// A new factory must be added here to get param coverage.
func knownFactories() []comment.Comment {
	return []comment.Comment{
		comment.NoMethod("method"),
		comment.NoNamedExport("export"),
		comment.NoParameter("function"),
		comment.UnexpectedSplatArgs("arg", "untyped"),
		comment.TipExportInline(),
	}
}

// commentIDRe captures the string value of an ID constant declaration.
var commentIDRe = regexp.MustCompile(`(?m)^\s*ID\w+\s*=\s*"([a-z]+\.[a-z_]+\.[a-z_]+)"`)

// extractCommentIDs scans the Go source holding the ID constants.
func extractCommentIDs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, match := range commentIDRe.FindAllStringSubmatch(string(data), -1) {
		ids = append(ids, match[1])
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no comment ID constants found in %s", path)
	}
	return uniqueSorted(ids), nil
}

// lint cross-checks declared IDs, templates, and factory params.
func lint(declared []string, templates []render.Template, factories []comment.Comment) []issue {
	var issues []issue

	declaredSet := make(map[string]bool, len(declared))
	for _, id := range declared {
		declaredSet[id] = true
	}

	templateByID := make(map[string]render.Template, len(templates))
	for _, tmpl := range templates {
		templateByID[tmpl.ID] = tmpl
	}

	factoryParams := make(map[string][]string, len(factories))
	for _, c := range factories {
		factoryParams[c.ID] = paramNames(c)
	}

	for _, id := range declared {
		if _, ok := templateByID[id]; !ok {
			issues = append(issues, issue{severityError, id, "no template for comment constant"})
		}
		if _, ok := factoryParams[id]; !ok {
			issues = append(issues, issue{severityWarning, id, "comment constant has no factory known to the linter"})
		}
	}

	for _, tmpl := range templates {
		if !declaredSet[tmpl.ID] {
			issues = append(issues, issue{severityWarning, tmpl.ID, "template has no matching comment constant"})
		}

		placeholders := tmpl.Placeholders()
		if params, ok := factoryParams[tmpl.ID]; ok {
			paramSet := make(map[string]bool, len(params))
			for _, p := range params {
				paramSet[p] = true
			}
			placeholderSet := make(map[string]bool, len(placeholders))
			for _, p := range placeholders {
				placeholderSet[p] = true
			}

			for _, p := range placeholders {
				if !paramSet[p] {
					issues = append(issues, issue{severityError, tmpl.ID, fmt.Sprintf("placeholder %%{%s} has no factory param", p)})
				}
			}
			for _, p := range params {
				if !placeholderSet[p] {
					issues = append(issues, issue{severityWarning, tmpl.ID, fmt.Sprintf("factory param %s unused by template", p)})
				}
			}
		}

		issues = append(issues, lintMarkdown(tmpl.ID, tmpl.Body)...)
	}

	return issues
}

// lintMarkdown parses a template body and flags broken links and
// unlabeled code fences.
func lintMarkdown(id, body string) []issue {
	var issues []issue

	md := goldmark.New()
	reader := text.NewReader([]byte(body))
	doc := md.Parser().Parse(reader)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			if len(node.Destination) == 0 {
				issues = append(issues, issue{severityError, id, "link with empty destination"})
			}
		case *ast.FencedCodeBlock:
			if len(node.Language(reader.Source())) == 0 {
				issues = append(issues, issue{severityWarning, id, "fenced code block without language"})
			}
		}
		return ast.WalkContinue, nil
	})

	return issues
}

func paramNames(c comment.Comment) []string {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
