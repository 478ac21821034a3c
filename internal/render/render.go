// Package render turns analysis comments into human-readable markdown. The
// per-comment bodies are YAML templates baked into the binary at compile
// time, so the CLI has no filesystem dependency for its own copy.
package render

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/comment"
)

// embeddedTemplates contains all YAML files from templates/ baked into the
// binary.
//
//go:embed templates
var embeddedTemplates embed.FS

// placeholderRe matches %{name} placeholders in template bodies.
var placeholderRe = regexp.MustCompile(`%\{([a-z][a-z0-9_]*)\}`)

// Template is one comment body: markdown with %{name} placeholders.
type Template struct {
	ID      string `yaml:"id"`
	Summary string `yaml:"summary,omitempty"`
	Body    string `yaml:"body"`
}

// Placeholders returns the sorted set of parameter names the body expects.
func (t Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range placeholderRe.FindAllStringSubmatch(t.Body, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	sort.Strings(names)
	return names
}

// Renderer resolves comment IDs to templates and interpolates parameters.
type Renderer struct {
	templates map[string]Template
}

// New loads the embedded templates.
func New() (*Renderer, error) {
	templates := make(map[string]Template)

	err := fs.WalkDir(embeddedTemplates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		parsed, parseErr := parseTemplateFile(path)
		if parseErr != nil {
			return fmt.Errorf("parse %s: %w", path, parseErr)
		}
		for _, tmpl := range parsed {
			if _, exists := templates[tmpl.ID]; exists {
				return fmt.Errorf("duplicate template id %s in %s", tmpl.ID, path)
			}
			templates[tmpl.ID] = tmpl
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk embedded templates: %w", err)
	}

	return &Renderer{templates: templates}, nil
}

// MustNew loads the embedded templates and panics on error. The templates
// ship inside the binary, so a failure here is a build defect.
func MustNew() *Renderer {
	renderer, err := New()
	if err != nil {
		panic(fmt.Sprintf("failed to load embedded templates: %v", err))
	}
	return renderer
}

// parseTemplateFile parses one embedded YAML file as a template list.
func parseTemplateFile(path string) ([]Template, error) {
	data, err := embeddedTemplates.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded file: %w", err)
	}

	var parsed []Template
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for _, tmpl := range parsed {
		if tmpl.ID == "" {
			return nil, fmt.Errorf("template missing id")
		}
		if strings.TrimSpace(tmpl.Body) == "" {
			return nil, fmt.Errorf("template %s has no body", tmpl.ID)
		}
	}
	return parsed, nil
}

// IDs returns the sorted template IDs.
func (r *Renderer) IDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Template returns the template for a comment ID.
func (r *Renderer) Template(id string) (Template, bool) {
	tmpl, ok := r.templates[id]
	return tmpl, ok
}

// Render interpolates a comment's params into its template body. Every
// placeholder must be satisfied; unknown IDs and missing params are errors
// rather than silently broken output.
func (r *Renderer) Render(c comment.Comment) (string, error) {
	tmpl, ok := r.templates[c.ID]
	if !ok {
		return "", fmt.Errorf("no template for comment %s", c.ID)
	}

	var missing []string
	body := placeholderRe.ReplaceAllStringFunc(tmpl.Body, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := c.Params[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("comment %s missing params: %s", c.ID, strings.Join(missing, ", "))
	}

	return strings.TrimRight(body, "\n"), nil
}

// RenderResult renders a full analysis outcome as one markdown document.
func (r *Renderer) RenderResult(result *analyzer.Result) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis: %s\n", result.Verdict)

	if len(result.Comments) == 0 {
		b.WriteString("\nNo comments.\n")
		return b.String(), nil
	}

	for _, c := range result.Comments {
		body, err := r.Render(c)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", c.ID, body)
	}
	return b.String(), nil
}

// Terminal renders markdown for terminal display, styled for the current
// terminal background and wrapped at the given width.
func Terminal(markdown string, wrap int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
