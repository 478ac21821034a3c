// Package comment defines the feedback vocabulary the analyzer can emit.
// A comment is a namespaced template identifier plus a parameter map; turning
// that pair into human-readable text is the renderer's job, never the
// engine's.
package comment

// Severity classifies how a comment affects the verdict.
type Severity string

const (
	// SeverityBlocking comments fail the submission on the spot.
	SeverityBlocking Severity = "blocking"
	// SeverityAdvisory comments ride along with an approval.
	SeverityAdvisory Severity = "advisory"
)

// Template identifiers understood by the website copy repository.
const (
	IDNoMethod            = "javascript.general.no_method"
	IDNoNamedExport       = "javascript.general.no_named_export"
	IDNoParameter         = "javascript.general.no_parameter"
	IDUnexpectedSplatArgs = "javascript.general.unexpected_splat_args"
	IDTipExportInline     = "javascript.general.tip_export_inline"
)

// Comment is one piece of feedback addressed at a submission.
type Comment struct {
	ID       string            `json:"comment"`
	Params   map[string]string `json:"params,omitempty"`
	Severity Severity          `json:"-"`
}

// IsBlocking reports whether the comment fails the submission.
func (c Comment) IsBlocking() bool {
	return c.Severity == SeverityBlocking
}

// NoMethod reports that the expected function is missing entirely.
func NoMethod(methodName string) Comment {
	return Comment{
		ID:       IDNoMethod,
		Params:   map[string]string{"method_name": methodName},
		Severity: SeverityBlocking,
	}
}

// NoNamedExport reports that the function exists but is never exported
// under the expected name.
func NoNamedExport(exportName string) Comment {
	return Comment{
		ID:       IDNoNamedExport,
		Params:   map[string]string{"export_name": exportName},
		Severity: SeverityBlocking,
	}
}

// NoParameter reports a parameterless signature.
func NoParameter(functionName string) Comment {
	return Comment{
		ID:       IDNoParameter,
		Params:   map[string]string{"function_name": functionName},
		Severity: SeverityBlocking,
	}
}

// UnexpectedSplatArgs reports a rest parameter where a plain parameter was
// expected. parameterType carries the declared annotation, or "untyped" for
// plain JavaScript.
func UnexpectedSplatArgs(splatArgName, parameterType string) Comment {
	if parameterType == "" {
		parameterType = "untyped"
	}
	return Comment{
		ID: IDUnexpectedSplatArgs,
		Params: map[string]string{
			"splat_arg_name": splatArgName,
			"parameter_type": parameterType,
		},
		Severity: SeverityBlocking,
	}
}

// TipExportInline suggests merging a separate export list into the
// declaration itself.
func TipExportInline() Comment {
	return Comment{
		ID:       IDTipExportInline,
		Severity: SeverityAdvisory,
	}
}

// List accumulates the comments of a single run in emission order.
// The zero value is ready to use.
type List struct {
	items []Comment
}

// Add appends comments to the list.
func (l *List) Add(comments ...Comment) {
	l.items = append(l.items, comments...)
}

// HasBlocking reports whether any recorded comment is blocking.
func (l *List) HasBlocking() bool {
	for _, c := range l.items {
		if c.IsBlocking() {
			return true
		}
	}
	return false
}

// Items returns the recorded comments in emission order.
func (l *List) Items() []Comment {
	return l.items
}

// Len returns the number of recorded comments.
func (l *List) Len() int {
	return len(l.items)
}
