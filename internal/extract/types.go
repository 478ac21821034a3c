package extract

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// DeclKind is the declaration keyword of a top-level binding.
type DeclKind string

const (
	DeclConst DeclKind = "const"
	DeclLet   DeclKind = "let"
	DeclVar   DeclKind = "var"
)

// Shape tags the initializer of a top-level binding. The tag is decided once
// during extraction; downstream checks branch on the tag instead of
// re-inspecting the syntax tree.
type Shape string

const (
	// ShapeArray is an array literal.
	ShapeArray Shape = "array"
	// ShapeObject is an object literal or a new Map(...) construction.
	ShapeObject Shape = "object"
	// ShapeFunction is an arrow function or function expression.
	ShapeFunction Shape = "function"
	// ShapeOther is any initializer outside the closed set above.
	ShapeOther Shape = "other"
)

// ExportForm describes how a top-level binding reaches the module surface.
type ExportForm string

const (
	// ExportNone means the binding is module-private.
	ExportNone ExportForm = "none"
	// ExportInline means the declaration itself carries the export keyword.
	ExportInline ExportForm = "inline"
	// ExportSeparate means the binding is exported through an export list,
	// possibly under an alias.
	ExportSeparate ExportForm = "separate"
)

// ParamKind classifies a function parameter.
type ParamKind string

const (
	ParamPlain        ParamKind = "plain"
	ParamDefaulted    ParamKind = "defaulted"
	ParamRest         ParamKind = "rest"
	ParamDestructured ParamKind = "destructured"
)

// Param is one formal parameter of an extracted function.
type Param struct {
	Name string
	Kind ParamKind
	// TypeAnnotation is the declared type for TypeScript submissions,
	// empty for plain JavaScript.
	TypeAnnotation string
	// Elements holds the binding names of an array destructuring pattern
	// when every element is a plain identifier, nil otherwise.
	Elements []string
}

// TypeOrUntyped returns the declared annotation, or "untyped" when the
// submission carries none.
func (p Param) TypeOrUntyped() string {
	if p.TypeAnnotation == "" {
		return "untyped"
	}
	return p.TypeAnnotation
}

// Function is a top-level function binding: a declaration, a function
// expression, or an arrow bound to a const/let/var.
type Function struct {
	// Name is the local binding name.
	Name string
	// ExportedName is the name under which the binding is exported,
	// empty when Export is ExportNone.
	ExportedName string
	Export       ExportForm
	Params       []Param
	Line         int

	// Node is the function node itself; Body is its body, either a
	// statement block or the bare expression of a concise arrow.
	// Both remain valid until Program.Close.
	Node *sitter.Node
	Body *sitter.Node
}

// TopLevelConstant is a module-scope const/let/var binding with its
// initializer shape tag.
type TopLevelConstant struct {
	Name     string
	Kind     DeclKind
	Shape    Shape
	Exported bool
	Line     int

	// Keys holds the property names of an object-shaped initializer when
	// every key is statically known, nil otherwise.
	Keys []string

	// Value is the initializer node, valid until Program.Close.
	Value *sitter.Node
}

// Program is the extracted view of one submission. It owns the underlying
// syntax tree; callers must Close it when the run is over.
type Program struct {
	tree      *sitter.Tree
	source    []byte
	functions []Function
	constants []TopLevelConstant
	exports   map[string]ExportForm
}

// Close releases the syntax tree. Nodes handed out by this Program are
// invalid afterwards.
func (p *Program) Close() {
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
}

// Source returns the raw submission bytes.
func (p *Program) Source() []byte {
	return p.source
}

// Text returns the source text a node spans.
func (p *Program) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(p.source[n.StartByte():n.EndByte()])
}

// NamedExport reports whether the module exports anything under the given
// name, and through which form. A dangling export list entry counts: the
// export surface exists even when the binding behind it does not.
func (p *Program) NamedExport(name string) (ExportForm, bool) {
	form, ok := p.exports[name]
	if !ok {
		return ExportNone, false
	}
	return form, true
}

// Function finds a top-level function by its local or exported name.
func (p *Program) Function(name string) (*Function, bool) {
	for i := range p.functions {
		fn := &p.functions[i]
		if fn.Name == name || fn.ExportedName == name {
			return fn, true
		}
	}
	return nil, false
}

// Functions returns every top-level function in source order.
func (p *Program) Functions() []Function {
	return p.functions
}

// TopLevelConstants returns module-scope bindings in source order,
// filtered to the given shapes. With no filter every binding is returned.
func (p *Program) TopLevelConstants(shapes ...Shape) []TopLevelConstant {
	if len(shapes) == 0 {
		return p.constants
	}
	var out []TopLevelConstant
	for _, c := range p.constants {
		for _, s := range shapes {
			if c.Shape == s {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
