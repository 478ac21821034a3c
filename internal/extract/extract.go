// Package extract turns a JavaScript or TypeScript submission into the fact
// bundle the analyzer reasons over: top-level functions with their signatures
// and export forms, and top-level constants with initializer shape tags.
// Extraction happens in one eager pass; nothing downstream re-parses source.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrSourceUnparsable marks a submission whose syntax tree contains error or
// missing nodes. It is a processing failure, never an analysis verdict.
var ErrSourceUnparsable = errors.New("source is not parsable")

// Extractor parses submissions with Tree-sitter. It is not safe for
// concurrent use; create one per worker.
type Extractor struct {
	jsParser *sitter.Parser
	tsParser *sitter.Parser
}

// NewExtractor creates an Extractor with JavaScript and TypeScript grammars
// loaded.
func NewExtractor() *Extractor {
	jsParser := sitter.NewParser()
	jsParser.SetLanguage(javascript.GetLanguage())
	tsParser := sitter.NewParser()
	tsParser.SetLanguage(typescript.GetLanguage())
	return &Extractor{
		jsParser: jsParser,
		tsParser: tsParser,
	}
}

// Parse parses one submission and extracts its top-level facts. The grammar
// is chosen by file extension; anything that is not .ts/.tsx is treated as
// JavaScript. The returned Program owns the syntax tree and must be Closed.
func (e *Extractor) Parse(ctx context.Context, path string, source []byte) (*Program, error) {
	parser := e.jsParser
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".ts" || ext == ".tsx" {
		parser = e.tsParser
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("%w: %s contains syntax errors", ErrSourceUnparsable, filepath.Base(path))
	}

	prog := &Program{tree: tree, source: source, exports: make(map[string]ExportForm)}

	// Separate export lists resolve after the walk, so a binding declared
	// below its export clause is still picked up.
	separateExports := make(map[string]string)
	e.walkTopLevel(root, prog, separateExports)
	resolveSeparateExports(prog, separateExports)

	return prog, nil
}

// walkTopLevel collects module-scope declarations. Function and class bodies
// are deliberately not descended into; only the module surface matters here.
func (e *Extractor) walkTopLevel(root *sitter.Node, prog *Program, separateExports map[string]string) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)

		switch child.Type() {
		case "function_declaration", "generator_function_declaration":
			e.collectFuncDecl(child, prog, false)

		case "lexical_declaration", "variable_declaration":
			e.collectVarDecl(child, prog, false)

		case "export_statement":
			e.collectExport(child, prog, separateExports)
		}
	}
}

// collectExport handles both export forms: an exported declaration and an
// export specifier list. Default exports provide no named surface and are
// skipped.
func (e *Extractor) collectExport(node *sitter.Node, prog *Program, separateExports map[string]string) {
	if hasDefaultKeyword(node) {
		return
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case "function_declaration", "generator_function_declaration":
			e.collectFuncDecl(decl, prog, true)
		case "lexical_declaration", "variable_declaration":
			e.collectVarDecl(decl, prog, true)
		}
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			spec := clause.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			local := prog.Text(nameNode)
			exported := local
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = prog.Text(alias)
			}
			separateExports[local] = exported
		}
	}
}

// collectFuncDecl records a top-level function declaration.
func (e *Extractor) collectFuncDecl(node *sitter.Node, prog *Program, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	fn := Function{
		Name:   prog.Text(nameNode),
		Export: ExportNone,
		Params: e.extractParams(node, prog),
		Line:   int(node.StartPoint().Row) + 1,
		Node:   node,
		Body:   node.ChildByFieldName("body"),
	}
	if exported {
		fn.Export = ExportInline
		fn.ExportedName = fn.Name
		prog.exports[fn.Name] = ExportInline
	}
	prog.functions = append(prog.functions, fn)
}

// collectVarDecl records each declarator of a const/let/var statement as a
// top-level constant, and additionally as a function when the initializer is
// an arrow or function expression.
func (e *Extractor) collectVarDecl(node *sitter.Node, prog *Program, exported bool) {
	kind := declKind(node)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}

		name := prog.Text(nameNode)
		line := int(child.StartPoint().Row) + 1
		shape, keys := classifyShape(valueNode, prog)
		if exported {
			prog.exports[name] = ExportInline
		}

		prog.constants = append(prog.constants, TopLevelConstant{
			Name:     name,
			Kind:     kind,
			Shape:    shape,
			Exported: exported,
			Line:     line,
			Keys:     keys,
			Value:    valueNode,
		})

		if shape == ShapeFunction {
			fn := Function{
				Name:   name,
				Export: ExportNone,
				Params: e.extractParams(valueNode, prog),
				Line:   line,
				Node:   valueNode,
				Body:   valueNode.ChildByFieldName("body"),
			}
			if exported {
				fn.Export = ExportInline
				fn.ExportedName = name
			}
			prog.functions = append(prog.functions, fn)
		}
	}
}

// extractParams reads the formal parameter list of a function node.
func (e *Extractor) extractParams(fn *sitter.Node, prog *Program) []Param {
	var params []Param

	list := fn.ChildByFieldName("parameters")
	if list == nil {
		// Concise arrow with a single bare parameter.
		if single := fn.ChildByFieldName("parameter"); single != nil {
			params = append(params, Param{Name: prog.Text(single), Kind: ParamPlain})
		}
		return params
	}

	for i := 0; i < int(list.NamedChildCount()); i++ {
		params = append(params, classifyParam(list.NamedChild(i), prog))
	}
	return params
}

// classifyParam maps one parameter node to its kind. TypeScript wraps each
// parameter in a required_parameter/optional_parameter node carrying the type
// annotation; unwrap first, then classify the pattern inside.
func classifyParam(node *sitter.Node, prog *Program) Param {
	typeAnnotation := ""
	switch node.Type() {
	case "required_parameter", "optional_parameter":
		if t := node.ChildByFieldName("type"); t != nil && t.NamedChildCount() > 0 {
			typeAnnotation = prog.Text(t.NamedChild(0))
		}
		if pattern := node.ChildByFieldName("pattern"); pattern != nil {
			node = pattern
		}
	}

	switch node.Type() {
	case "identifier":
		return Param{Name: prog.Text(node), Kind: ParamPlain, TypeAnnotation: typeAnnotation}

	case "assignment_pattern":
		name := ""
		if left := node.ChildByFieldName("left"); left != nil {
			name = prog.Text(left)
		}
		return Param{Name: name, Kind: ParamDefaulted, TypeAnnotation: typeAnnotation}

	case "rest_pattern":
		name := strings.TrimPrefix(prog.Text(node), "...")
		if node.NamedChildCount() > 0 {
			name = prog.Text(node.NamedChild(0))
		}
		return Param{Name: name, Kind: ParamRest, TypeAnnotation: typeAnnotation}

	case "array_pattern":
		return Param{
			Name:           prog.Text(node),
			Kind:           ParamDestructured,
			TypeAnnotation: typeAnnotation,
			Elements:       patternElements(node, prog),
		}

	case "object_pattern":
		return Param{Name: prog.Text(node), Kind: ParamDestructured, TypeAnnotation: typeAnnotation}

	default:
		return Param{Name: prog.Text(node), Kind: ParamPlain, TypeAnnotation: typeAnnotation}
	}
}

// classifyShape tags an initializer node. Object keys are collected while the
// shape is decided so later checks never touch the tree again.
func classifyShape(value *sitter.Node, prog *Program) (Shape, []string) {
	switch value.Type() {
	case "array":
		return ShapeArray, nil

	case "object":
		return ShapeObject, objectKeys(value, prog)

	case "arrow_function", "function", "function_expression", "generator_function":
		return ShapeFunction, nil

	case "new_expression":
		ctor := value.ChildByFieldName("constructor")
		if ctor != nil && prog.Text(ctor) == "Map" {
			return ShapeObject, mapKeys(value, prog)
		}
		return ShapeOther, nil

	default:
		return ShapeOther, nil
	}
}

// objectKeys returns the property names of an object literal. A spread,
// computed key, or method makes the key set statically unknown and yields
// nil.
func objectKeys(node *sitter.Node, prog *Program) []string {
	keys := make([]string, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "pair":
			keyNode := child.ChildByFieldName("key")
			if keyNode == nil {
				return nil
			}
			switch keyNode.Type() {
			case "property_identifier", "number":
				keys = append(keys, prog.Text(keyNode))
			case "string":
				keys = append(keys, stripQuotes(prog.Text(keyNode)))
			default:
				return nil
			}
		case "shorthand_property_identifier":
			keys = append(keys, prog.Text(child))
		case "comment":
			continue
		default:
			return nil
		}
	}
	return keys
}

// mapKeys returns the entry keys of a new Map([[k, v], ...]) construction,
// nil when any key is not a plain literal.
func mapKeys(node *sitter.Node, prog *Program) []string {
	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return []string{}
	}

	entries := args.NamedChild(0)
	if entries.Type() != "array" {
		return nil
	}

	keys := make([]string, 0, entries.NamedChildCount())
	for i := 0; i < int(entries.NamedChildCount()); i++ {
		entry := entries.NamedChild(i)
		if entry.Type() != "array" || entry.NamedChildCount() == 0 {
			return nil
		}
		keyNode := entry.NamedChild(0)
		switch keyNode.Type() {
		case "string":
			keys = append(keys, stripQuotes(prog.Text(keyNode)))
		case "number":
			keys = append(keys, prog.Text(keyNode))
		default:
			return nil
		}
	}
	return keys
}

// declKind reads the declaration keyword token.
func declKind(node *sitter.Node) DeclKind {
	if node.ChildCount() > 0 {
		switch node.Child(0).Type() {
		case "const":
			return DeclConst
		case "let":
			return DeclLet
		case "var":
			return DeclVar
		}
	}
	if node.Type() == "variable_declaration" {
		return DeclVar
	}
	return DeclConst
}

// hasDefaultKeyword reports whether an export statement is a default export.
func hasDefaultKeyword(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			return true
		}
	}
	return false
}

// patternElements returns the binding names of an array pattern, nil when
// any element is not a plain identifier.
func patternElements(node *sitter.Node, prog *Program) []string {
	elements := make([]string, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "identifier" {
			return nil
		}
		elements = append(elements, prog.Text(child))
	}
	return elements
}

// resolveSeparateExports marks bindings reached through an export list.
func resolveSeparateExports(prog *Program, separateExports map[string]string) {
	for i := range prog.functions {
		fn := &prog.functions[i]
		if fn.Export != ExportNone {
			continue
		}
		if exported, ok := separateExports[fn.Name]; ok {
			fn.Export = ExportSeparate
			fn.ExportedName = exported
		}
	}
	for i := range prog.constants {
		c := &prog.constants[i]
		if c.Exported {
			continue
		}
		if _, ok := separateExports[c.Name]; ok {
			c.Exported = true
		}
	}
	for _, exported := range separateExports {
		if _, ok := prog.exports[exported]; !ok {
			prog.exports[exported] = ExportSeparate
		}
	}
}

// stripQuotes removes matching string delimiters.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
