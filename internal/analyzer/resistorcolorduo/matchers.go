package resistorcolorduo

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/crashb/javascript-analyzer/internal/extract"
)

// matchContext carries what the body matchers need: the submission, the
// entry function, the candidate lookup tables, and the validated lookup
// helpers. A pattern either matches exactly or not at all.
type matchContext struct {
	prog    *extract.Program
	fn      *extract.Function
	tables  map[string]bool
	helpers map[string]bool
}

func newMatchContext(prog *extract.Program, fn *extract.Function) *matchContext {
	mc := &matchContext{
		prog:    prog,
		fn:      fn,
		tables:  make(map[string]bool),
		helpers: make(map[string]bool),
	}

	for _, c := range prog.TopLevelConstants(extract.ShapeArray, extract.ShapeObject) {
		if c.Shape == extract.ShapeObject && !hasCanonicalColorKeys(c.Keys) {
			continue
		}
		mc.tables[c.Name] = true
	}

	for _, f := range prog.Functions() {
		if f.Name == fn.Name {
			continue
		}
		if mc.isLookupHelper(&f) {
			mc.helpers[f.Name] = true
		}
	}

	return mc
}

// isLookupHelper validates a factored-out lookup: one plain parameter, a
// body of a single lookup expression, no conditional, no reassignment.
func (mc *matchContext) isLookupHelper(f *extract.Function) bool {
	if len(f.Params) != 1 || f.Params[0].Kind != extract.ParamPlain {
		return false
	}
	if containsBranchingOrAssignment(f.Node) {
		return false
	}
	expr := singleExpression(f.Body)
	if expr == nil {
		return false
	}
	return mc.isLookup(expr, identRef(f.Params[0].Name))
}

// matchMapJoin recognizes map-over-input plus join('') wrapped in a numeric
// coercion. The second result reports a parseInt-family coercion: the shape
// holds, but the strict-coercion rule fails it downstream.
func (mc *matchContext) matchMapJoin() (bool, bool) {
	expr := singleExpression(mc.fn.Body)
	if expr == nil {
		return false, false
	}

	inner, radix, ok := mc.numericCoercion(expr)
	if !ok {
		return false, false
	}
	if !mc.isJoinedDigits(inner) {
		return false, false
	}
	return true, radix
}

// matchArithmeticJoin recognizes lookup(first) * 10 + lookup(second).
func (mc *matchContext) matchArithmeticJoin() bool {
	expr := singleExpression(mc.fn.Body)
	if expr == nil {
		return false
	}
	first, second, ok := mc.inputElements()
	if !ok {
		return false
	}

	op, left, right := binaryParts(expr, mc.prog)
	if op != "+" {
		return false
	}

	if mc.isTensTerm(left, first) && mc.isLookupApplication(right, second) {
		return true
	}
	return mc.isTensTerm(right, first) && mc.isLookupApplication(left, second)
}

// matchReduce recognizes input.reverse().reduce(callback, 0) with the seed
// optional and the callback accumulating digit * 10 ** index.
func (mc *matchContext) matchReduce() bool {
	expr := singleExpression(mc.fn.Body)
	if expr == nil || expr.Type() != "call_expression" {
		return false
	}

	recv, prop := memberCallee(expr, mc.prog)
	if prop != "reduce" {
		return false
	}

	args := namedArgs(expr)
	if len(args) != 1 && len(args) != 2 {
		return false
	}
	if len(args) == 2 && !isNumberLiteral(args[1], "0", mc.prog) {
		return false
	}

	// The input must be reversed so band order lines up with the powers.
	recv = unwrap(recv)
	if recv == nil || recv.Type() != "call_expression" {
		return false
	}
	revRecv, revProp := memberCallee(recv, mc.prog)
	if revProp != "reverse" || len(namedArgs(recv)) != 0 {
		return false
	}
	if !mc.isInputArray(revRecv) {
		return false
	}

	return mc.isAccumulatorCallback(args[0])
}

// numericCoercion unwraps Number(x) and unary +x, and flags the parseInt
// family (parseInt, Number.parseInt) as a radix parse.
func (mc *matchContext) numericCoercion(n *sitter.Node) (inner *sitter.Node, radix bool, ok bool) {
	n = unwrap(n)
	if n == nil {
		return nil, false, false
	}

	switch n.Type() {
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op != nil && arg != nil && mc.prog.Text(op) == "+" {
			return arg, false, true
		}

	case "call_expression":
		args := namedArgs(n)
		if len(args) == 0 {
			return nil, false, false
		}
		callee := unwrap(n.ChildByFieldName("function"))
		if callee == nil {
			return nil, false, false
		}

		switch callee.Type() {
		case "identifier":
			switch mc.prog.Text(callee) {
			case "Number":
				if len(args) == 1 {
					return args[0], false, true
				}
			case "parseInt":
				if len(args) <= 2 {
					return args[0], true, true
				}
			}
		case "member_expression":
			obj := unwrap(callee.ChildByFieldName("object"))
			propNode := callee.ChildByFieldName("property")
			if obj != nil && propNode != nil &&
				obj.Type() == "identifier" && mc.prog.Text(obj) == "Number" &&
				mc.prog.Text(propNode) == "parseInt" && len(args) <= 2 {
				return args[0], true, true
			}
		}
	}
	return nil, false, false
}

// isJoinedDigits matches input.map(lookup).join('').
func (mc *matchContext) isJoinedDigits(n *sitter.Node) bool {
	n = unwrap(n)
	if n == nil || n.Type() != "call_expression" {
		return false
	}

	recv, prop := memberCallee(n, mc.prog)
	if prop != "join" {
		return false
	}
	args := namedArgs(n)
	if len(args) != 1 || !isEmptyString(args[0], mc.prog) {
		return false
	}

	recv = unwrap(recv)
	if recv == nil || recv.Type() != "call_expression" {
		return false
	}
	mapRecv, mapProp := memberCallee(recv, mc.prog)
	if mapProp != "map" {
		return false
	}
	if !mc.isInputArray(mapRecv) {
		return false
	}

	mapArgs := namedArgs(recv)
	return len(mapArgs) == 1 && mc.isLookupCallback(mapArgs[0])
}

// isLookupCallback accepts a validated helper by name, or an inline callback
// holding a single lookup over its one parameter.
func (mc *matchContext) isLookupCallback(n *sitter.Node) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}

	if n.Type() == "identifier" {
		return mc.helpers[mc.prog.Text(n)]
	}

	if !isFunctionNode(n) {
		return false
	}
	if containsBranchingOrAssignment(n) {
		return false
	}
	params, ok := callbackParams(n, mc.prog)
	if !ok || len(params) != 1 {
		return false
	}
	expr := singleExpression(n.ChildByFieldName("body"))
	return expr != nil && mc.isLookup(expr, identRef(params[0]))
}

// isAccumulatorCallback checks acc + lookup(color) * 10 ** index with no
// branching and no reassignment inside the callback.
func (mc *matchContext) isAccumulatorCallback(n *sitter.Node) bool {
	n = unwrap(n)
	if n == nil || !isFunctionNode(n) {
		return false
	}
	if containsBranchingOrAssignment(n) {
		return false
	}

	params, ok := callbackParams(n, mc.prog)
	if !ok || len(params) != 3 {
		return false
	}
	acc, color, index := params[0], params[1], params[2]

	expr := singleExpression(n.ChildByFieldName("body"))
	op, left, right := binaryParts(expr, mc.prog)
	if op != "+" {
		return false
	}

	if mc.isIdent(left, acc) && mc.isPlaceTerm(right, color, index) {
		return true
	}
	return mc.isIdent(right, acc) && mc.isPlaceTerm(left, color, index)
}

// isPlaceTerm matches lookup(color) * 10 ** index in either operand order.
func (mc *matchContext) isPlaceTerm(n *sitter.Node, color, index string) bool {
	op, left, right := binaryParts(n, mc.prog)
	if op != "*" {
		return false
	}
	if mc.isLookupApplication(left, identRef(color)) && mc.isPowerOfTen(right, index) {
		return true
	}
	return mc.isLookupApplication(right, identRef(color)) && mc.isPowerOfTen(left, index)
}

// isPowerOfTen matches 10 ** index and Math.pow(10, index).
func (mc *matchContext) isPowerOfTen(n *sitter.Node, index string) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}

	if op, left, right := binaryParts(n, mc.prog); op == "**" {
		return isNumberLiteral(left, "10", mc.prog) && mc.isIdent(right, index)
	}

	if n.Type() != "call_expression" {
		return false
	}
	obj, prop := memberCallee(n, mc.prog)
	if prop != "pow" || !isIdentNamed(obj, "Math", mc.prog) {
		return false
	}
	args := namedArgs(n)
	return len(args) == 2 && isNumberLiteral(args[0], "10", mc.prog) && mc.isIdent(args[1], index)
}

// isTensTerm matches lookup(el) * 10 in either operand order.
func (mc *matchContext) isTensTerm(n *sitter.Node, el elementRef) bool {
	op, left, right := binaryParts(n, mc.prog)
	if op != "*" {
		return false
	}
	if isNumberLiteral(left, "10", mc.prog) && mc.isLookupApplication(right, el) {
		return true
	}
	return isNumberLiteral(right, "10", mc.prog) && mc.isLookupApplication(left, el)
}

// isLookup matches TABLE[el], TABLE.indexOf(el) and TABLE.get(el) against
// the candidate tables.
func (mc *matchContext) isLookup(n *sitter.Node, el elementRef) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}

	switch n.Type() {
	case "subscript_expression":
		obj := n.ChildByFieldName("object")
		idx := n.ChildByFieldName("index")
		return mc.isTable(obj) && mc.isElement(idx, el)

	case "call_expression":
		obj, prop := memberCallee(n, mc.prog)
		if prop != "indexOf" && prop != "get" {
			return false
		}
		args := namedArgs(n)
		return len(args) == 1 && mc.isTable(obj) && mc.isElement(args[0], el)
	}
	return false
}

// isLookupApplication matches a direct table lookup or a call to a
// validated helper, applied to the referenced element.
func (mc *matchContext) isLookupApplication(n *sitter.Node, el elementRef) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}
	if mc.isLookup(n, el) {
		return true
	}
	if n.Type() != "call_expression" {
		return false
	}
	callee := unwrap(n.ChildByFieldName("function"))
	if callee == nil || callee.Type() != "identifier" || !mc.helpers[mc.prog.Text(callee)] {
		return false
	}
	args := namedArgs(n)
	return len(args) == 1 && mc.isElement(args[0], el)
}

// elementRef identifies one of the two input elements: a destructured
// binding name, or a subscript position on the input parameter.
type elementRef struct {
	name  string
	param string
	index int
}

func identRef(name string) elementRef {
	return elementRef{name: name}
}

func subscriptRef(param string, index int) elementRef {
	return elementRef{param: param, index: index}
}

// inputElements resolves how the two bands are addressed: destructured
// binding names, or subscripts on the input parameter.
func (mc *matchContext) inputElements() (elementRef, elementRef, bool) {
	if len(mc.fn.Params) == 0 {
		return elementRef{}, elementRef{}, false
	}
	p := mc.fn.Params[0]
	switch p.Kind {
	case extract.ParamDestructured:
		if len(p.Elements) == 2 {
			return identRef(p.Elements[0]), identRef(p.Elements[1]), true
		}
	case extract.ParamPlain, extract.ParamDefaulted:
		return subscriptRef(p.Name, 0), subscriptRef(p.Name, 1), true
	}
	return elementRef{}, elementRef{}, false
}

// isElement reports whether the node denotes the referenced input element.
func (mc *matchContext) isElement(n *sitter.Node, el elementRef) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}
	if el.name != "" {
		return n.Type() == "identifier" && mc.prog.Text(n) == el.name
	}
	if n.Type() != "subscript_expression" {
		return false
	}
	obj := n.ChildByFieldName("object")
	idx := unwrap(n.ChildByFieldName("index"))
	if idx == nil {
		return false
	}
	return isIdentNamed(obj, el.param, mc.prog) &&
		idx.Type() == "number" && mc.prog.Text(idx) == strconv.Itoa(el.index)
}

// isInputArray matches the whole input: the parameter itself, [...param],
// param.slice() or param.slice(0, 2).
func (mc *matchContext) isInputArray(n *sitter.Node) bool {
	n = unwrap(n)
	if n == nil || len(mc.fn.Params) == 0 {
		return false
	}
	p := mc.fn.Params[0]
	if p.Kind == extract.ParamDestructured || p.Kind == extract.ParamRest {
		return false
	}
	name := p.Name

	switch n.Type() {
	case "identifier":
		return mc.prog.Text(n) == name

	case "array":
		if n.NamedChildCount() != 1 {
			return false
		}
		spread := n.NamedChild(0)
		if spread.Type() != "spread_element" || spread.NamedChildCount() == 0 {
			return false
		}
		return isIdentNamed(spread.NamedChild(0), name, mc.prog)

	case "call_expression":
		obj, prop := memberCallee(n, mc.prog)
		if prop != "slice" || !isIdentNamed(obj, name, mc.prog) {
			return false
		}
		args := namedArgs(n)
		if len(args) == 0 {
			return true
		}
		return len(args) == 2 &&
			isNumberLiteral(args[0], "0", mc.prog) &&
			isNumberLiteral(args[1], "2", mc.prog)
	}
	return false
}

func (mc *matchContext) isTable(n *sitter.Node) bool {
	n = unwrap(n)
	return n != nil && n.Type() == "identifier" && mc.tables[mc.prog.Text(n)]
}

func (mc *matchContext) isIdent(n *sitter.Node, name string) bool {
	return isIdentNamed(n, name, mc.prog)
}

// unwrap strips parenthesized expressions.
func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" {
		if n.NamedChildCount() == 0 {
			return nil
		}
		n = n.NamedChild(0)
	}
	return n
}

// singleExpression resolves a function body to its one expression: the bare
// expression of a concise arrow, or the argument of a lone return statement.
// Anything else means the body has extra logic and no pattern matches.
func singleExpression(body *sitter.Node) *sitter.Node {
	if body == nil {
		return nil
	}
	if body.Type() != "statement_block" {
		return unwrap(body)
	}

	var ret *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != "return_statement" || ret != nil {
			return nil
		}
		ret = child
	}
	if ret == nil || ret.NamedChildCount() == 0 {
		return nil
	}
	return unwrap(ret.NamedChild(0))
}

// memberCallee unwraps a call of the form obj.prop(...), returning the
// receiver node and the property name.
func memberCallee(call *sitter.Node, prog *extract.Program) (*sitter.Node, string) {
	callee := unwrap(call.ChildByFieldName("function"))
	if callee == nil || callee.Type() != "member_expression" {
		return nil, ""
	}
	obj := callee.ChildByFieldName("object")
	prop := callee.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return nil, ""
	}
	return obj, prog.Text(prop)
}

// namedArgs returns the argument nodes of a call.
func namedArgs(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, args.NamedChildCount())
	for i := 0; i < int(args.NamedChildCount()); i++ {
		a := args.NamedChild(i)
		if a.Type() == "comment" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// binaryParts splits a binary expression into operator text and operands.
func binaryParts(n *sitter.Node, prog *extract.Program) (string, *sitter.Node, *sitter.Node) {
	n = unwrap(n)
	if n == nil || n.Type() != "binary_expression" {
		return "", nil, nil
	}
	op := n.ChildByFieldName("operator")
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if op == nil || left == nil || right == nil {
		return "", nil, nil
	}
	return prog.Text(op), left, right
}

// containsBranchingOrAssignment scans a subtree for conditionals and
// reassignment, both of which disqualify a canonical shape.
func containsBranchingOrAssignment(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "if_statement", "ternary_expression", "switch_statement",
		"assignment_expression", "augmented_assignment_expression",
		"update_expression":
		return true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if containsBranchingOrAssignment(n.NamedChild(i)) {
			return true
		}
	}
	return false
}

// callbackParams returns the parameters of an inline callback when every
// one of them is a bare identifier.
func callbackParams(fn *sitter.Node, prog *extract.Program) ([]string, bool) {
	if list := fn.ChildByFieldName("parameters"); list != nil {
		names := make([]string, 0, list.NamedChildCount())
		for i := 0; i < int(list.NamedChildCount()); i++ {
			p := list.NamedChild(i)
			if p.Type() != "identifier" {
				return nil, false
			}
			names = append(names, prog.Text(p))
		}
		return names, true
	}
	if single := fn.ChildByFieldName("parameter"); single != nil {
		if single.Type() != "identifier" {
			return nil, false
		}
		return []string{prog.Text(single)}, true
	}
	return nil, false
}

func isFunctionNode(n *sitter.Node) bool {
	switch n.Type() {
	case "arrow_function", "function", "function_expression":
		return true
	}
	return false
}

func isIdentNamed(n *sitter.Node, name string, prog *extract.Program) bool {
	n = unwrap(n)
	return n != nil && n.Type() == "identifier" && prog.Text(n) == name
}

func isNumberLiteral(n *sitter.Node, text string, prog *extract.Program) bool {
	n = unwrap(n)
	return n != nil && n.Type() == "number" && prog.Text(n) == text
}

func isEmptyString(n *sitter.Node, prog *extract.Program) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}
	if n.Type() != "string" && n.Type() != "template_string" {
		return false
	}
	text := prog.Text(n)
	return text == "''" || text == `""` || text == "``"
}
