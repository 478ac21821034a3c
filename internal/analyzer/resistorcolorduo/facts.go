package resistorcolorduo

import (
	"github.com/crashb/javascript-analyzer/internal/extract"
	"github.com/crashb/javascript-analyzer/internal/rules"
)

// canonicalColors are the resistor band colors in digit order, black = 0
// through white = 9.
var canonicalColors = []string{
	"black", "brown", "red", "orange", "yellow",
	"green", "blue", "violet", "grey", "white",
}

// emitFacts builds the extensional database for one submission. fn may be
// nil when the submission has no entry point; the constant census is still
// asserted so inspection surfaces can explain the failure.
func emitFacts(prog *extract.Program, fn *extract.Function) []rules.Fact {
	var facts []rules.Fact

	for _, c := range prog.TopLevelConstants() {
		facts = append(facts, rules.Fact{
			Predicate: "constant",
			Args:      []interface{}{c.Name, "/" + string(c.Kind), "/" + string(c.Shape)},
		})
		if c.Shape == extract.ShapeObject && hasCanonicalColorKeys(c.Keys) {
			facts = append(facts, rules.Fact{
				Predicate: "canonical_color_keys",
				Args:      []interface{}{c.Name},
			})
		}
	}

	for _, f := range prog.Functions() {
		if f.Export == extract.ExportNone {
			continue
		}
		form := "/inline"
		if f.Export == extract.ExportSeparate {
			form = "/separate"
		}
		facts = append(facts, rules.Fact{
			Predicate: "exported_function",
			Args:      []interface{}{f.Name, form},
		})
	}

	if fn == nil {
		return facts
	}

	for i, p := range fn.Params {
		facts = append(facts, rules.Fact{
			Predicate: "parameter",
			Args:      []interface{}{fn.Name, i, "/" + string(p.Kind)},
		})
	}

	mc := newMatchContext(prog, fn)
	if matched, radix := mc.matchMapJoin(); matched {
		facts = append(facts, rules.Fact{Predicate: "map_join", Args: []interface{}{fn.Name}})
		if radix {
			facts = append(facts, rules.Fact{Predicate: "radix_parse", Args: []interface{}{fn.Name}})
		}
	}
	if mc.matchArithmeticJoin() {
		facts = append(facts, rules.Fact{Predicate: "arithmetic_join", Args: []interface{}{fn.Name}})
	}
	if mc.matchReduce() {
		facts = append(facts, rules.Fact{Predicate: "reduce_accumulator", Args: []interface{}{fn.Name}})
	}

	return facts
}

// hasCanonicalColorKeys reports whether keys are exactly the ten canonical
// color names, in any order.
func hasCanonicalColorKeys(keys []string) bool {
	if len(keys) != len(canonicalColors) {
		return false
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	if len(seen) != len(canonicalColors) {
		return false
	}
	for _, c := range canonicalColors {
		if !seen[c] {
			return false
		}
	}
	return true
}
