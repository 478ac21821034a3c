package resistorcolorduo

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crashb/javascript-analyzer/internal/rules"
)

// emittedFacts renders the extensional database of one submission as sorted
// fact strings, the same surface the inspection commands print.
func emittedFacts(t *testing.T, source string) []string {
	t.Helper()
	prog := parseSource(t, "resistor-color-duo.js", source)
	fn, _ := prog.Function("value")

	facts := emitFacts(prog, fn)
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.String()
	}
	sort.Strings(out)
	return out
}

func TestEmitFacts_MapJoin(t *testing.T) {
	got := emittedFacts(t, arrayTable+`
export const value = (colors) => Number(colors.map(c => COLORS.indexOf(c)).join(''));
`)

	want := []string{
		`constant("COLORS", /const, /array).`,
		`constant("value", /const, /function).`,
		`exported_function("value", /inline).`,
		`map_join("value").`,
		`parameter("value", 0, /plain).`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fact base mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitFacts_RadixParse(t *testing.T) {
	got := emittedFacts(t, arrayTable+`
export const value = (colors) => parseInt(colors.map(c => COLORS.indexOf(c)).join(''), 10);
`)

	want := []string{
		`constant("COLORS", /const, /array).`,
		`constant("value", /const, /function).`,
		`exported_function("value", /inline).`,
		`map_join("value").`,
		`parameter("value", 0, /plain).`,
		`radix_parse("value").`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fact base mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitFacts_ObjectTable(t *testing.T) {
	got := emittedFacts(t, objectTable+`
export const value = ([first, second]) => COLORS[first] * 10 + COLORS[second];
`)

	want := []string{
		`arithmetic_join("value").`,
		`canonical_color_keys("COLORS").`,
		`constant("COLORS", /const, /object).`,
		`constant("value", /const, /function).`,
		`exported_function("value", /inline).`,
		`parameter("value", 0, /destructured).`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fact base mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitFacts_Reduce(t *testing.T) {
	got := emittedFacts(t, arrayTable+`
export function value(colors) {
  return colors.reverse().reduce((acc, color, index) => acc + COLORS.indexOf(color) * 10 ** index, 0);
}
`)

	want := []string{
		`constant("COLORS", /const, /array).`,
		`exported_function("value", /inline).`,
		`parameter("value", 0, /plain).`,
		`reduce_accumulator("value").`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fact base mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitFacts_SeparateExportAndKindTags(t *testing.T) {
	got := emittedFacts(t, `let COLORS = ['black', 'brown', 'red', 'orange', 'yellow', 'green', 'blue', 'violet', 'grey', 'white'];
var BANDS = 2;
const value = (colors) => Number(colors.map(c => COLORS.indexOf(c)).join(''));
export { value };
`)

	want := []string{
		`constant("BANDS", /var, /other).`,
		`constant("COLORS", /let, /array).`,
		`constant("value", /const, /function).`,
		`exported_function("value", /separate).`,
		`map_join("value").`,
		`parameter("value", 0, /plain).`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fact base mismatch (-want +got):\n%s", diff)
	}
}

func TestHasCanonicalColorKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want bool
	}{
		{
			name: "canonical order",
			keys: []string{"black", "brown", "red", "orange", "yellow", "green", "blue", "violet", "grey", "white"},
			want: true,
		},
		{
			name: "shuffled order still canonical",
			keys: []string{"white", "grey", "violet", "blue", "green", "yellow", "orange", "red", "brown", "black"},
			want: true,
		},
		{
			name: "american gray spelling",
			keys: []string{"black", "brown", "red", "orange", "yellow", "green", "blue", "violet", "gray", "white"},
			want: false,
		},
		{
			name: "missing color",
			keys: []string{"black", "brown", "red", "orange", "yellow", "green", "blue", "violet", "grey"},
			want: false,
		},
		{
			name: "duplicate padding to ten",
			keys: []string{"black", "black", "red", "orange", "yellow", "green", "blue", "violet", "grey", "white"},
			want: false,
		},
		{
			name: "empty",
			keys: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasCanonicalColorKeys(tt.keys); got != tt.want {
				t.Errorf("hasCanonicalColorKeys(%v) = %v, want %v", tt.keys, got, tt.want)
			}
		})
	}
}

// Facts are emitted in a fixed order so kernel programs are reproducible
// text. Guarding the raw order here keeps the inspection output stable.
func TestEmitFacts_StableOrder(t *testing.T) {
	source := arrayTable + `
export const value = (colors) => Number(colors.map(c => COLORS.indexOf(c)).join(''));
`
	prog1 := parseSource(t, "resistor-color-duo.js", source)
	fn1, _ := prog1.Function("value")
	prog2 := parseSource(t, "resistor-color-duo.js", source)
	fn2, _ := prog2.Function("value")

	first := emitFacts(prog1, fn1)
	second := emitFacts(prog2, fn2)

	if diff := cmp.Diff(factStrings(first), factStrings(second)); diff != "" {
		t.Errorf("fact order diverged between identical runs (-first +second):\n%s", diff)
	}
}

func factStrings(facts []rules.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.String()
	}
	return out
}
