// Package resistorcolorduo classifies submissions to the resistor-color-duo
// exercise. A submission must export a `value` function turning two resistor
// band colors into a two-digit number; the analyzer approves only the
// canonical implementation shapes and refers everything else to a mentor.
package resistorcolorduo

import (
	"context"
	"fmt"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/comment"
	"github.com/crashb/javascript-analyzer/internal/extract"
	"github.com/crashb/javascript-analyzer/internal/rules"
)

// Slug is the exercise identifier.
const Slug = "resistor-color-duo"

// entryPoint is the binding every submission must export.
const entryPoint = "value"

// Analyzer implements analyzer.Exercise for resistor-color-duo.
type Analyzer struct{}

// New creates the exercise analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Slug implements analyzer.Exercise.
func (a *Analyzer) Slug() string {
	return Slug
}

// stage is one state of the verdict machine. Stages execute in fixed order;
// a blocking comment terminates the run at the stage that recorded it, so a
// result never mixes comment classes across stages.
type stage int

const (
	stageStructure stage = iota
	stageSignature
	stageOptimality
	stageTips
	stageDone
)

// run carries the mutable state of one analysis.
type run struct {
	prog     *extract.Program
	fn       *extract.Function
	comments comment.List
	kernel   *rules.Kernel
}

// Analyze implements analyzer.Exercise.
func (a *Analyzer) Analyze(ctx context.Context, prog *extract.Program) (*analyzer.Result, error) {
	r := &run{prog: prog}
	verdict := analyzer.VerdictNone

	var err error
	for st := stageStructure; st != stageDone; {
		switch st {
		case stageStructure:
			st, verdict = a.checkStructure(r)
		case stageSignature:
			st, verdict = a.checkSignature(r)
		case stageOptimality:
			st, verdict, err = a.checkOptimality(ctx, r)
			if err != nil {
				return nil, err
			}
		case stageTips:
			st, verdict = a.checkTips(r)
		}
	}

	return analyzer.NewResult(verdict, r.comments.Items()), nil
}

// checkStructure requires the entry point to exist and to be reachable
// through a named export. Both gaps can fire in the same run.
func (a *Analyzer) checkStructure(r *run) (stage, analyzer.Verdict) {
	fn, found := r.prog.Function(entryPoint)
	if found {
		r.fn = fn
	} else {
		r.comments.Add(comment.NoMethod(entryPoint))
	}

	if _, exported := r.prog.NamedExport(entryPoint); !exported {
		r.comments.Add(comment.NoNamedExport(entryPoint))
	}

	if r.comments.HasBlocking() {
		return stageDone, analyzer.VerdictDisapproved
	}
	return stageSignature, analyzer.VerdictNone
}

// checkSignature rejects parameterless and splat-first signatures.
func (a *Analyzer) checkSignature(r *run) (stage, analyzer.Verdict) {
	if len(r.fn.Params) == 0 {
		r.comments.Add(comment.NoParameter(entryPoint))
		return stageDone, analyzer.VerdictDisapproved
	}

	if first := r.fn.Params[0]; first.Kind == extract.ParamRest {
		r.comments.Add(comment.UnexpectedSplatArgs(first.Name, first.TypeOrUntyped()))
		return stageDone, analyzer.VerdictDisapproved
	}

	return stageOptimality, analyzer.VerdictNone
}

// checkOptimality asserts the submission facts and lets the rule program
// decide whether a canonical shape matched. No match is the default outcome,
// routed to a mentor.
func (a *Analyzer) checkOptimality(ctx context.Context, r *run) (stage, analyzer.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return stageDone, analyzer.VerdictNone, err
	}

	kernel := rules.NewKernel(schemaSource, policySource)
	if err := kernel.LoadFacts(emitFacts(r.prog, r.fn)); err != nil {
		return stageDone, analyzer.VerdictNone, fmt.Errorf("evaluate rules: %w", err)
	}
	r.kernel = kernel

	approvable, err := kernel.HoldsFor("approvable", r.fn.Name)
	if err != nil {
		return stageDone, analyzer.VerdictNone, fmt.Errorf("query rules: %w", err)
	}
	if !approvable {
		return stageDone, analyzer.VerdictReferredToMentor, nil
	}
	return stageTips, analyzer.VerdictNone, nil
}

// checkTips records the inline-export advisory. Tips never change the
// verdict; the run resolves to Approved here regardless.
func (a *Analyzer) checkTips(r *run) (stage, analyzer.Verdict) {
	if form, ok := r.prog.NamedExport(entryPoint); ok && form == extract.ExportSeparate {
		r.comments.Add(comment.TipExportInline())
	}
	return stageDone, analyzer.VerdictApproved
}

// Inspect implements analyzer.Inspector.
func (a *Analyzer) Inspect(prog *extract.Program) (*rules.Kernel, error) {
	return Evaluate(prog)
}

// Evaluate runs fact emission and rule evaluation without the verdict
// machine. Inspection surfaces use it to show the derived fact base.
func Evaluate(prog *extract.Program) (*rules.Kernel, error) {
	fn, _ := prog.Function(entryPoint)
	kernel := rules.NewKernel(schemaSource, policySource)
	if err := kernel.LoadFacts(emitFacts(prog, fn)); err != nil {
		return nil, fmt.Errorf("evaluate rules: %w", err)
	}
	return kernel, nil
}

// UsesOptimalConstants reports whether the constant census alone would
// permit an approval: exactly one lookup table, every other top-level
// constant function-shaped.
func UsesOptimalConstants(prog *extract.Program) (bool, error) {
	kernel, err := Evaluate(prog)
	if err != nil {
		return false, err
	}
	return kernel.Holds("optimal_table")
}
