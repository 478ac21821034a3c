// Package analyzer hosts the verdict engine: the exercise registry, the
// per-run orchestration, and the result type written back to the exercism
// interface. Exercises classify a parsed submission into exactly one verdict
// plus an ordered comment list.
package analyzer

import (
	"github.com/crashb/javascript-analyzer/internal/comment"
)

// Verdict is the single outcome of one analysis run. The string values are
// the wire statuses of the analysis.json interface.
type Verdict string

const (
	// VerdictNone marks a run still in progress; it never reaches the wire.
	VerdictNone Verdict = ""
	// VerdictApproved passes the solution, possibly with advisory comments.
	VerdictApproved Verdict = "approve"
	// VerdictDisapproved fails the solution with actionable comments.
	VerdictDisapproved Verdict = "disapprove"
	// VerdictReferredToMentor hands the solution to a human. It is the
	// default whenever no canonical pattern matches exactly.
	VerdictReferredToMentor Verdict = "refer_to_mentor"
)

// Valid reports whether the verdict is a terminal wire status.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictApproved, VerdictDisapproved, VerdictReferredToMentor:
		return true
	}
	return false
}

// Result is the complete outcome of one run: one verdict and the comments
// recorded up to the point the verdict was reached, in emission order.
type Result struct {
	Verdict  Verdict           `json:"status"`
	Comments []comment.Comment `json:"comments"`
}

// NewResult builds a Result. The comment slice is never nil so the wire
// format always carries a comments array.
func NewResult(verdict Verdict, comments []comment.Comment) *Result {
	if comments == nil {
		comments = []comment.Comment{}
	}
	return &Result{Verdict: verdict, Comments: comments}
}

// HasBlocking reports whether any comment in the result is blocking.
func (r *Result) HasBlocking() bool {
	for _, c := range r.Comments {
		if c.IsBlocking() {
			return true
		}
	}
	return false
}
