package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/comment"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "data", "analyses.db"))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)

	result := analyzer.NewResult(analyzer.VerdictDisapproved, []comment.Comment{
		comment.NoMethod("value"),
	})
	source := []byte(`const x = 1;`)

	id, err := s.SaveResult("resistor-color-duo", "sub/resistor-color-duo.js", source, result, 42*time.Millisecond)
	if err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if id == "" {
		t.Fatal("SaveResult returned empty id")
	}

	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Exercise != "resistor-color-duo" {
		t.Errorf("Exercise = %q", rec.Exercise)
	}
	if rec.Status != "disapprove" {
		t.Errorf("Status = %q, want disapprove", rec.Status)
	}
	if rec.SolutionHash != HashSolution(source) {
		t.Errorf("SolutionHash = %q, want content hash", rec.SolutionHash)
	}
	if rec.ElapsedMS != 42 {
		t.Errorf("ElapsedMS = %d, want 42", rec.ElapsedMS)
	}
	if len(rec.Comments) != 1 || rec.Comments[0].ID != comment.IDNoMethod {
		t.Errorf("Comments = %+v, want the no_method comment", rec.Comments)
	}
}

func TestSave_DedupesByContentHash(t *testing.T) {
	s := newTestStore(t)
	source := []byte(`export const value = () => 0;`)

	first, err := s.SaveResult("resistor-color-duo", "a.js", source, analyzer.NewResult(analyzer.VerdictDisapproved, nil), time.Millisecond)
	if err != nil {
		t.Fatalf("first SaveResult failed: %v", err)
	}

	// Same content again, different path and verdict: the row is updated,
	// not duplicated, and keeps its id.
	second, err := s.SaveResult("resistor-color-duo", "b.js", source, analyzer.NewResult(analyzer.VerdictReferredToMentor, nil), time.Millisecond)
	if err != nil {
		t.Fatalf("second SaveResult failed: %v", err)
	}
	if first != second {
		t.Errorf("rerun id = %q, want original %q", second, first)
	}

	stats, err := s.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats["analyses"] != 1 {
		t.Errorf("analyses count = %d, want 1", stats["analyses"])
	}

	rec, err := s.Get(first)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Status != "refer_to_mentor" {
		t.Errorf("Status after rerun = %q, want refer_to_mentor", rec.Status)
	}
	if rec.SolutionPath != "b.js" {
		t.Errorf("SolutionPath after rerun = %q, want b.js", rec.SolutionPath)
	}
}

func TestSave_DistinctContentGetsDistinctRows(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveResult("resistor-color-duo", "a.js", []byte("const a = 1;"), analyzer.NewResult(analyzer.VerdictDisapproved, nil), 0); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if _, err := s.SaveResult("resistor-color-duo", "b.js", []byte("const b = 2;"), analyzer.NewResult(analyzer.VerdictDisapproved, nil), 0); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	records, err := s.ListByExercise("resistor-color-duo", 0)
	if err != nil {
		t.Fatalf("ListByExercise failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestCountByStatus(t *testing.T) {
	s := newTestStore(t)

	saves := []struct {
		source  string
		verdict analyzer.Verdict
	}{
		{"a", analyzer.VerdictApproved},
		{"b", analyzer.VerdictApproved},
		{"c", analyzer.VerdictReferredToMentor},
	}
	for _, sv := range saves {
		if _, err := s.SaveResult("resistor-color-duo", "x.js", []byte(sv.source), analyzer.NewResult(sv.verdict, nil), 0); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	counts, err := s.CountByStatus()
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts["approve"] != 2 {
		t.Errorf("approve count = %d, want 2", counts["approve"])
	}
	if counts["refer_to_mentor"] != 1 {
		t.Errorf("refer_to_mentor count = %d, want 1", counts["refer_to_mentor"])
	}
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("no-such-id"); err == nil {
		t.Error("expected error for missing id, got nil")
	}
}

func TestRecent_OrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveResult("resistor-color-duo", "old.js", []byte("old"), analyzer.NewResult(analyzer.VerdictApproved, nil), 0); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	// SQLite CURRENT_TIMESTAMP has second resolution; force distinct stamps.
	time.Sleep(1100 * time.Millisecond)
	if _, err := s.SaveResult("resistor-color-duo", "new.js", []byte("new"), analyzer.NewResult(analyzer.VerdictApproved, nil), 0); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	records, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].SolutionPath != "new.js" {
		t.Errorf("first record = %q, want new.js", records[0].SolutionPath)
	}
}
