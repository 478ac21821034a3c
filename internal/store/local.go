// Package store persists analysis results in SQLite. Two submissions with
// the same content hash share one row per exercise, which makes repeated
// runs observable as updates instead of duplicates.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/comment"
)

// LocalStore holds analysis records in a SQLite database.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Record is one persisted analysis.
type Record struct {
	ID           string
	Exercise     string
	SolutionPath string
	SolutionHash string
	Status       string
	Comments     []comment.Comment
	ElapsedMS    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLocalStore initializes the SQLite database at the given path.
func NewLocalStore(path string) (*LocalStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &LocalStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	analysesTable := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		exercise TEXT NOT NULL,
		solution_path TEXT,
		solution_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		comments TEXT NOT NULL,
		elapsed_ms INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(exercise, solution_hash)
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_exercise ON analyses(exercise);
	CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
	`

	if _, err := s.db.Exec(analysesTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// HashSolution returns the content hash used for deduplication.
func HashSolution(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// SaveResult persists one analysis. A rerun of identical content updates
// the existing row; the returned id is always the canonical one.
func (s *LocalStore) SaveResult(exercise, solutionPath string, source []byte, result *analyzer.Result, elapsed time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commentsJSON, err := json.Marshal(result.Comments)
	if err != nil {
		return "", fmt.Errorf("failed to encode comments: %w", err)
	}

	hash := HashSolution(source)
	id := uuid.NewString()

	_, err = s.db.Exec(
		`INSERT INTO analyses (id, exercise, solution_path, solution_hash, status, comments, elapsed_ms, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(exercise, solution_hash) DO UPDATE SET
		 solution_path = excluded.solution_path,
		 status = excluded.status,
		 comments = excluded.comments,
		 elapsed_ms = excluded.elapsed_ms,
		 updated_at = CURRENT_TIMESTAMP`,
		id, exercise, solutionPath, hash, string(result.Verdict), string(commentsJSON), elapsed.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}

	// On conflict the original row id survives; read it back.
	var canonical string
	err = s.db.QueryRow(
		"SELECT id FROM analyses WHERE exercise = ? AND solution_hash = ?",
		exercise, hash,
	).Scan(&canonical)
	if err != nil {
		return "", fmt.Errorf("failed to read back analysis id: %w", err)
	}

	return canonical, nil
}

// Get retrieves one analysis by id.
func (s *LocalStore) Get(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, exercise, solution_path, solution_hash, status, comments, elapsed_ms, created_at, updated_at
		 FROM analyses WHERE id = ?`, id,
	)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("analysis %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByExercise retrieves analyses for one exercise, newest first.
func (s *LocalStore) ListByExercise(exercise string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, exercise, solution_path, solution_hash, status, comments, elapsed_ms, created_at, updated_at
		 FROM analyses WHERE exercise = ? ORDER BY updated_at DESC LIMIT ?`,
		exercise, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows), nil
}

// Recent retrieves the latest analyses across all exercises.
func (s *LocalStore) Recent(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, exercise, solution_path, solution_hash, status, comments, elapsed_ms, created_at, updated_at
		 FROM analyses ORDER BY updated_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows), nil
}

// CountByStatus returns how many analyses ended in each status.
func (s *LocalStore) CountByStatus() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM analyses GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		counts[status] = count
	}

	return counts, nil
}

// GetStats returns database statistics.
func (s *LocalStore) GetStats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM analyses").Scan(&count); err != nil {
		return nil, err
	}
	stats["analyses"] = count

	return stats, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var commentsJSON string
	if err := row.Scan(
		&rec.ID, &rec.Exercise, &rec.SolutionPath, &rec.SolutionHash,
		&rec.Status, &commentsJSON, &rec.ElapsedMS, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if commentsJSON != "" {
		json.Unmarshal([]byte(commentsJSON), &rec.Comments)
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) []Record {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			continue
		}
		records = append(records, *rec)
	}
	return records
}
