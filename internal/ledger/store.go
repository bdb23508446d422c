// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger stores parsed student results per exam session in SQLite
// and derives each student's CGPA from them.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/result-parser/pkg/types"
)

const (
	dbFile     = "results.db"
	defaultDir = "ledger"
	dateLayout = "2006-01-02"
)

// ErrNotFound is returned when a student has no results in the ledger.
var ErrNotFound = errors.New("no results found")

// Store manages the results ledger database.
type Store struct {
	db  *sql.DB
	dir string

	now   func() time.Time
	newID func() string
}

// NewStore opens or creates the ledger database at cfg.Dir/results.db and
// creates the schema if it does not exist.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:    db,
		dir:   dir,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			source_pdf TEXT,
			exam_session TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			records INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			prn TEXT NOT NULL,
			exam_session TEXT NOT NULL,
			sgpa REAL NOT NULL,
			status TEXT NOT NULL,
			result_date TEXT NOT NULL,
			source_pdf TEXT,
			batch_id TEXT NOT NULL REFERENCES batches(id),
			PRIMARY KEY (prn, exam_session)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_prn ON results(prn)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportBatch is one parse output to be stored under an exam session.
type ImportBatch struct {
	// Session names the exam session. Required.
	Session string

	// ResultDate is the declaration date; zero means today.
	ResultDate time.Time

	// SourcePDF is the document the records came from, if known.
	SourcePDF string

	Records []types.StudentRecord
}

// ImportSummary holds counts from a ledger import.
type ImportSummary struct {
	BatchID  string
	Inserted int
	Updated  int
}

// Total returns the number of records written.
func (s ImportSummary) Total() int {
	return s.Inserted + s.Updated
}

// Import stores the batch in one transaction. A record whose PRN already
// has a result for the session replaces it.
func (s *Store) Import(ctx context.Context, batch ImportBatch) (ImportSummary, error) {
	session := strings.TrimSpace(batch.Session)
	if session == "" {
		return ImportSummary{}, errors.New("exam session is required")
	}

	resultDate := batch.ResultDate
	if resultDate.IsZero() {
		resultDate = s.now()
	}

	summary := ImportSummary{BatchID: s.newID()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, source_pdf, exam_session, imported_at, records) VALUES (?, ?, ?, ?, ?)`,
		summary.BatchID, batch.SourcePDF, session, s.now().UTC().Format(time.RFC3339), len(batch.Records),
	)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("inserting batch: %w", err)
	}

	exists, err := tx.PrepareContext(ctx, `SELECT count(*) FROM results WHERE prn = ? AND exam_session = ?`)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("preparing lookup: %w", err)
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO results (prn, exam_session, sgpa, status, result_date, source_pdf, batch_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(prn, exam_session) DO UPDATE SET
			sgpa=excluded.sgpa, status=excluded.status, result_date=excluded.result_date,
			source_pdf=excluded.source_pdf, batch_id=excluded.batch_id`)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	for _, rec := range batch.Records {
		var n int
		if err := exists.QueryRowContext(ctx, rec.PRN, session).Scan(&n); err != nil {
			return ImportSummary{}, fmt.Errorf("looking up %s: %w", rec.PRN, err)
		}

		_, err := upsert.ExecContext(ctx,
			rec.PRN, session, rec.SGPA, rec.Status,
			resultDate.Format(dateLayout), batch.SourcePDF, summary.BatchID,
		)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("storing %s: %w", rec.PRN, err)
		}

		if n > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("committing batch: %w", err)
	}
	return summary, nil
}

const selectResults = `SELECT prn, exam_session, sgpa, status, result_date, COALESCE(source_pdf, ''), batch_id FROM results`

// Results returns every result of the student, oldest first.
func (s *Store) Results(ctx context.Context, prn string) ([]types.ExamResult, error) {
	return s.query(ctx, selectResults+` WHERE prn = ? ORDER BY result_date, exam_session`, prn)
}

// List returns all results of session, or of every session when session
// is empty, ordered by session and PRN.
func (s *Store) List(ctx context.Context, session string) ([]types.ExamResult, error) {
	if session == "" {
		return s.query(ctx, selectResults+` ORDER BY exam_session, prn`)
	}
	return s.query(ctx, selectResults+` WHERE exam_session = ? ORDER BY prn`, session)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]types.ExamResult, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []types.ExamResult
	for rows.Next() {
		var r types.ExamResult
		var date string
		if err := rows.Scan(&r.PRN, &r.ExamSession, &r.SGPA, &r.Status, &date, &r.SourcePDF, &r.BatchID); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.ResultDate, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing result date %q: %w", date, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Summary returns the student's results and CGPA. It returns ErrNotFound
// when the ledger has nothing for prn.
func (s *Store) Summary(ctx context.Context, prn string) (types.StudentSummary, error) {
	results, err := s.Results(ctx, prn)
	if err != nil {
		return types.StudentSummary{}, err
	}
	if len(results) == 0 {
		return types.StudentSummary{}, fmt.Errorf("%w for PRN %s", ErrNotFound, prn)
	}

	var total float64
	for _, r := range results {
		total += r.SGPA
	}
	return types.StudentSummary{
		PRN:     prn,
		Exams:   len(results),
		CGPA:    roundCGPA(total / float64(len(results))),
		Results: results,
	}, nil
}

// Summaries returns the CGPA of every student in the ledger, by PRN.
func (s *Store) Summaries(ctx context.Context) ([]types.StudentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT prn, count(*), avg(sgpa) FROM results GROUP BY prn ORDER BY prn`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var out []types.StudentSummary
	for rows.Next() {
		var sum types.StudentSummary
		var avg float64
		if err := rows.Scan(&sum.PRN, &sum.Exams, &avg); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		sum.CGPA = roundCGPA(avg)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// WriteSummary prints a short human-readable summary of an import.
func WriteSummary(w io.Writer, session string, sum ImportSummary) {
	fmt.Fprintf(w, "batch %s: session %s, inserted: %d, updated: %d (total: %d)\n",
		sum.BatchID, session, sum.Inserted, sum.Updated, sum.Total())
}

func roundCGPA(v float64) float64 {
	return math.Round(v*100) / 100
}
