// Package sqldb stores submissions in a relational database.
// Both registered drivers ("sqlite" from modernc.org/sqlite and "postgres"
// from lib/pq) accept the same $N placeholders, so one set of queries serves
// both.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/steltz/stepper/pkg/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	queryCreateTable = `CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	answers TEXT NOT NULL,
	submitted_at TEXT NOT NULL
)`
	queryUpsert = `INSERT INTO submissions (id, session_id, answers, submitted_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET session_id = excluded.session_id, answers = excluded.answers, submitted_at = excluded.submitted_at`
	querySelect = `SELECT id, session_id, answers, submitted_at FROM submissions WHERE id = $1`
	queryList   = `SELECT id FROM submissions ORDER BY submitted_at, id`
)

// timeLayout is fixed width so that text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Sink implements ports.CompletionSink over database/sql.
type Sink struct {
	db *sql.DB
}

// Open connects with the given driver and DSN and ensures the schema exists.
func Open(ctx context.Context, driver, dsn string) (*Sink, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer avoids SQLITE_BUSY and keeps :memory: on one connection.
		db.SetMaxOpenConns(1)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing handle. The schema is not touched.
func New(db *sql.DB) *Sink {
	return &Sink{db: db}
}

// Migrate creates the submissions table if missing.
func (s *Sink) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, queryCreateTable); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}
	return nil
}

// Submit stores the submission, replacing any earlier one with the same ID.
func (s *Sink) Submit(ctx context.Context, sub domain.Submission) error {
	answers := sub.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryUpsert,
		sub.ID,
		sub.SessionID,
		string(data),
		sub.SubmittedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}
	return nil
}

// Get loads a submission by ID.
func (s *Sink) Get(ctx context.Context, id string) (domain.Submission, error) {
	var (
		sub         domain.Submission
		answers     string
		submittedAt string
	)
	err := s.db.QueryRowContext(ctx, querySelect, id).Scan(&sub.ID, &sub.SessionID, &answers, &submittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, fmt.Errorf("failed to query submission: %w", err)
	}

	if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
		return domain.Submission{}, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if sub.Answers == nil {
		sub.Answers = map[string]string{}
	}
	sub.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("invalid submitted_at %q: %w", submittedAt, err)
	}
	return sub, nil
}

// List returns submission IDs ordered by submission time.
func (s *Sink) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryList)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}
