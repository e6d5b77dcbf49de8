package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/review"
)

// Repository defines operations for managing persisted review runs
type Repository interface {
	// SaveRun persists a review run
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by ID, including its full record
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns retrieves the most recent runs, newest first, without the
	// record payload
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// CountBySeverity totals issue severities across all runs
	CountBySeverity(ctx context.Context) (SeverityCounts, error)
}

// SQLRepository implements Repository over a SQL database
type SQLRepository struct {
	db     *sql.DB
	logger *loggy.Logger
}

// NewSQLRepository creates a new SQL repository
func NewSQLRepository(db *sql.DB, logger *loggy.Logger) *SQLRepository {
	return &SQLRepository{
		db:     db,
		logger: logger,
	}
}

// SaveRun persists a review run
func (r *SQLRepository) SaveRun(ctx context.Context, run *Run) error {
	var recordJSON []byte
	if run.Record != nil {
		var err error
		recordJSON, err = json.Marshal(run.Record)
		if err != nil {
			return fmt.Errorf("marshaling run record: %w", err)
		}
	}

	q := squirrel.Insert("review_runs").
		Columns("id", "file_path", "source", "overall_score",
			"issue_count", "missing_doc_count",
			"high_count", "medium_count", "low_count",
			"result", "created_at").
		Values(run.ID, run.FilePath, run.Source, run.OverallScore,
			run.IssueCount, run.MissingDocCount,
			run.HighCount, run.MediumCount, run.LowCount,
			recordJSON, run.CreatedAt)

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building save run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("executing save run query: %w", err)
	}

	r.logger.Debug("saved review run", "id", run.ID, "file_path", run.FilePath)
	return nil
}

// GetRun retrieves a run by ID, including its full record
func (r *SQLRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	q := squirrel.Select("id", "file_path", "source", "overall_score",
		"issue_count", "missing_doc_count",
		"high_count", "medium_count", "low_count",
		"result", "created_at").
		From("review_runs").
		Where(squirrel.Eq{"id": id})

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get run query: %w", err)
	}

	var run Run
	var recordJSON []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&run.ID,
		&run.FilePath,
		&run.Source,
		&run.OverallScore,
		&run.IssueCount,
		&run.MissingDocCount,
		&run.HighCount,
		&run.MediumCount,
		&run.LowCount,
		&recordJSON,
		&run.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("executing get run query: %w", err)
	}

	if len(recordJSON) > 0 {
		var rec review.Record
		if err := json.Unmarshal(recordJSON, &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling run record: %w", err)
		}
		run.Record = &rec
	}

	return &run, nil
}

// ListRuns retrieves the most recent runs, newest first. The record
// payload is left unloaded; use GetRun when the full record is needed.
func (r *SQLRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}

	q := squirrel.Select("id", "file_path", "source", "overall_score",
		"issue_count", "missing_doc_count",
		"high_count", "medium_count", "low_count",
		"created_at").
		From("review_runs").
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list runs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing list runs query: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.ID,
			&run.FilePath,
			&run.Source,
			&run.OverallScore,
			&run.IssueCount,
			&run.MissingDocCount,
			&run.HighCount,
			&run.MediumCount,
			&run.LowCount,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}

	return runs, nil
}

// CountBySeverity totals issue severities across all runs
func (r *SQLRepository) CountBySeverity(ctx context.Context) (SeverityCounts, error) {
	q := squirrel.Select(
		"COALESCE(SUM(high_count), 0)",
		"COALESCE(SUM(medium_count), 0)",
		"COALESCE(SUM(low_count), 0)").
		From("review_runs")

	query, args, err := q.ToSql()
	if err != nil {
		return SeverityCounts{}, fmt.Errorf("building severity count query: %w", err)
	}

	var counts SeverityCounts
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&counts.High, &counts.Medium, &counts.Low)
	if err != nil {
		return SeverityCounts{}, fmt.Errorf("executing severity count query: %w", err)
	}

	return counts, nil
}
