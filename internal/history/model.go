// Package history persists review runs to SQLite so past reviews can be
// listed and reloaded after the process exits.
package history

import (
	"time"

	"github.com/vantorre/redline/internal/review"
	"github.com/vantorre/redline/internal/ulid"
)

// Run is one persisted review run. The full record is stored as a JSON
// column; the scalar columns exist so listings and counts do not need to
// parse every record.
type Run struct {
	ID              string         `json:"id"`
	FilePath        string         `json:"file_path"`
	Source          string         `json:"source"`
	OverallScore    float64        `json:"overall_score"`
	IssueCount      int            `json:"issue_count"`
	MissingDocCount int            `json:"missing_doc_count"`
	HighCount       int            `json:"high_count"`
	MediumCount     int            `json:"medium_count"`
	LowCount        int            `json:"low_count"`
	Record          *review.Record `json:"record,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewRun builds a Run from a review record, minting a fresh run ID and
// precomputing the severity counters.
func NewRun(rec *review.Record) *Run {
	run := &Run{
		ID:              ulid.RunID(),
		FilePath:        rec.FilePath,
		Source:          string(rec.Source),
		OverallScore:    rec.OverallScore,
		IssueCount:      len(rec.Issues),
		MissingDocCount: len(rec.MissingDocs),
		Record:          rec,
		CreatedAt:       time.Now().UTC(),
	}

	for _, issue := range rec.Issues {
		switch issue.Severity {
		case review.IssueSeverityHigh:
			run.HighCount++
		case review.IssueSeverityMedium:
			run.MediumCount++
		default:
			run.LowCount++
		}
	}

	return run
}

// SeverityCounts is an aggregate of issue severities across runs.
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total returns the total number of counted issues.
func (c SeverityCounts) Total() int {
	return c.High + c.Medium + c.Low
}
