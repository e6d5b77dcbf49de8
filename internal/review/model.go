// Package review implements the code review domain: records, prompt
// construction, the requester service, and aggregation across files.
package review

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/vantorre/redline/internal/extractor"
)

// RecordSource discriminates how a Record was produced. Treating the
// record as a tagged union forces callers to handle the degraded and
// failed cases explicitly instead of trusting every field.
type RecordSource string

const (
	// SourceModel marks a record decoded from a well-formed model response
	SourceModel RecordSource = "model"
	// SourceFallback marks a degraded record built from an undecodable response
	SourceFallback RecordSource = "fallback"
	// SourceError marks a record describing a capability or input failure
	SourceError RecordSource = "error"
)

// IssueType categorizes a review finding. The set is open: models may
// emit values outside the known constants and they are preserved verbatim.
type IssueType string

const (
	// IssueTypeBug represents a potential bug or logic error
	IssueTypeBug IssueType = "bug"
	// IssueTypeStyle represents a code style or formatting issue
	IssueTypeStyle IssueType = "style"
	// IssueTypeDocumentation represents missing or wrong documentation
	IssueTypeDocumentation IssueType = "documentation"
	// IssueTypePerformance represents a performance issue
	IssueTypePerformance IssueType = "performance"
	// IssueTypeSecurity represents a security concern
	IssueTypeSecurity IssueType = "security"
)

// IssueSeverity represents the severity of an issue. The Normalizer
// guarantees one of the three known values, defaulting to low.
type IssueSeverity string

const (
	// IssueSeverityHigh represents a high-severity issue
	IssueSeverityHigh IssueSeverity = "high"
	// IssueSeverityMedium represents a medium-severity issue
	IssueSeverityMedium IssueSeverity = "medium"
	// IssueSeverityLow represents a low-severity issue
	IssueSeverityLow IssueSeverity = "low"
)

// ScoreBand is the display classification of an overall score.
type ScoreBand string

const (
	// ScoreBandExcellent covers scores of 8 and above
	ScoreBandExcellent ScoreBand = "excellent"
	// ScoreBandGood covers scores of 5 and above
	ScoreBandGood ScoreBand = "good"
	// ScoreBandNeedsWork covers everything below 5
	ScoreBandNeedsWork ScoreBand = "needs improvement"
)

// AggregateLabel is the synthetic FilePath of multi-file aggregate records.
const AggregateLabel = "multiple files"

// Issue is a single review finding. FilePath is empty on per-file records
// and set by aggregation to tag the issue with its originating file.
type Issue struct {
	Type       IssueType     `json:"type"`
	Severity   IssueSeverity `json:"severity"`
	Line       int           `json:"line"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
	FilePath   string        `json:"file_path,omitempty"`
}

// DocSuggestion is a missing-documentation finding.
type DocSuggestion struct {
	Function   string `json:"function"`
	Line       int    `json:"line"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Record is the result of one review request, immutable once produced.
// Aggregation builds a new Record from per-file ones; nothing mutates a
// Record in place after construction.
type Record struct {
	Summary      string           `json:"summary"`
	Issues       []*Issue         `json:"issues"`
	MissingDocs  []*DocSuggestion `json:"missing_docstrings"`
	OverallScore float64          `json:"overall_score"`
	FilePath     string           `json:"file_path,omitempty"`
	Error        string           `json:"error,omitempty"`
	RawResponse  string           `json:"raw_response,omitempty"`
	Source       RecordSource     `json:"source,omitempty"`

	// Aggregate-only counters.
	FilesAnalyzed  int `json:"files_analyzed,omitempty"`
	FilesRequested int `json:"files_requested,omitempty"`
}

// NewRecord converts normalized model output into a Record attached to the
// reviewed path. filePath may be a synthetic label such as "pasted_code".
func NewRecord(out *extractor.ReviewOutput, filePath string) *Record {
	rec := &Record{
		Summary:      out.Summary,
		Issues:       make([]*Issue, 0, len(out.Issues)),
		MissingDocs:  make([]*DocSuggestion, 0, len(out.MissingDocs)),
		OverallScore: out.OverallScore,
		FilePath:     filePath,
		Source:       SourceModel,
	}

	if out.Fallback {
		rec.Source = SourceFallback
		rec.RawResponse = out.RawResponse
	}

	for _, issue := range out.Issues {
		rec.Issues = append(rec.Issues, &Issue{
			Type:       IssueType(issue.Type),
			Severity:   IssueSeverity(issue.Severity),
			Line:       issue.Line,
			Message:    issue.Message,
			Suggestion: issue.Suggestion,
		})
	}

	for _, doc := range out.MissingDocs {
		rec.MissingDocs = append(rec.MissingDocs, &DocSuggestion{
			Function:   doc.Function,
			Line:       doc.Line,
			Suggestion: doc.Suggestion,
		})
	}

	return rec
}

// NewErrorRecord builds a record whose only reliable field is Error.
// No patch may ever be applied from such a record.
func NewErrorRecord(filePath, message string) *Record {
	return &Record{
		Issues:      []*Issue{},
		MissingDocs: []*DocSuggestion{},
		FilePath:    filePath,
		Error:       message,
		Source:      SourceError,
	}
}

// Failed reports whether the record describes a failure rather than a
// review result.
func (r *Record) Failed() bool {
	return r.Source == SourceError || r.Error != ""
}

// Degraded reports whether the record came from the fallback path; its
// RawResponse holds the undecoded model text.
func (r *Record) Degraded() bool {
	return r.Source == SourceFallback
}

// Usable reports whether the record's review fields may be acted upon.
// Degraded records are usable for display but carry no issues.
func (r *Record) Usable() bool {
	return !r.Failed()
}

// DisplayScore clamps the model-reported score into [0,10]. Clamping
// happens only at display time; the stored score is kept as reported.
func (r *Record) DisplayScore() float64 {
	return math.Min(10, math.Max(0, r.OverallScore))
}

// Band classifies the record's score for display.
func (r *Record) Band() ScoreBand {
	score := r.DisplayScore()
	switch {
	case score >= 8:
		return ScoreBandExcellent
	case score >= 5:
		return ScoreBandGood
	default:
		return ScoreBandNeedsWork
	}
}

// Value implements driver.Valuer so a Record can be stored as a JSON
// column by the history repository.
func (r Record) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for reading a Record back out of a JSON
// column.
func (r *Record) Scan(src interface{}) error {
	var source []byte
	switch src := src.(type) {
	case string:
		source = []byte(src)
	case []byte:
		source = src
	case nil:
		return nil
	default:
		return errors.New("incompatible type for Record")
	}

	if len(source) == 0 {
		return nil
	}

	return json.Unmarshal(source, r)
}

// Aggregate combines per-file records into a new record. Issues and
// missing-doc findings are concatenated in input order, each copied issue
// tagged with its originating file path; the originals are never touched.
// The aggregate score is the arithmetic mean of the scores of successfully
// analyzed files (error records are excluded), rounded to one decimal, or
// 0 when nothing succeeded. requested is the number of files the caller
// set out to review, which can exceed len(records) when inputs were
// skipped before review.
func Aggregate(records []*Record, requested int) *Record {
	agg := &Record{
		Issues:         []*Issue{},
		MissingDocs:    []*DocSuggestion{},
		FilePath:       AggregateLabel,
		Source:         SourceModel,
		FilesRequested: requested,
	}

	var scoreSum float64
	for _, rec := range records {
		if rec.Failed() {
			continue
		}
		agg.FilesAnalyzed++
		scoreSum += rec.OverallScore

		for _, issue := range rec.Issues {
			tagged := *issue
			tagged.FilePath = rec.FilePath
			agg.Issues = append(agg.Issues, &tagged)
		}
		for _, doc := range rec.MissingDocs {
			copied := *doc
			agg.MissingDocs = append(agg.MissingDocs, &copied)
		}
	}

	if agg.FilesAnalyzed > 0 {
		mean := scoreSum / float64(agg.FilesAnalyzed)
		agg.OverallScore = math.Round(mean*10) / 10
	}

	if len(records) == 1 {
		agg.FilePath = records[0].FilePath
	}

	agg.Summary = fmt.Sprintf("Reviewed %d of %d files: %d issues, %d missing docstrings",
		agg.FilesAnalyzed, agg.FilesRequested, len(agg.Issues), len(agg.MissingDocs))

	return agg
}
