// Package extractor recovers structured review data and literal code
// fragments from free-form model responses.
package extractor

// ReviewOutput is the structured review shape the model is prompted to emit.
// When the response cannot be decoded the Normalizer returns a fallback
// output instead: Fallback is set and RawResponse preserves the undecoded
// text verbatim for manual inspection.
type ReviewOutput struct {
	Summary      string          `json:"summary"`
	Issues       []Issue         `json:"issues"`
	MissingDocs  []DocSuggestion `json:"missing_docstrings"`
	OverallScore float64         `json:"overall_score"`
	RawResponse  string          `json:"raw_response,omitempty"`
	Fallback     bool            `json:"-"`
}

// Issue is a single review finding.
//
// Type is an open set (bug, style, documentation, performance, security,
// plus whatever else the model invents); unrecognized values are preserved
// verbatim. Severity is normalized to high|medium|low at decode time, with
// unknown or missing values defaulting to low.
type Issue struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// DocSuggestion is a missing-documentation finding.
type DocSuggestion struct {
	Function   string `json:"function"`
	Line       int    `json:"line"`
	Suggestion string `json:"suggestion"`
}
