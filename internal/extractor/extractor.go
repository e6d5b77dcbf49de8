package extractor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/vantorre/redline/internal/loggy"
)

// FallbackSummary is the summary text of records produced when a model
// response could not be decoded.
const FallbackSummary = "Review completed"

// FallbackScore is the neutral score assigned to undecodable responses.
const FallbackScore = 5.0

// Normalizer turns raw model text into a ReviewOutput. Models frequently
// wrap their JSON in prose or markdown fences despite being asked for
// "ONLY valid JSON"; the Normalizer strips fencing, repairs common damage
// (trailing commas, single quotes, unquoted keys) and, when all of that
// fails, degrades to a fallback output rather than reporting an error.
type Normalizer struct {
	logger *loggy.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *loggy.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize recovers a structured review from raw model text. It never
// fails and never panics: undecodable responses produce a fallback output
// with a neutral score and the raw text preserved verbatim.
func (n *Normalizer) Normalize(raw string) *ReviewOutput {
	candidate := extractCandidate(raw)

	out, err := decodeReview(candidate)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr == nil {
			out, err = decodeReview(repaired)
			if err == nil {
				n.logger.Debug("decoded model response after repair pass")
			}
		}
	}
	if err != nil {
		n.logger.Debug("model response not decodable, using fallback",
			"error", err,
			"response_length", len(raw),
		)
		return &ReviewOutput{
			Summary:      FallbackSummary,
			Issues:       []Issue{},
			MissingDocs:  []DocSuggestion{},
			OverallScore: FallbackScore,
			RawResponse:  raw,
			Fallback:     true,
		}
	}

	return out
}

// extractCandidate selects the text to decode: the interior of the first
// ```json fence if present, else the interior of the first generic fence,
// else the whole text verbatim.
func extractCandidate(raw string) string {
	if idx := strings.Index(raw, "```json"); idx >= 0 {
		return fenceInterior(raw[idx+len("```json"):])
	}
	if idx := strings.Index(raw, "```"); idx >= 0 {
		return fenceInterior(raw[idx+len("```"):])
	}
	return strings.TrimSpace(raw)
}

// fenceInterior trims rest at the next closing fence, or takes everything
// when the model forgot to close the block.
func fenceInterior(rest string) string {
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// decodeReview unmarshals a candidate into the wire shape. Line numbers
// and scores arrive as numbers or strings depending on model mood, so the
// decode goes through intermediate types and coerces once here; the same
// applies to severity defaulting.
func decodeReview(candidate string) (*ReviewOutput, error) {
	type rawIssue struct {
		Type       string      `json:"type"`
		Severity   string      `json:"severity"`
		Line       interface{} `json:"line"`
		Message    string      `json:"message"`
		Suggestion string      `json:"suggestion"`
	}
	type rawDoc struct {
		Function   string      `json:"function"`
		Line       interface{} `json:"line"`
		Suggestion string      `json:"suggestion"`
	}
	type rawReview struct {
		Summary      string      `json:"summary"`
		Issues       []rawIssue  `json:"issues"`
		MissingDocs  []rawDoc    `json:"missing_docstrings"`
		OverallScore interface{} `json:"overall_score"`
	}

	var decoded rawReview
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return nil, err
	}

	out := &ReviewOutput{
		Summary:      decoded.Summary,
		Issues:       make([]Issue, 0, len(decoded.Issues)),
		MissingDocs:  make([]DocSuggestion, 0, len(decoded.MissingDocs)),
		OverallScore: coerceScore(decoded.OverallScore),
	}

	for _, ri := range decoded.Issues {
		issue := Issue{
			Type:       ri.Type,
			Severity:   normalizeSeverity(ri.Severity),
			Line:       coerceLine(ri.Line),
			Message:    ri.Message,
			Suggestion: ri.Suggestion,
		}
		if issue.Type == "" {
			issue.Type = "unknown"
		}
		out.Issues = append(out.Issues, issue)
	}

	for _, rd := range decoded.MissingDocs {
		out.MissingDocs = append(out.MissingDocs, DocSuggestion{
			Function:   rd.Function,
			Line:       coerceLine(rd.Line),
			Suggestion: rd.Suggestion,
		})
	}

	return out, nil
}

// normalizeSeverity maps a model-reported severity onto high|medium|low.
// Anything unrecognized, including absence, becomes low.
func normalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return "high"
	case "medium":
		return "medium"
	case "low":
		return "low"
	}
	return "low"
}

// coerceLine parses a line number from whatever encoding the model chose.
func coerceLine(value interface{}) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if num, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return num
		}
	}
	return 0
}

// coerceScore parses an overall score from number or string form.
func coerceScore(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
