package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantorre/redline/internal/loggy"
)

func TestNormalize(t *testing.T) {
	normalizer := NewNormalizer(loggy.NewNoopLogger())

	t.Run("json fence with surrounding prose", func(t *testing.T) {
		input := `I've reviewed the code and found a few things worth fixing.

` + "```json" + `
{
  "summary": "Error handling needs work",
  "issues": [
    {
      "type": "bug",
      "severity": "high",
      "line": 23,
      "message": "Error return value is discarded",
      "suggestion": "Check the error before continuing"
    }
  ],
  "missing_docstrings": [
    {
      "function": "processData",
      "line": 10,
      "suggestion": "Document the expected input format"
    }
  ],
  "overall_score": 6.5
}
` + "```" + `

Let me know if you want more detail on any of these.`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.False(t, out.Fallback)
		assert.Empty(t, out.RawResponse)
		assert.Equal(t, "Error handling needs work", out.Summary)
		assert.Equal(t, 6.5, out.OverallScore)
		require.Len(t, out.Issues, 1)

		issue := out.Issues[0]
		assert.Equal(t, "bug", issue.Type)
		assert.Equal(t, "high", issue.Severity)
		assert.Equal(t, 23, issue.Line)
		assert.Equal(t, "Error return value is discarded", issue.Message)

		require.Len(t, out.MissingDocs, 1)
		assert.Equal(t, "processData", out.MissingDocs[0].Function)
		assert.Equal(t, 10, out.MissingDocs[0].Line)
	})

	t.Run("generic fence", func(t *testing.T) {
		input := "Here you go:\n```\n{\"summary\": \"Looks fine\", \"issues\": [], \"missing_docstrings\": [], \"overall_score\": 9}\n```"

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.False(t, out.Fallback)
		assert.Equal(t, "Looks fine", out.Summary)
		assert.Equal(t, 9.0, out.OverallScore)
		assert.Empty(t, out.Issues)
	})

	t.Run("bare json without fence", func(t *testing.T) {
		input := `{"summary": "No issues found", "issues": [], "missing_docstrings": [], "overall_score": 10}`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.False(t, out.Fallback)
		assert.Equal(t, "No issues found", out.Summary)
		assert.Equal(t, 10.0, out.OverallScore)
	})

	t.Run("unclosed fence still decodes", func(t *testing.T) {
		input := "```json\n{\"summary\": \"Truncated but valid\", \"issues\": [], \"overall_score\": 7}"

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.False(t, out.Fallback)
		assert.Equal(t, "Truncated but valid", out.Summary)
	})

	t.Run("repair pass fixes trailing commas", func(t *testing.T) {
		input := `{
  "summary": "Mostly fine",
  "issues": [
    {
      "type": "style",
      "severity": "low",
      "line": 4,
      "message": "Inconsistent naming",
      "suggestion": "",
    },
  ],
  "overall_score": 8,
}`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.False(t, out.Fallback)
		assert.Equal(t, "Mostly fine", out.Summary)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, "style", out.Issues[0].Type)
	})

	t.Run("repair pass fixes unquoted keys and single quotes", func(t *testing.T) {
		input := `{summary: 'Quick pass', issues: [], overall_score: 7}`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.False(t, out.Fallback)
		assert.Equal(t, "Quick pass", out.Summary)
		assert.Equal(t, 7.0, out.OverallScore)
	})

	t.Run("undecodable response falls back without error", func(t *testing.T) {
		input := `I apologize, but I was unable to complete the review in the requested format. The code appears to mix several concerns.`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.True(t, out.Fallback)
		assert.Equal(t, FallbackSummary, out.Summary)
		assert.Equal(t, FallbackScore, out.OverallScore)
		assert.Empty(t, out.Issues)
		assert.Empty(t, out.MissingDocs)
		assert.Equal(t, input, out.RawResponse, "raw text must be preserved verbatim")
	})

	t.Run("empty response falls back", func(t *testing.T) {
		out := normalizer.Normalize("")

		require.NotNil(t, out)
		assert.True(t, out.Fallback)
		assert.Equal(t, FallbackScore, out.OverallScore)
	})

	t.Run("severity defaults to low when missing or unrecognized", func(t *testing.T) {
		input := `{
  "summary": "Review",
  "issues": [
    {"type": "bug", "line": 1, "message": "first"},
    {"type": "security", "severity": "critical", "line": 2, "message": "second"},
    {"type": "style", "severity": "MEDIUM", "line": 3, "message": "third"}
  ],
  "overall_score": 5
}`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		require.Len(t, out.Issues, 3)
		assert.Equal(t, "low", out.Issues[0].Severity)
		assert.Equal(t, "low", out.Issues[1].Severity, "unrecognized severity becomes low")
		assert.Equal(t, "medium", out.Issues[2].Severity, "case is normalized")
	})

	t.Run("unrecognized issue type preserved verbatim", func(t *testing.T) {
		input := `{"summary": "Review", "issues": [{"type": "maintainability", "severity": "low", "line": 8, "message": "deep nesting"}], "overall_score": 6}`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, "maintainability", out.Issues[0].Type)
	})

	t.Run("missing issue type becomes unknown", func(t *testing.T) {
		input := `{"summary": "Review", "issues": [{"severity": "high", "line": 2, "message": "something"}], "overall_score": 4}`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, "unknown", out.Issues[0].Type)
	})

	t.Run("line numbers coerced from strings and floats", func(t *testing.T) {
		input := `{
  "summary": "Review",
  "issues": [
    {"type": "bug", "severity": "high", "line": "42", "message": "string line"},
    {"type": "bug", "severity": "low", "line": 17.0, "message": "float line"},
    {"type": "bug", "severity": "low", "line": "n/a", "message": "unparseable line"}
  ],
  "missing_docstrings": [{"function": "helper", "line": "9", "suggestion": "add docs"}],
  "overall_score": "7.5"
}`

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		require.Len(t, out.Issues, 3)
		assert.Equal(t, 42, out.Issues[0].Line)
		assert.Equal(t, 17, out.Issues[1].Line)
		assert.Equal(t, 0, out.Issues[2].Line)
		require.Len(t, out.MissingDocs, 1)
		assert.Equal(t, 9, out.MissingDocs[0].Line)
		assert.Equal(t, 7.5, out.OverallScore)
	})

	t.Run("json fence preferred over earlier generic fence", func(t *testing.T) {
		input := "```\nnot the payload\n```\nThe actual review:\n```json\n{\"summary\": \"Payload\", \"issues\": [], \"overall_score\": 8}\n```"

		out := normalizer.Normalize(input)

		require.NotNil(t, out)
		assert.False(t, out.Fallback)
		assert.Equal(t, "Payload", out.Summary)
	})
}
