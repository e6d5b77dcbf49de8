package review

import (
	"bytes"
	"fmt"
	"text/template"
)

// reviewPromptTemplate asks the model for exactly the JSON shape the
// extractor decodes. Field names, severity values and the ```suggestion
// convention are a wire contract shared with extractor.ReviewOutput.
const reviewPromptTemplate = `You are an expert AI code reviewer. Analyze the following code and provide a comprehensive review.
{{- if .DiffMode}}

The input is a unified diff. Review only added or changed lines and report line numbers from the new side of the diff.
{{- end}}

Code to review{{if .Header}} ({{.Header}}){{end}}:
{{.Code}}

Provide your review in the following JSON format:
{
    "summary": "Brief summary of the review",
    "issues": [
        {
            "type": "bug|style|documentation|performance|security",
            "severity": "high|medium|low",
            "line": <line_number>,
            "message": "Description of the issue",
            "suggestion": "Code suggestion in markdown format with ` + "```suggestion" + ` blocks"
        }
    ],
    "missing_docstrings": [
        {
            "function": "function_name",
            "line": <line_number>,
            "suggestion": "Suggested docstring"
        }
    ],
    "overall_score": <score_out_of_10>
}

Focus on:
1. Code style and formatting issues
2. Missing function/method docstrings
3. Potential bugs or logical errors
4. Performance improvements
5. Security concerns
6. Best practices violations

Return ONLY valid JSON, no additional text.`

// PromptOptions control how the review prompt is assembled.
type PromptOptions struct {
	// Label identifies what is being reviewed: a file path or a synthetic
	// name like "pasted_code".
	Label string

	// Language is the detected source language, shown next to the label so
	// the model knows what it is reading.
	Language string

	// DiffMode marks the input as a unified diff rather than file content.
	DiffMode bool
}

// DefaultPromptOptions returns prompt options for unlabeled plain code.
func DefaultPromptOptions() *PromptOptions {
	return &PromptOptions{}
}

// BuildReviewPrompt renders the review prompt for a piece of code or diff
// text.
func BuildReviewPrompt(code string, opts *PromptOptions) (string, error) {
	if opts == nil {
		opts = DefaultPromptOptions()
	}

	tmpl, err := template.New("review").Parse(reviewPromptTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing review prompt template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]interface{}{
		"Code":     code,
		"Header":   promptHeader(opts),
		"DiffMode": opts.DiffMode,
	})
	if err != nil {
		return "", fmt.Errorf("rendering review prompt: %w", err)
	}

	return buf.String(), nil
}

// promptHeader combines label and language into the header shown above the
// code body.
func promptHeader(opts *PromptOptions) string {
	switch {
	case opts.Label != "" && opts.Language != "":
		return fmt.Sprintf("%s, %s", opts.Label, opts.Language)
	case opts.Label != "":
		return opts.Label
	case opts.Language != "":
		return opts.Language
	}
	return ""
}
