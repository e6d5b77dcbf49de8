package extractor

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoSuggestion is returned when suggestion text carries no fenced code
// fragment to apply.
var ErrNoSuggestion = errors.New("no suggestion code found")

var (
	// GitHub-style ```suggestion blocks take priority over everything else.
	suggestionFenceRe = regexp.MustCompile("(?s)```suggestion[ \t]*\n(.*?)```")

	// Any other fence, optionally tagged with a language.
	codeFenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*[ \t]*\n(.*?)```")
)

// ExtractSuggestionCode recovers the literal code fragment embedded in an
// issue's suggestion text. A ```suggestion fence wins over any other code
// fence regardless of position; within each kind the first match in
// document order is used. A fence with an empty interior yields an empty
// fragment, which callers must reject before applying.
func ExtractSuggestionCode(text string) (string, error) {
	if m := suggestionFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", ErrNoSuggestion
}
