// Package fix is the interactive browser for review records: page through
// issues and apply suggestion fixes without leaving the terminal.
package fix

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantorre/redline/internal/review"
)

// Run starts the fix browser for a loaded review record and blocks until
// the user quits.
func Run(ctx context.Context, reviews *review.Service, rec *review.Record, recordPath string, contextLines int) error {
	if rec == nil || rec.Failed() {
		return fmt.Errorf("record has no reviewable content")
	}

	model := NewModel(ctx, reviews, rec, recordPath, contextLines)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running fix browser: %w", err)
	}
	return nil
}
