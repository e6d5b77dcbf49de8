package fix

import (
	tea "github.com/charmbracelet/bubbletea"
)

// applyFixCmd applies the fix for one issue off the UI loop
func applyFixCmd(m Model, index int) tea.Cmd {
	return func() tea.Msg {
		result, err := m.reviews.ApplyFix(m.ctx, m.record, index, m.contextLines)
		if err != nil {
			return fixAppliedMsg{index: index, err: err}
		}
		return fixAppliedMsg{
			index:      index,
			message:    result.Message,
			backupPath: result.BackupPath,
		}
	}
}
