package fix

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Leave room for the header, status bar, and help line
		verticalPadding := 7
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - verticalPadding
		m.ready = true
		m.viewport.SetContent(m.renderIssueContent())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, Keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, Keys.NextIssue) && m.status == StatusBrowsing:
			if len(m.record.Issues) > 0 {
				m.currentIssue = (m.currentIssue + 1) % len(m.record.Issues)
				m.viewport.SetContent(m.renderIssueContent())
				m.viewport.GotoTop()
			}
			return m, nil

		case key.Matches(msg, Keys.PrevIssue) && m.status == StatusBrowsing:
			if len(m.record.Issues) > 0 {
				m.currentIssue = (m.currentIssue - 1 + len(m.record.Issues)) % len(m.record.Issues)
				m.viewport.SetContent(m.renderIssueContent())
				m.viewport.GotoTop()
			}
			return m, nil

		case key.Matches(msg, Keys.ApplyFix) && m.status == StatusBrowsing:
			if len(m.record.Issues) == 0 {
				return m, nil
			}
			if backup, ok := m.applied[m.currentIssue]; ok {
				m.statusMessage = fmt.Sprintf("Already applied; backup at %s", backup)
				return m, nil
			}
			m.status = StatusApplying
			m.statusMessage = "Applying fix..."
			cmds = append(cmds, m.spinner.Tick, applyFixCmd(m, m.currentIssue))
			return m, tea.Batch(cmds...)

		default:
			// Scrolling keys go to the viewport
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case fixAppliedMsg:
		m.status = StatusBrowsing
		if msg.err != nil {
			m.statusMessage = m.styles.Error.Render(fmt.Sprintf("Fix failed: %v", msg.err))
		} else {
			m.applied[msg.index] = msg.backupPath
			m.statusMessage = m.styles.Success.Render(
				fmt.Sprintf("%s (backup: %s)", msg.message, msg.backupPath))
			m.viewport.SetContent(m.renderIssueContent())
		}
		return m, nil

	case spinner.TickMsg:
		if m.status == StatusApplying {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	m.help, cmd = m.help.Update(msg)
	cmds = append(cmds, cmd)

	if _, ok := msg.(tea.KeyMsg); !ok {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
