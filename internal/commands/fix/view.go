package fix

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/vantorre/redline/internal/review"
)

// View renders the fix browser
func (m Model) View() string {
	if !m.ready {
		return "Loading...\n"
	}

	var footer string
	if m.showHelp {
		footer = m.help.View(Keys)
	} else {
		footer = m.help.ShortHelpView(Keys.ShortHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatusBar(),
		footer,
	)
}

func (m Model) renderHeader() string {
	left := m.styles.Header.Render(fmt.Sprintf("Review: %s", m.record.FilePath))

	var position string
	if len(m.record.Issues) == 0 {
		position = "No issues"
	} else {
		position = fmt.Sprintf("Issue %d/%d", m.currentIssue+1, len(m.record.Issues))
	}
	right := m.styles.Header.Render(position)

	spacerWidth := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Left, left, spacer, right)
}

func (m Model) renderStatusBar() string {
	status := m.statusMessage
	if m.status == StatusApplying {
		status = m.spinner.View() + " " + status
	}
	return m.styles.StatusBar.Width(m.width).Render(status)
}

// renderIssueContent prepares the viewport content for the current issue
func (m Model) renderIssueContent() string {
	if len(m.record.Issues) == 0 {
		return m.styles.Success.Render("\n✓ No issues in this record.")
	}
	if m.currentIssue < 0 || m.currentIssue >= len(m.record.Issues) {
		return m.styles.Error.Render("Invalid issue index")
	}

	issue := m.record.Issues[m.currentIssue]

	var sb strings.Builder

	title := fmt.Sprintf("[%s] %s", strings.ToUpper(string(issue.Severity)), issue.Type)
	sb.WriteString(m.severityStyle(issue.Severity).Render(title))
	if _, ok := m.applied[m.currentIssue]; ok {
		sb.WriteString(" " + m.styles.Success.Render("[APPLIED]"))
	}
	sb.WriteString("\n\n")

	path := issue.FilePath
	if path == "" {
		path = m.record.FilePath
	}
	sb.WriteString(m.styles.Subtle.Render(fmt.Sprintf("%s:%d", path, issue.Line)))
	sb.WriteString("\n\n")

	sb.WriteString(m.renderMarkdown(issue.Message))
	sb.WriteString("\n")

	if issue.Suggestion != "" {
		sb.WriteString(m.styles.Title.Render("Suggestion"))
		sb.WriteString("\n")
		sb.WriteString(m.renderMarkdown(issue.Suggestion))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderMarkdown renders text through glamour, falling back to plain word
// wrapping when rendering fails.
func (m Model) renderMarkdown(text string) string {
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(text); err == nil {
			return rendered
		}
	}

	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	return m.styles.Paragraph.Render(wordwrap.String(text, width))
}

func (m Model) severityStyle(severity review.IssueSeverity) lipgloss.Style {
	switch severity {
	case review.IssueSeverityHigh:
		return m.styles.HighSeverity
	case review.IssueSeverityMedium:
		return m.styles.MediumSeverity
	default:
		return m.styles.LowSeverity
	}
}
