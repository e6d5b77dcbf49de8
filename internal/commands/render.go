package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vantorre/redline/internal/review"
)

// Record rendering styles, Gruvbox-flavored to match the fix browser.
var (
	renderTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#3c3836", Dark: "#fbf1c7"})

	renderSubtle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#7c6f64", Dark: "#a89984"})

	renderGood = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#98971a", Dark: "#b8bb26"})

	renderMiddling = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#d79921", Dark: "#fabd2f"})

	renderBad = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#cc241d", Dark: "#fb4934"})

	renderInfo = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#458588", Dark: "#83a598"})

	renderDivider = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#d5c4a1", Dark: "#504945"})
)

// renderRecord prints a human-readable review record to stdout
func renderRecord(rec *review.Record) {
	divider := renderDivider.Render(strings.Repeat("─", 60))

	fmt.Println(divider)
	fmt.Printf("%s %s\n", renderTitle.Render("Review:"), rec.FilePath)
	if rec.FilesRequested > 0 {
		fmt.Println(renderSubtle.Render(
			fmt.Sprintf("%d of %d files analyzed", rec.FilesAnalyzed, rec.FilesRequested)))
	}
	fmt.Println(divider)

	if rec.Failed() {
		fmt.Printf("%s %s\n", renderBad.Render("Error:"), rec.Error)
		return
	}

	fmt.Printf("%s %s\n", renderTitle.Render("Score:"),
		bandStyle(rec.Band()).Render(fmt.Sprintf("%.1f/10", rec.DisplayScore())))
	fmt.Printf("%s %s\n", renderTitle.Render("Summary:"), rec.Summary)

	if rec.Degraded() {
		fmt.Println(renderMiddling.Render("⚠ The model response could not be parsed; showing the raw reply."))
		fmt.Println(renderSubtle.Render(rec.RawResponse))
		return
	}

	if len(rec.Issues) == 0 {
		fmt.Println(renderGood.Render("✓ No issues found"))
	}

	for i, issue := range rec.Issues {
		fmt.Println()
		header := fmt.Sprintf("%d. [%s] %s", i+1, strings.ToUpper(string(issue.Severity)), issue.Type)
		fmt.Println(severityStyle(issue.Severity).Render(header))

		location := fmt.Sprintf("line %d", issue.Line)
		if issue.FilePath != "" {
			location = fmt.Sprintf("%s:%d", issue.FilePath, issue.Line)
		}
		fmt.Println(renderSubtle.Render("   " + location))
		fmt.Println("   " + issue.Message)
		if issue.Suggestion != "" {
			fmt.Println(renderSubtle.Render("   suggestion: " + issue.Suggestion))
		}
	}

	if len(rec.MissingDocs) > 0 {
		fmt.Println()
		fmt.Println(renderInfo.Render("Missing documentation:"))
		for _, doc := range rec.MissingDocs {
			fmt.Printf("   %s (line %d)\n", doc.Function, doc.Line)
		}
	}
}

func bandStyle(band review.ScoreBand) lipgloss.Style {
	switch band {
	case review.ScoreBandExcellent:
		return renderGood
	case review.ScoreBandGood:
		return renderMiddling
	default:
		return renderBad
	}
}

func severityStyle(severity review.IssueSeverity) lipgloss.Style {
	switch severity {
	case review.IssueSeverityHigh:
		return renderBad
	case review.IssueSeverityMedium:
		return renderMiddling
	default:
		return renderInfo
	}
}
