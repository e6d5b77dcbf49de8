package fix

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents the color theme for the fix browser
type Theme struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	TextDim   lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
}

// GruvboxTheme creates a Gruvbox-inspired theme
func GruvboxTheme() Theme {
	return Theme{
		Primary: lipgloss.AdaptiveColor{
			Light: "#b8bb26",
			Dark:  "#b8bb26",
		},
		Secondary: lipgloss.AdaptiveColor{
			Light: "#fe8019",
			Dark:  "#fe8019",
		},
		Success: lipgloss.AdaptiveColor{
			Light: "#98971a",
			Dark:  "#b8bb26",
		},
		Warning: lipgloss.AdaptiveColor{
			Light: "#d79921",
			Dark:  "#fabd2f",
		},
		Error: lipgloss.AdaptiveColor{
			Light: "#cc241d",
			Dark:  "#fb4934",
		},
		Info: lipgloss.AdaptiveColor{
			Light: "#458588",
			Dark:  "#83a598",
		},
		Border: lipgloss.AdaptiveColor{
			Light: "#d5c4a1",
			Dark:  "#504945",
		},
		Text: lipgloss.AdaptiveColor{
			Light: "#3c3836",
			Dark:  "#fbf1c7",
		},
		TextDim: lipgloss.AdaptiveColor{
			Light: "#7c6f64",
			Dark:  "#a89984",
		},
		Highlight: lipgloss.AdaptiveColor{
			Light: "#d5c4a1",
			Dark:  "#3c3836",
		},
	}
}

// DefaultTheme is the theme used by the fix browser
var DefaultTheme = GruvboxTheme()

// Styles contains the predefined styles for the fix browser
type Styles struct {
	Title          lipgloss.Style
	Paragraph      lipgloss.Style
	Subtle         lipgloss.Style
	Success        lipgloss.Style
	Warning        lipgloss.Style
	Error          lipgloss.Style
	Spinner        lipgloss.Style
	StatusBar      lipgloss.Style
	Header         lipgloss.Style
	HighSeverity   lipgloss.Style
	MediumSeverity lipgloss.Style
	LowSeverity    lipgloss.Style
}

// DefaultStyles returns the default styles for the fix browser
func DefaultStyles() Styles {
	theme := DefaultTheme

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text),

		Paragraph: lipgloss.NewStyle().
			Foreground(theme.Text),

		Subtle: lipgloss.NewStyle().
			Foreground(theme.TextDim),

		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		StatusBar: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text).
			Background(theme.Highlight).
			PaddingLeft(1).
			PaddingRight(1),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			PaddingLeft(1).
			PaddingRight(1),

		HighSeverity: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),

		MediumSeverity: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		LowSeverity: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Info),
	}
}

// DefaultStyle is the default style set for the fix browser
var DefaultStyle = DefaultStyles()
