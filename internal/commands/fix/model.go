package fix

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/vantorre/redline/internal/review"
)

// Model holds the fix browser state
type Model struct {
	ctx          context.Context
	reviews      *review.Service
	record       *review.Record
	recordPath   string
	contextLines int

	status        Status
	currentIssue  int
	applied       map[int]string // issue index -> backup path
	statusMessage string
	errorMsg      string

	width    int
	height   int
	ready    bool
	showHelp bool
	styles   Styles

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	renderer *glamour.TermRenderer
}

// NewModel creates the fix browser model for a loaded review record
func NewModel(ctx context.Context, reviews *review.Service, rec *review.Record, recordPath string, contextLines int) Model {
	styles := DefaultStyles()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	h := help.New()
	h.ShowAll = false

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	vp := viewport.New(10, 10)
	vp.Style = styles.Paragraph

	return Model{
		ctx:           ctx,
		reviews:       reviews,
		record:        rec,
		recordPath:    recordPath,
		contextLines:  contextLines,
		status:        StatusBrowsing,
		applied:       make(map[int]string),
		statusMessage: "Use n/p to move between issues, 'a' to apply a fix.",
		styles:        styles,
		viewport:      vp,
		spinner:       s,
		help:          h,
		renderer:      r,
	}
}

// Init returns the initial command
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}
