// Package utils provides themed terminal output helpers shared by the CLI
// commands.
package utils

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Gruvbox-flavored palette, mapped onto the 16 ANSI colors so it degrades
// cleanly on terminals without truecolor.
var (
	gruvboxRed    = text.Colors{text.FgRed}
	gruvboxGreen  = text.Colors{text.FgGreen}
	gruvboxYellow = text.Colors{text.FgYellow}
	gruvboxBlue   = text.Colors{text.FgBlue}
	gruvboxAqua   = text.Colors{text.FgCyan}
	gruvboxGray   = text.Colors{text.FgHiBlack}
	gruvboxBold   = text.Colors{text.Bold}
)

// Theme holds the exported colors used for consistent CLI output
var Theme = struct {
	Success text.Colors
	Info    text.Colors
	Warning text.Colors
	Error   text.Colors
	Heading text.Colors
	Subtle  text.Colors
	Accent  text.Colors

	Title       text.Colors
	TableHeader text.Colors
	TableBorder text.Colors
	TableRow    text.Colors
	TableAltRow text.Colors
}{
	Success: gruvboxGreen,
	Info:    gruvboxBlue,
	Warning: gruvboxYellow,
	Error:   gruvboxRed,
	Heading: append(text.Colors{text.FgHiCyan}, text.Bold),
	Subtle:  gruvboxGray,
	Accent:  gruvboxAqua,

	Title:       append(text.Colors{text.FgHiCyan}, text.Bold),
	TableHeader: append(text.Colors{text.FgHiBlue}, text.Bold),
	TableBorder: gruvboxBlue,
	TableRow:    text.Colors{text.FgWhite},
	TableAltRow: text.Colors{text.FgWhite, text.Faint},
}

// PrintHeading prints a formatted heading
func PrintHeading(title string) {
	fmt.Println(Theme.Heading.Sprint(title))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(Theme.Success.Sprint("✓ ") + message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Println(Theme.Info.Sprint("ℹ ") + message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(Theme.Warning.Sprint("⚠ ") + message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(Theme.Error.Sprint("✗ ") + message)
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	fmt.Printf("%s: %s\n", gruvboxBold.Sprint(key), value)
}

// PrintKeyValueWithColor prints a key-value pair with a colored value
func PrintKeyValueWithColor(key, value string, colors text.Colors) {
	fmt.Printf("%s: %s\n", gruvboxBold.Sprint(key), colors.Sprint(value))
}

// PrintDivider prints a horizontal divider
func PrintDivider() {
	fmt.Println(Theme.Subtle.Sprint("───────────────────────────────────────────────────"))
}

// CreateTable creates a table writer with the shared theme applied
func CreateTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	if title != "" {
		t.SetTitle(title)
	}

	style := table.StyleLight
	style.Color.Header = Theme.TableHeader
	style.Color.Border = Theme.TableBorder
	style.Color.Row = Theme.TableRow
	style.Color.RowAlternate = Theme.TableAltRow
	style.Title.Colors = Theme.Title
	style.Title.Align = text.AlignCenter
	style.Box.PaddingLeft = " "
	style.Box.PaddingRight = " "
	t.SetStyle(style)

	return t
}

// PrintTable prints a table with headers and rows
func PrintTable(title string, headers []string, rows [][]string) {
	t := CreateTable(title)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := table.Row{}
		for _, cell := range row {
			tableRow = append(tableRow, cell)
		}
		t.AppendRow(tableRow)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignCenter,
		})
	}
	t.SetColumnConfigs(configs)

	t.Render()
}
