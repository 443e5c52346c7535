package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/ridoystarlord/migraview/extract"
	"github.com/ridoystarlord/migraview/loader"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	primaryColor   = lipgloss.Color("#00D9FF")
	secondaryColor = lipgloss.Color("#6C757D")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2)
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	gray   = color.New(color.FgHiBlack)
	cyan   = color.New(color.FgCyan, color.Bold)
	blue   = color.New(color.FgBlue)
	bold   = color.New(color.Bold)
)

func parseFormat(s string) (string, error) {
	switch s {
	case formatText, formatJSON:
		return s, nil
	}
	return "", fmt.Errorf("unknown format %q (expected text or json)", s)
}

func printHeader(w io.Writer, title, subtitle string) {
	fmt.Fprintln(w, headerStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		subtitleStyle.Render(subtitle),
	)))
}

func actionColor(a extract.Action) *color.Color {
	switch a.Category {
	case extract.CategoryCreateTable:
		return green
	case extract.CategoryDropTable, extract.CategoryMissingScript:
		return red
	case extract.CategoryAddColumn, extract.CategoryMacro:
		return gray
	default:
		return yellow
	}
}

// printActions renders actions one per line, nested by depth under indent.
func printActions(w io.Writer, indent string, actions []extract.Action) {
	for _, a := range actions {
		if a.Category == extract.CategoryMissingScript {
			red.Fprintf(w, "%s❌ %s\n", indent, a.Text)
			continue
		}
		pad := indent + strings.Repeat("   ", a.Depth)
		fmt.Fprintf(w, "%s%s %s\n", pad, yellow.Sprint("↳"), actionColor(a).Sprint(a.Text))
	}
}

func printTable(w io.Writer, headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	fmt.Fprintln(w, out)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func formatTimestamp(name string) string {
	ts, ok := loader.ParseTimestamp(name)
	if !ok {
		return "-"
	}
	return ts.Format("2006-01-02 15:04:05")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return " └──"
	}
	return " ├──"
}

func printNames(w io.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, name := range names {
		fmt.Fprintln(w, "   -", name)
	}
}
