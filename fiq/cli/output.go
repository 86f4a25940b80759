package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer renders command results either as styled text or as indented JSON.
type Printer struct {
	w    io.Writer
	json bool
}

// NewPrinter writes to w. With asJSON set, JSON reports true and styled
// helpers are expected to be skipped by the caller.
func NewPrinter(w io.Writer, asJSON bool) *Printer {
	return &Printer{w: w, json: asJSON}
}

// IsJSON reports whether JSON output mode is enabled.
func (p *Printer) IsJSON() bool { return p.json }

// JSON outputs data as JSON if JSON mode is enabled and reports whether it did.
func (p *Printer) JSON(data any) (bool, error) {
	if !p.json {
		return false, nil
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return true, fmt.Errorf("failed to encode output: %w", err)
	}
	return true, nil
}

func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", SuccessStyle.Render(SymbolSuccess), msg)
}

func (p *Printer) Successf(format string, args ...any) {
	p.Success(fmt.Sprintf(format, args...))
}

func (p *Printer) Error(err error) {
	fmt.Fprintf(p.w, "  %s %s\n", ErrorStyle.Render(SymbolError), ErrorStyle.Render(err.Error()))
}

func (p *Printer) Warning(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", WarningStyle.Render(SymbolWarning), WarningStyle.Render(msg))
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", DimStyle.Render(SymbolInfo), msg)
}

func (p *Printer) Hint(msg string) {
	fmt.Fprintf(p.w, "\n  %s\n", HintStyle.Render(msg))
}

func (p *Printer) Header(title string) {
	fmt.Fprintf(p.w, "\n  %s\n\n", BoldStyle.Render(title))
}

func (p *Printer) KeyValue(key, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", KeyStyle.Render(key), value)
}

func (p *Printer) Bullet(text string) {
	fmt.Fprintf(p.w, "    %s %s\n", DimStyle.Render(SymbolBullet), text)
}

func (p *Printer) Indented(text string, level int) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", level), text)
}

func (p *Printer) Newline() {
	fmt.Fprintln(p.w)
}

// Table is a column-aligned text table.
type Table struct {
	Headers []string
	Rows    [][]string
	Widths  []int
}

func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{Headers: headers, Widths: widths}
}

// AddRow pads or truncates cells to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
			if w := lipgloss.Width(cells[i]); w > t.Widths[i] {
				t.Widths[i] = w
			}
		}
	}
	t.Rows = append(t.Rows, row)
}

// Table renders t. Nothing is printed for an empty table.
func (p *Printer) Table(t *Table) {
	if len(t.Rows) == 0 {
		return
	}
	fmt.Fprint(p.w, "  ")
	for i, h := range t.Headers {
		fmt.Fprint(p.w, TableHeaderStyle.Width(t.Widths[i]+2).Render(h))
	}
	fmt.Fprintln(p.w)

	fmt.Fprint(p.w, "  ")
	for i := range t.Headers {
		fmt.Fprint(p.w, DimStyle.Render(strings.Repeat("─", t.Widths[i])), "  ")
	}
	fmt.Fprintln(p.w)

	for _, row := range t.Rows {
		fmt.Fprint(p.w, "  ")
		for i, cell := range row {
			fmt.Fprint(p.w, TableCellStyle.Width(t.Widths[i]+2).Render(cell))
		}
		fmt.Fprintln(p.w)
	}
}
