package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/rohankatakam/defacto/internal/coupling"
)

// CouplingFormatter formats a coupling summary
type CouplingFormatter struct {
	format   string // "table", "json", "csv"
	colorize bool
}

// NewCouplingFormatter creates a formatter. Colour is only used for tables.
func NewCouplingFormatter(format string, colorize bool) *CouplingFormatter {
	return &CouplingFormatter{format: format, colorize: colorize}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// FormatSummary writes the ranked pairs and statistics.
func (f *CouplingFormatter) FormatSummary(w io.Writer, s coupling.Summary) error {
	switch f.format {
	case "json":
		return f.formatJSON(w, s)
	case "csv":
		return f.formatCSV(w, s)
	default:
		return f.formatTable(w, s)
	}
}

func (f *CouplingFormatter) formatTable(w io.Writer, s coupling.Summary) error {
	fmt.Fprintf(w, "Files: %d   Coupled pairs: %d   Max: %d   Mean: %.2f   StdDev: %.2f\n\n",
		s.Stats.Files, s.Stats.Pairs, s.Stats.Max, s.Stats.Mean, s.Stats.StdDev)
	f.writePairTable(w, s.Top, s.Stats.Max)
	return nil
}

// FormatPairs writes pairs without matrix statistics, e.g. pairs read back
// from storage.
func (f *CouplingFormatter) FormatPairs(w io.Writer, pairs []coupling.Pair) error {
	switch f.format {
	case "json":
		if pairs == nil {
			pairs = []coupling.Pair{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(pairs)
	case "csv":
		return writePairCSV(w, pairs)
	default:
		top := 0
		for _, p := range pairs {
			if p.Count > top {
				top = p.Count
			}
		}
		f.writePairTable(w, pairs, top)
		return nil
	}
}

func (f *CouplingFormatter) writePairTable(w io.Writer, pairs []coupling.Pair, top int) {
	if len(pairs) == 0 {
		fmt.Fprintln(w, "No coupled files found.")
		return
	}

	width := 10
	for _, p := range pairs {
		if len(p.A) > width {
			width = len(p.A)
		}
	}
	if width > 60 {
		width = 60
	}

	fmt.Fprintf(w, "%4s  %-*s  %-*s  %6s  %6s\n", "#", width, "File A", width, "File B", "A→B", "B→A")
	fmt.Fprintln(w, strings.Repeat("─", 2*width+28))

	for i, p := range pairs {
		count := fmt.Sprintf("%6d", p.Count)
		if f.colorize {
			count = f.paint(p.Count, top, count)
		}
		fmt.Fprintf(w, "%4d  %-*s  %-*s  %s  %6d\n", i+1, width, p.A, width, p.B, count, p.Reverse)
	}
}

// paint colours a count by its share of the maximum.
func (f *CouplingFormatter) paint(v, top int, s string) string {
	if top == 0 {
		return s
	}
	switch ratio := float64(v) / float64(top); {
	case ratio >= 0.75:
		return color.RedString(s)
	case ratio >= 0.4:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

func (f *CouplingFormatter) formatJSON(w io.Writer, s coupling.Summary) error {
	output := struct {
		Stats coupling.Stats  `json:"stats"`
		Pairs []coupling.Pair `json:"pairs"`
	}{Stats: s.Stats, Pairs: s.Top}

	if output.Pairs == nil {
		output.Pairs = []coupling.Pair{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (f *CouplingFormatter) formatCSV(w io.Writer, s coupling.Summary) error {
	return writePairCSV(w, s.Top)
}

func writePairCSV(w io.Writer, pairs []coupling.Pair) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"file_a", "file_b", "count", "reverse_count"}); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := writer.Write([]string{p.A, p.B, strconv.Itoa(p.Count), strconv.Itoa(p.Reverse)}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteMatrixCSV writes the full matrix: a header of paths, then one row per
// path starting with the path itself.
func WriteMatrixCSV(w io.Writer, m *coupling.Matrix) error {
	writer := csv.NewWriter(w)
	paths := m.Registry().Paths()

	if err := writer.Write(append([]string{""}, paths...)); err != nil {
		return err
	}
	row := make([]string, len(paths)+1)
	for i, p := range paths {
		row[0] = p
		for j := range paths {
			row[j+1] = strconv.Itoa(m.At(i, j))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
