// Package report summarizes a preparation run for operators. The summary is
// diagnostic output only; nothing downstream parses it.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// sampleFeatureCount caps how many feature names are listed.
const sampleFeatureCount = 8

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// CategoryCount describes one one-hot encoded group.
type CategoryCount struct {
	Name      string
	Levels    int
	Reference string
	Columns   int
}

// ScaledStats compares a scaled column before and after scaling.
type ScaledStats struct {
	Name       string
	BeforeMin  float64
	BeforeMax  float64
	BeforeMean float64
	AfterMin   float64
	AfterMax   float64
	AfterMean  float64
}

// Summary is the diagnostic record of one run.
type Summary struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	Input          string
	Outputs        []string
	Rows           int
	ColumnsBefore  int
	ColumnsAfter   int
	Categories     []CategoryCount
	Scaled         []ScaledStats
	Degenerate     []string
	FeatureCount   int
	SampleFeatures []string
	MemoryBytes    int64
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// FromResult fills the data-derived fields of a summary from a prepared result.
func FromResult(res domain.Result) Summary {
	s := Summary{
		RunID:        res.RunID,
		Degenerate:   append([]string(nil), res.Degenerate...),
		FeatureCount: len(res.Features),
	}
	if res.Derived != nil {
		s.Rows = res.Derived.Rows
		s.ColumnsBefore = len(res.Derived.Columns)
	}
	if res.Table != nil {
		s.ColumnsAfter = len(res.Table.Columns)
		s.MemoryBytes = res.Table.EstimatedBytes()
	}

	for _, g := range res.Groups {
		s.Categories = append(s.Categories, CategoryCount{
			Name:      g.Name,
			Levels:    len(g.Levels),
			Reference: g.Reference,
			Columns:   len(g.Columns),
		})
	}

	for _, r := range res.Ranges {
		st := ScaledStats{Name: r.Name, BeforeMin: r.Min, BeforeMax: r.Max}
		if res.Derived != nil {
			if col, ok := res.Derived.Column(r.Name); ok && len(col.Values) > 0 {
				st.BeforeMean = stat.Mean(col.Values, nil)
			}
		}
		if res.Table != nil {
			if col, ok := res.Table.Column(r.Name); ok && len(col.Values) > 0 {
				st.AfterMin = floats.Min(col.Values)
				st.AfterMax = floats.Max(col.Values)
				st.AfterMean = stat.Mean(col.Values, nil)
			}
		}
		s.Scaled = append(s.Scaled, st)
	}

	n := min(sampleFeatureCount, len(res.Features))
	s.SampleFeatures = append([]string(nil), res.Features[:n]...)
	return s
}

// Render writes a human-readable summary to w.
func Render(w io.Writer, s Summary) error {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render("Rainfall preparation summary"))
	fmt.Fprintf(&b, "Run:        %s\n", s.RunID)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Started:    %s (took %s)\n", s.StartedAt.UTC().Format(time.RFC3339), s.Duration().Round(time.Millisecond))
	}
	if s.Input != "" {
		fmt.Fprintf(&b, "Input:      %s\n", s.Input)
	}
	for _, out := range s.Outputs {
		fmt.Fprintf(&b, "Output:     %s\n", out)
	}
	fmt.Fprintf(&b, "Rows:       %s\n", humanize.Comma(int64(s.Rows)))
	fmt.Fprintf(&b, "Columns:    %d before encoding, %d after\n", s.ColumnsBefore, s.ColumnsAfter)
	fmt.Fprintf(&b, "Memory:     ~%s\n", humanize.Bytes(uint64(max(s.MemoryBytes, 0))))
	fmt.Fprintln(&b)

	categories := make([][]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		categories = append(categories, []string{c.Name, strconv.Itoa(c.Levels), c.Reference, strconv.Itoa(c.Columns)})
	}
	if err := writeTable(&b, []string{"Group", "Levels", "Reference", "Columns"}, categories); err != nil {
		return fmt.Errorf("render categories: %w", err)
	}
	fmt.Fprintln(&b)

	ranges := make([][]string, 0, len(s.Scaled))
	for _, c := range s.Scaled {
		ranges = append(ranges, []string{
			c.Name,
			fmt.Sprintf("%.4g / %.4g / %.4g", c.BeforeMin, c.BeforeMean, c.BeforeMax),
			fmt.Sprintf("%.4g / %.4g / %.4g", c.AfterMin, c.AfterMean, c.AfterMax),
		})
	}
	if err := writeTable(&b, []string{"Column", "Before (min/mean/max)", "After (min/mean/max)"}, ranges); err != nil {
		return fmt.Errorf("render ranges: %w", err)
	}

	if len(s.Degenerate) > 0 {
		fmt.Fprintln(&b, warnStyle.Render("Constant columns scaled to 0: "+strings.Join(s.Degenerate, ", ")))
	}

	fmt.Fprintf(&b, "\nFeatures:   %d", s.FeatureCount)
	if len(s.SampleFeatures) > 0 {
		fmt.Fprintf(&b, " (%s", strings.Join(s.SampleFeatures, ", "))
		if s.FeatureCount > len(s.SampleFeatures) {
			fmt.Fprint(&b, ", ...")
		}
		fmt.Fprint(&b, ")")
	}
	fmt.Fprintln(&b)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// writeTable lays out plain cells with a tabwriter and styles the header line
// afterwards, so escape sequences never count toward column widths.
func writeTable(b *strings.Builder, header []string, rows [][]string) error {
	var plain strings.Builder
	tw := tabwriter.NewWriter(&plain, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	head, body, _ := strings.Cut(plain.String(), "\n")
	b.WriteString(headerStyle.Render(head))
	b.WriteString("\n")
	b.WriteString(body)
	return nil
}
