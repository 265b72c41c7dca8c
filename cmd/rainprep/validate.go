package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/rainfall-features/internal/adapter/csv"
	"github.com/couchcryptid/rainfall-features/internal/adapter/storage"
	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/spf13/cobra"
)

// maxReportedErrors caps the detail lines printed per phase.
const maxReportedErrors = 20

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

var errValidationFailed = errors.New("validation failed")

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// indicatorPrefixes are the one-hot groups of an encoded table. A group with a
// single observed level encodes to zero indicator columns.
var indicatorPrefixes = []string{"Province_", "Season_", "Q_"}

func newValidateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an encoded CSV for scaling, encoding and feature-selection invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = a.cfg.OutputPath
			}
			store, err := storage.New(a.cfg, a.logger)
			if err != nil {
				return err
			}
			rc, err := store.Open(cmd.Context(), file)
			if err != nil {
				return err
			}
			defer rc.Close()

			cols, err := csv.ReadColumns(rc)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			return runValidation(cmd.OutOrStdout(), file, cols)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "encoded CSV to check; defaults to RAIN_OUTPUT_PATH")
	return cmd
}

func runValidation(out io.Writer, file string, cols csv.Columns) error {
	fmt.Fprintf(out, "=== Encoded dataset validation: %s ===\n\n", file)

	phases := []*phase{
		validateLayout(cols),
		validateScaling(cols),
		validateOneHot(cols),
		validateDerived(cols),
		validateFeatureSelection(cols),
	}

	allPassed := true
	for _, p := range phases {
		status := passStyle.Render("PASS")
		if !p.passed() {
			status = failStyle.Render(fmt.Sprintf("FAIL (%d errors)", len(p.errors)))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-40s %s\n", p.name, status)
	}
	fmt.Fprintf(out, "\nRows: %d, columns: %d\n", cols.Rows, len(cols.Names))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReportedErrors {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxReportedErrors)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return nil
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return errValidationFailed
}

// ── Phase 1: Layout ──

func validateLayout(cols csv.Columns) *phase {
	p := &phase{name: "Phase 1: Column layout"}

	for _, name := range []string{domain.ColYear, domain.ColMonth, domain.ColAvgRain, domain.ColRainySeason} {
		if !slices.Contains(cols.Names, name) {
			p.errorf("missing column %q", name)
		}
	}
	for _, name := range domain.ScaledColumns {
		if !slices.Contains(cols.Names, name) {
			p.errorf("missing scaled column %q", name)
		}
	}
	for _, name := range []string{domain.ColProvince, domain.ColSeason, domain.ColQuarter} {
		if slices.Contains(cols.Names, name) {
			p.errorf("categorical column %q should have been replaced by indicators", name)
		}
	}
	if cols.Rows == 0 {
		p.errorf("no data rows")
	}
	return p
}

// ── Phase 2: Scaling ──

func validateScaling(cols csv.Columns) *phase {
	p := &phase{name: "Phase 2: Min-max scaling"}

	for _, name := range domain.ScaledColumns {
		values, ok := cols.Values[name]
		if !ok {
			continue
		}
		lo, hi := 1.0, 0.0
		for i, raw := range values {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				p.errorf("%s line %d: invalid number %q", name, cols.Line(i), raw)
				continue
			}
			if v < 0 || v > 1 {
				p.errorf("%s line %d: %v outside [0,1]", name, cols.Line(i), v)
			}
			lo, hi = min(lo, v), max(hi, v)
		}
		// A constant column scales to all zeros; otherwise both bounds are hit.
		if len(values) > 0 && hi != 0 && (lo != 0 || hi != 1) {
			p.errorf("%s: observed range [%v, %v], want [0, 1]", name, lo, hi)
		}
	}
	return p
}

// ── Phase 3: One-hot encoding ──

func validateOneHot(cols csv.Columns) *phase {
	p := &phase{name: "Phase 3: One-hot indicators"}

	for _, prefix := range indicatorPrefixes {
		group := groupColumns(cols.Names, prefix)
		for i := range cols.Rows {
			sum := 0
			for _, name := range group {
				v := strings.TrimSpace(cols.Values[name][i])
				switch v {
				case "0":
				case "1":
					sum++
				default:
					p.errorf("%s line %d: indicator value %q", name, cols.Line(i), v)
				}
			}
			if sum > 1 {
				p.errorf("%s* line %d: %d indicators set", prefix, cols.Line(i), sum)
			}
		}
	}
	return p
}

// ── Phase 4: Derived features ──

func validateDerived(cols csv.Columns) *phase {
	p := &phase{name: "Phase 4: Season and quarter consistency"}

	months, ok := cols.Values[domain.ColMonth]
	if !ok {
		return p
	}
	seasonCols := groupColumns(cols.Names, "Season_")
	quarterCols := groupColumns(cols.Names, "Q_")
	seasons := map[string]bool{}
	quarters := map[string]bool{}

	for i, raw := range months {
		month, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || month < 1 || month > 12 {
			p.errorf("line %d: invalid MONTH %q", cols.Line(i), raw)
			continue
		}
		seasons[string(domain.SeasonOf(month))] = true
		quarters[strconv.Itoa(domain.QuarterOf(month))] = true

		wantSeason := "Season_" + string(domain.SeasonOf(month))
		for _, name := range seasonCols {
			if set := cols.Values[name][i] == "1"; set != (name == wantSeason) {
				p.errorf("line %d: MONTH=%d but %s=%s", cols.Line(i), month, name, cols.Values[name][i])
			}
		}

		wantQuarter := "Q_" + strconv.Itoa(domain.QuarterOf(month))
		for _, name := range quarterCols {
			if set := cols.Values[name][i] == "1"; set != (name == wantQuarter) {
				p.errorf("line %d: MONTH=%d but %s=%s", cols.Line(i), month, name, cols.Values[name][i])
			}
		}

		if rainy, ok := cols.Values[domain.ColRainySeason]; ok {
			want := "0"
			if domain.IsRainySeason(month) {
				want = "1"
			}
			if strings.TrimSpace(rainy[i]) != want {
				p.errorf("line %d: MONTH=%d but IsRainySeason=%s", cols.Line(i), month, rainy[i])
			}
		}
	}

	checkIndicatorSet(p, "Season_", seasons, seasonCols)
	checkIndicatorSet(p, "Q_", quarters, quarterCols)
	return p
}

// checkIndicatorSet compares a group's columns with the levels implied by
// MONTH: every level but the first in sort order gets a column.
func checkIndicatorSet(p *phase, prefix string, levels map[string]bool, got []string) {
	if len(levels) == 0 {
		return
	}
	sorted := slices.Sorted(maps.Keys(levels))
	want := make([]string, 0, len(sorted)-1)
	for _, level := range sorted[1:] {
		want = append(want, prefix+level)
	}
	if !slices.Equal(want, got) {
		p.errorf("%s* columns %v, want %v for observed months", prefix, got, want)
	}
}

// ── Phase 5: Feature selection ──

func validateFeatureSelection(cols csv.Columns) *phase {
	p := &phase{name: "Phase 5: Feature selection"}

	if _, ok := cols.Values[domain.ColAvgRain]; !ok {
		p.errorf("target column %s missing", domain.ColAvgRain)
	} else {
		checkNumeric(p, cols, domain.ColAvgRain)
	}

	features := domain.FeatureColumns(cols.Names)
	if len(features) == 0 {
		p.errorf("no feature columns")
	}
	for _, name := range features {
		if !isModelInput(name) {
			continue
		}
		checkNumeric(p, cols, name)
	}
	return p
}

// isModelInput reports whether a feature column is produced by encoding and
// must therefore be numeric. Passthrough columns are left to the caller.
func isModelInput(name string) bool {
	if slices.Contains(domain.ScaledColumns, name) || name == domain.ColRainySeason {
		return true
	}
	return slices.ContainsFunc(indicatorPrefixes, func(prefix string) bool {
		return strings.HasPrefix(name, prefix)
	})
}

func checkNumeric(p *phase, cols csv.Columns, name string) {
	for i, raw := range cols.Values[name] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			p.errorf("%s line %d: non-numeric feature value %q", name, cols.Line(i), raw)
		}
	}
}

func groupColumns(names []string, prefix string) []string {
	var group []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			group = append(group, name)
		}
	}
	return group
}
