package domain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ColumnRange holds the observed bounds a column was scaled with.
type ColumnRange struct {
	Name string
	Min  float64
	Max  float64
}

// Degenerate reports whether the column had no spread.
func (r ColumnRange) Degenerate() bool {
	return r.Max == r.Min
}

// Scale maps v into [0,1]. A degenerate range maps every value to 0.
func (r ColumnRange) Scale(v float64) float64 {
	if r.Degenerate() {
		return 0
	}
	return (v - r.Min) / (r.Max - r.Min)
}

// Inverse maps a scaled value back to the original units.
func (r ColumnRange) Inverse(v float64) float64 {
	return v*(r.Max-r.Min) + r.Min
}

// MinMaxScaler rescales a fixed set of columns into [0,1] using the bounds
// observed during Fit.
type MinMaxScaler struct {
	columns []string
	ranges  []ColumnRange
}

// NewMinMaxScaler creates a scaler for the named columns.
func NewMinMaxScaler(columns ...string) *MinMaxScaler {
	return &MinMaxScaler{columns: columns}
}

// Fit records each column's minimum and maximum over the whole table.
func (s *MinMaxScaler) Fit(t *Table) error {
	if t.Rows == 0 {
		return &SchemaError{Reason: "cannot fit scaler on an empty table"}
	}
	ranges := make([]ColumnRange, 0, len(s.columns))
	for _, name := range s.columns {
		col, ok := t.Column(name)
		if !ok || col.Kind == KindText {
			return &SchemaError{Column: name, Reason: "missing numeric column"}
		}
		ranges = append(ranges, ColumnRange{
			Name: name,
			Min:  floats.Min(col.Values),
			Max:  floats.Max(col.Values),
		})
	}
	s.ranges = ranges
	return nil
}

// Transform returns a copy of t with the fitted columns scaled.
func (s *MinMaxScaler) Transform(t *Table) (*Table, error) {
	if s.ranges == nil {
		return nil, fmt.Errorf("min-max scaler used before Fit")
	}
	out := t.clone()
	for _, r := range s.ranges {
		col, ok := out.Column(r.Name)
		if !ok {
			return nil, &SchemaError{Column: r.Name, Reason: "missing numeric column"}
		}
		for i, v := range col.Values {
			col.Values[i] = r.Scale(v)
		}
		col.Kind = KindFloat
	}
	return out, nil
}

// FitTransform fits on t and returns the scaled copy.
func (s *MinMaxScaler) FitTransform(t *Table) (*Table, error) {
	if err := s.Fit(t); err != nil {
		return nil, err
	}
	return s.Transform(t)
}

// Ranges returns the fitted bounds in column order.
func (s *MinMaxScaler) Ranges() []ColumnRange {
	return append([]ColumnRange(nil), s.ranges...)
}

// Range returns the fitted bounds for one column.
func (s *MinMaxScaler) Range(name string) (ColumnRange, bool) {
	for _, r := range s.ranges {
		if r.Name == name {
			return r, true
		}
	}
	return ColumnRange{}, false
}

// Inverse maps a scaled value of the named column back to original units.
func (s *MinMaxScaler) Inverse(name string, v float64) (float64, error) {
	r, ok := s.Range(name)
	if !ok {
		return 0, fmt.Errorf("column %s was not fitted", name)
	}
	return r.Inverse(v), nil
}
