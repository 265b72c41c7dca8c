package domain

import (
	"strconv"
)

// ColumnKind controls how a column's values are rendered.
type ColumnKind int

const (
	KindFloat ColumnKind = iota
	KindInt
	KindText
)

// Column is one named column of an encoded table. Numeric kinds store their
// values in Values; KindText stores them in Text.
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []float64
	Text   []string
}

// Format renders row i of the column. Floats use the shortest representation
// that round-trips.
func (c *Column) Format(i int) string {
	switch c.Kind {
	case KindText:
		return c.Text[i]
	case KindInt:
		return strconv.FormatInt(int64(c.Values[i]), 10)
	default:
		return strconv.FormatFloat(c.Values[i], 'g', -1, 64)
	}
}

// Table is a columnar, in-memory encoded dataset.
type Table struct {
	Columns []*Column
	Rows    int
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row renders row i as strings in column order.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Format(i)
	}
	return row
}

// EstimatedBytes approximates the in-memory footprint of the table data.
func (t *Table) EstimatedBytes() int64 {
	var n int64
	for _, c := range t.Columns {
		n += int64(len(c.Name))
		n += int64(len(c.Values)) * 8
		for _, s := range c.Text {
			n += int64(len(s)) + 16
		}
	}
	return n
}

func (t *Table) add(c *Column) {
	t.Columns = append(t.Columns, c)
}

func (t *Table) remove(name string) {
	for i, c := range t.Columns {
		if c.Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return
		}
	}
}

// clone copies the column slice so stages never mutate a prior stage's table.
// Column values are copied as well.
func (t *Table) clone() *Table {
	out := &Table{Rows: t.Rows, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		cp := &Column{Name: c.Name, Kind: c.Kind}
		if c.Values != nil {
			cp.Values = append([]float64(nil), c.Values...)
		}
		if c.Text != nil {
			cp.Text = append([]string(nil), c.Text...)
		}
		out.Columns[i] = cp
	}
	return out
}

// NewDerivedTable lays out derived records as a table, keeping the input
// column order and appending the derived columns. Extra columns are kept as
// text; extraColumns gives their names.
func NewDerivedTable(records []DerivedRecord, extraColumns []string) *Table {
	n := len(records)
	province := &Column{Name: ColProvince, Kind: KindText, Text: make([]string, n)}
	year := &Column{Name: ColYear, Kind: KindInt, Values: make([]float64, n)}
	month := &Column{Name: ColMonth, Kind: KindInt, Values: make([]float64, n)}
	minRain := &Column{Name: ColMinRain, Kind: KindFloat, Values: make([]float64, n)}
	maxRain := &Column{Name: ColMaxRain, Kind: KindFloat, Values: make([]float64, n)}
	avgRain := &Column{Name: ColAvgRain, Kind: KindFloat, Values: make([]float64, n)}
	season := &Column{Name: ColSeason, Kind: KindText, Text: make([]string, n)}
	rainRange := &Column{Name: ColRainRange, Kind: KindFloat, Values: make([]float64, n)}
	quarter := &Column{Name: ColQuarter, Kind: KindInt, Values: make([]float64, n)}
	rainy := &Column{Name: ColRainySeason, Kind: KindInt, Values: make([]float64, n)}

	extras := make([]*Column, len(extraColumns))
	for j, name := range extraColumns {
		extras[j] = &Column{Name: name, Kind: KindText, Text: make([]string, n)}
	}

	for i := range records {
		r := &records[i]
		province.Text[i] = r.Province
		year.Values[i] = float64(r.Year)
		month.Values[i] = float64(r.Month)
		minRain.Values[i] = r.MinRain
		maxRain.Values[i] = r.MaxRain
		avgRain.Values[i] = r.AvgRain
		season.Text[i] = string(r.Season)
		rainRange.Values[i] = r.RainRange
		quarter.Values[i] = float64(r.Quarter)
		if r.RainySeason {
			rainy.Values[i] = 1
		}
		for j := range extras {
			if j < len(r.Extra) {
				extras[j].Text[i] = r.Extra[j]
			}
		}
	}

	t := &Table{Rows: n}
	for _, c := range []*Column{province, year, month, minRain, maxRain, avgRain} {
		t.add(c)
	}
	for _, c := range extras {
		t.add(c)
	}
	for _, c := range []*Column{season, rainRange, quarter, rainy} {
		t.add(c)
	}
	return t
}
