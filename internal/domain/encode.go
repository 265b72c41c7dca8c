package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// CategoryGroup describes how one categorical column was one-hot encoded.
type CategoryGroup struct {
	Name      string   // source column
	Prefix    string   // indicator column prefix
	Levels    []string // observed levels, sorted
	Reference string   // level with no indicator column
	Columns   []string // indicator columns, one per non-reference level
}

// categorical lists the encoded columns and their indicator prefixes in output order.
var categorical = []struct {
	column string
	prefix string
}{
	{ColProvince, "Province"},
	{ColSeason, "Season"},
	{ColQuarter, "Q"},
}

// Encode replaces the province, season and quarter columns with indicator
// columns, dropping the reference level of each group. The input table is
// not modified.
func Encode(t *Table) (*Table, []CategoryGroup, error) {
	out := t.clone()
	groups := make([]CategoryGroup, 0, len(categorical))

	for _, cat := range categorical {
		col, ok := out.Column(cat.column)
		if !ok {
			return nil, nil, &SchemaError{Column: cat.column, Reason: "missing categorical column"}
		}
		group, indicators := oneHot(col, cat.prefix, out.Rows)
		out.remove(cat.column)
		for _, ind := range indicators {
			out.add(ind)
		}
		groups = append(groups, group)
	}
	return out, groups, nil
}

// oneHot builds the indicator columns for a single categorical column.
func oneHot(col *Column, prefix string, rows int) (CategoryGroup, []*Column) {
	labels := make([]string, rows)
	for i := range rows {
		labels[i] = col.Format(i)
	}

	levels := sortedLevels(labels, col.Kind == KindInt)
	group := CategoryGroup{Name: col.Name, Prefix: prefix, Levels: levels}
	if len(levels) == 0 {
		return group, nil
	}
	group.Reference = levels[0]

	index := make(map[string]int, len(levels)-1)
	indicators := make([]*Column, 0, len(levels)-1)
	for _, level := range levels[1:] {
		name := fmt.Sprintf("%s_%s", prefix, level)
		index[level] = len(indicators)
		indicators = append(indicators, &Column{Name: name, Kind: KindInt, Values: make([]float64, rows)})
		group.Columns = append(group.Columns, name)
	}
	for i, label := range labels {
		if j, ok := index[label]; ok {
			indicators[j].Values[i] = 1
		}
	}
	return group, indicators
}

// sortedLevels returns the distinct labels in sorted order. Numeric labels
// sort by value so quarter 10 would never precede quarter 2.
func sortedLevels(labels []string, numeric bool) []string {
	seen := make(map[string]struct{}, 8)
	levels := make([]string, 0, 8)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		levels = append(levels, l)
	}
	if numeric {
		sort.Slice(levels, func(i, j int) bool {
			a, _ := strconv.ParseFloat(levels[i], 64)
			b, _ := strconv.ParseFloat(levels[j], 64)
			return a < b
		})
	} else {
		sort.Strings(levels)
	}
	return levels
}
