package domain

import (
	"slices"
	"time"
)

// Result is the outcome of one preparation pass.
type Result struct {
	Records    []DerivedRecord
	Derived    *Table // derived but not yet encoded or scaled
	Table      *Table // encoded and scaled
	Groups     []CategoryGroup
	Ranges     []ColumnRange
	Degenerate []string
	Features   []string
	PreparedAt time.Time

	// RunID is stamped by the pipeline before loading.
	RunID string
}

// SelectFeatures returns the table's columns that may be used as model
// inputs: everything except the target and identifier columns.
func SelectFeatures(t *Table) []string {
	return FeatureColumns(t.Names())
}

// FeatureColumns filters column names down to model inputs, keeping order.
func FeatureColumns(names []string) []string {
	features := make([]string, 0, len(names))
	for _, name := range names {
		if slices.Contains(NonFeatureColumns, name) {
			continue
		}
		features = append(features, name)
	}
	return features
}

// Prepare runs derivation, encoding, scaling and feature selection over a
// dataset. Each stage produces new values; the dataset is left untouched.
func Prepare(ds Dataset) (Result, error) {
	if len(ds.Records) == 0 {
		return Result{}, &SchemaError{Reason: "dataset has no rows"}
	}

	records, err := DeriveAll(ds.Records)
	if err != nil {
		return Result{}, err
	}
	derived := NewDerivedTable(records, ds.ExtraColumns)

	encoded, groups, err := Encode(derived)
	if err != nil {
		return Result{}, err
	}

	scaler := NewMinMaxScaler(ScaledColumns...)
	scaled, err := scaler.FitTransform(encoded)
	if err != nil {
		return Result{}, err
	}

	ranges := scaler.Ranges()
	var degenerate []string
	for _, r := range ranges {
		if r.Degenerate() {
			degenerate = append(degenerate, r.Name)
		}
	}

	return Result{
		Records:    records,
		Derived:    derived,
		Table:      scaled,
		Groups:     groups,
		Ranges:     ranges,
		Degenerate: degenerate,
		Features:   SelectFeatures(scaled),
		PreparedAt: clock.Now(),
	}, nil
}
