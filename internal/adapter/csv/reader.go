// Package csv loads raw rainfall datasets and writes encoded feature tables.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Opener resolves a location to a reader.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Reader loads a raw rainfall CSV from a location.
// It implements pipeline.Extractor.
type Reader struct {
	opener   Opener
	location string
	logger   *slog.Logger
}

// NewReader creates a Reader for one input location.
func NewReader(opener Opener, location string, logger *slog.Logger) *Reader {
	return &Reader{opener: opener, location: location, logger: logger}
}

// Location returns the input location.
func (r *Reader) Location() string {
	return r.location
}

// Extract reads the whole input into memory and validates its shape.
func (r *Reader) Extract(ctx context.Context) (domain.Dataset, error) {
	rc, err := r.opener.Open(ctx, r.location)
	if err != nil {
		return domain.Dataset{}, err
	}
	defer rc.Close()

	ds, err := ReadDataset(rc)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read %s: %w", r.location, err)
	}
	r.logger.Info("dataset loaded",
		"location", r.location,
		"rows", len(ds.Records),
		"extra_columns", ds.ExtraColumns,
	)
	return ds, nil
}

// Columns is a CSV file loaded column by column as raw text.
type Columns struct {
	Names  []string
	Values map[string][]string
	Rows   int
	// Lines holds the physical line each row starts on.
	Lines []int
}

// Line returns the file line of row i.
func (c Columns) Line(i int) int {
	if i < len(c.Lines) {
		return c.Lines[i]
	}
	return i + 2
}

// ReadColumns loads a CSV with a header row through a dataframe. Every column
// is kept as text so callers decide how to parse each value. A header with no
// rows yields empty columns rather than an error.
func ReadColumns(r io.Reader) (Columns, error) {
	cr := stdcsv.NewReader(r)
	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Columns{}, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	if len(records) == 0 {
		return Columns{}, &domain.SchemaError{Reason: "missing header row"}
	}
	if len(records) == 1 {
		names := records[0]
		values := make(map[string][]string, len(names))
		for _, name := range names {
			values[name] = []string{}
		}
		return Columns{Names: names, Values: values}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return Columns{}, fmt.Errorf("parse csv: %w", df.Err)
	}

	names := df.Names()
	values := make(map[string][]string, len(names))
	for _, name := range names {
		values[name] = df.Col(name).Records()
	}
	return Columns{Names: names, Values: values, Rows: df.Nrow(), Lines: lines[1:]}, nil
}

// ReadDataset parses a raw rainfall CSV. Malformed values surface as schema
// errors with their line number instead of silently becoming NaN.
func ReadDataset(r io.Reader) (domain.Dataset, error) {
	table, err := ReadColumns(r)
	if err != nil {
		return domain.Dataset{}, err
	}

	for _, col := range domain.RequiredColumns {
		if !slices.Contains(table.Names, col) {
			return domain.Dataset{}, &domain.SchemaError{Column: col, Reason: "missing required column"}
		}
	}
	if table.Rows == 0 {
		return domain.Dataset{}, &domain.SchemaError{Reason: "no data rows"}
	}

	var extras []string
	for _, name := range table.Names {
		if !slices.Contains(domain.RequiredColumns, name) {
			extras = append(extras, name)
		}
	}

	records := make([]domain.RawRecord, table.Rows)
	for i := range records {
		rec, err := parseRow(table.Values, extras, i, table.Line(i))
		if err != nil {
			return domain.Dataset{}, err
		}
		records[i] = rec
	}
	return domain.Dataset{Records: records, ExtraColumns: extras}, nil
}

func parseRow(cols map[string][]string, extras []string, i, line int) (domain.RawRecord, error) {
	rec := domain.RawRecord{
		Province: strings.TrimSpace(cols[domain.ColProvince][i]),
		Line:     line,
	}

	var err error
	if rec.Year, err = parseInt(cols, domain.ColYear, i, line); err != nil {
		return rec, err
	}
	if rec.Month, err = parseInt(cols, domain.ColMonth, i, line); err != nil {
		return rec, err
	}
	if rec.MinRain, err = parseFloat(cols, domain.ColMinRain, i, line); err != nil {
		return rec, err
	}
	if rec.MaxRain, err = parseFloat(cols, domain.ColMaxRain, i, line); err != nil {
		return rec, err
	}
	if rec.AvgRain, err = parseFloat(cols, domain.ColAvgRain, i, line); err != nil {
		return rec, err
	}

	if len(extras) > 0 {
		rec.Extra = make([]string, len(extras))
		for j, name := range extras {
			rec.Extra[j] = cols[name][i]
		}
	}

	if err := domain.ValidateRecord(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// parseInt accepts integral values written as floats ("7.0"), which is how
// spreadsheet exports often store YEAR and MONTH.
func parseInt(cols map[string][]string, name string, i, line int) (int, error) {
	s := strings.TrimSpace(cols[name][i])
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, &domain.SchemaError{Line: line, Column: name, Reason: fmt.Sprintf("invalid integer %q", s)}
	}
	return int(f), nil
}

func parseFloat(cols map[string][]string, name string, i, line int) (float64, error) {
	s := strings.TrimSpace(cols[name][i])
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &domain.SchemaError{Line: line, Column: name, Reason: fmt.Sprintf("invalid number %q", s)}
	}
	return f, nil
}
