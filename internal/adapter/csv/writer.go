package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/rainfall-features/internal/domain"
)

// Creator resolves a location to a writer.
type Creator interface {
	Create(ctx context.Context, location string) (io.WriteCloser, error)
}

// Writer persists the encoded table to a location.
// It implements pipeline.Loader.
type Writer struct {
	creator  Creator
	location string
	logger   *slog.Logger
}

// NewWriter creates a Writer for one output location.
func NewWriter(creator Creator, location string, logger *slog.Logger) *Writer {
	return &Writer{creator: creator, location: location, logger: logger}
}

// Name identifies the loader in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// Location returns the output location.
func (w *Writer) Location() string {
	return w.location
}

// Load writes the encoded table with a header row and no index column.
func (w *Writer) Load(ctx context.Context, res domain.Result) (err error) {
	wc, err := w.creator.Create(ctx, w.location)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, wc.Close())
	}()

	if err := WriteTable(wc, res.Table); err != nil {
		return fmt.Errorf("write %s: %w", w.location, err)
	}
	w.logger.Info("encoded table written",
		"location", w.location,
		"rows", res.Table.Rows,
		"columns", len(res.Table.Columns),
	)
	return nil
}

// WriteTable writes t as CSV.
func WriteTable(out io.Writer, t *domain.Table) error {
	cw := stdcsv.NewWriter(out)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	for i := range t.Rows {
		if err := cw.Write(t.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
