package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/rainfall-features/internal/domain"
)

// FeatureTransformer implements Transformer with the domain preparation steps.
type FeatureTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a FeatureTransformer.
func NewTransformer(logger *slog.Logger) *FeatureTransformer {
	return &FeatureTransformer{logger: logger}
}

func (t *FeatureTransformer) Transform(ctx context.Context, ds domain.Dataset) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	res, err := domain.Prepare(ds)
	if err != nil {
		return domain.Result{}, err
	}
	for _, g := range res.Groups {
		t.logger.Debug("category encoded",
			"column", g.Name,
			"levels", len(g.Levels),
			"reference", g.Reference,
		)
	}
	return res, nil
}
