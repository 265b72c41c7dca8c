package main

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/rainfall-features/internal/adapter/csv"
	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	_, err := generate(&a, options{from: 2020, to: 2021, seed: 7})
	require.NoError(t, err)
	_, err = generate(&b, options{from: 2020, to: 2021, seed: 7})
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())

	var c bytes.Buffer
	_, err = generate(&c, options{from: 2020, to: 2021, seed: 8})
	require.NoError(t, err)
	assert.NotEqual(t, a.String(), c.String())
}

func TestGenerate_ReadableAndPreparable(t *testing.T) {
	var buf bytes.Buffer
	rows, err := generate(&buf, options{from: 2020, to: 2020, seed: 42})
	require.NoError(t, err)
	assert.Equal(t, len(provinces)*12, rows)

	ds, err := csv.ReadDataset(&buf)
	require.NoError(t, err)
	require.Len(t, ds.Records, rows)
	assert.Equal(t, []string{domain.ColProvinceID}, ds.ExtraColumns)

	for _, r := range ds.Records {
		assert.GreaterOrEqual(t, r.MinRain, 0.0)
		assert.LessOrEqual(t, r.MinRain, r.AvgRain+0.1, "line %d", r.Line)
		assert.GreaterOrEqual(t, r.MaxRain+0.1, r.AvgRain, "line %d", r.Line)
	}

	res, err := domain.Prepare(ds)
	require.NoError(t, err)
	assert.Empty(t, res.Degenerate)
	assert.Contains(t, res.Features, "Province_Phuket")
}
