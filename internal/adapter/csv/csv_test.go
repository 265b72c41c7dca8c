package csv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawCSV = `PROV_ID,PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain
10,Bangkok,2020,7,50.0,120.0,85.0
50,Chiang Mai,2020,1,0,10,4
83,Phuket,2021,10,80,300,190
`

type memStore struct {
	files map[string]*bytes.Buffer
}

func newMemStore() *memStore {
	return &memStore{files: map[string]*bytes.Buffer{}}
}

func (m *memStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	b, ok := m.files[location]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b.Bytes())), nil
}

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func (m *memStore) Create(_ context.Context, location string) (io.WriteCloser, error) {
	b := &bytes.Buffer{}
	m.files[location] = b
	return nopWriteCloser{b}, nil
}

func TestReadDataset(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(rawCSV))
	require.NoError(t, err)

	require.Len(t, ds.Records, 3)
	assert.Equal(t, []string{domain.ColProvinceID}, ds.ExtraColumns)

	first := ds.Records[0]
	assert.Equal(t, "Bangkok", first.Province)
	assert.Equal(t, 2020, first.Year)
	assert.Equal(t, 7, first.Month)
	assert.InDelta(t, 50.0, first.MinRain, 0)
	assert.InDelta(t, 120.0, first.MaxRain, 0)
	assert.InDelta(t, 85.0, first.AvgRain, 0)
	assert.Equal(t, []string{"10"}, first.Extra)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Chiang Mai", ds.Records[1].Province)
}

func TestReadDataset_SchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "missing column",
			input:    "PROV_T,YEAR,MONTH,MinRain,MaxRain\nBangkok,2020,7,1,2\n",
			contains: "AvgRain",
		},
		{
			name:     "month out of range",
			input:    "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\nBangkok,2020,7,1,2,1\nBangkok,2020,13,1,2,1\n",
			contains: "line 3",
		},
		{
			name:     "non-numeric rainfall",
			input:    "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\nBangkok,2020,7,abc,2,1\n",
			contains: "MinRain",
		},
		{
			name:     "NaN rainfall",
			input:    "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\nBangkok,2020,7,1,NaN,1\n",
			contains: "MaxRain",
		},
		{
			name:     "fractional month",
			input:    "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\nBangkok,2020,7.5,1,2,1\n",
			contains: "MONTH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSchema)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestReadDataset_IntegralFloats(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader("PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\nBangkok,2020.0,7.0,1,2,1.5\n"))
	require.NoError(t, err)
	assert.Equal(t, 2020, ds.Records[0].Year)
	assert.Equal(t, 7, ds.Records[0].Month)
}

func TestReadDataset_EmptyInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"no bytes", "", "missing header row"},
		{"header only", "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\n", "no data rows"},
		{"header only without newline", "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain", "no data rows"},
		{"header only missing column", "PROV_T,YEAR,MONTH,MinRain,MaxRain\n", "AvgRain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input))
			require.ErrorIs(t, err, domain.ErrSchema)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestReadDataset_PhysicalLineNumbers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "blank line before bad row",
			input:    "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\nBangkok,2020,7,1,2,1\n\nBangkok,2020,13,1,2,1\n",
			contains: "line 4",
		},
		{
			name:     "quoted newline in earlier row",
			input:    "PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\n\"Bang\nkok\",2020,7,1,2,1\nBangkok,2020,x,1,2,1\n",
			contains: "line 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input))
			require.ErrorIs(t, err, domain.ErrSchema)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestReadDataset_RecordLines(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader("PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain\n\nBangkok,2020,7,1,2,1\nPhuket,2020,8,1,2,1\n"))
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, 3, ds.Records[0].Line)
	assert.Equal(t, 4, ds.Records[1].Line)
}

func TestReaderWriter_RoundTrip(t *testing.T) {
	store := newMemStore()
	store.files["in.csv"] = bytes.NewBufferString(rawCSV)

	reader := NewReader(store, "in.csv", slog.Default())
	ds, err := reader.Extract(context.Background())
	require.NoError(t, err)

	res, err := domain.Prepare(ds)
	require.NoError(t, err)

	writer := NewWriter(store, "out.csv", slog.Default())
	require.NoError(t, writer.Load(context.Background(), res))

	out := store.files["out.csv"].String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t,
		"YEAR,MONTH,MinRain,MaxRain,AvgRain,PROV_ID,RainRange,IsRainySeason,Province_Chiang Mai,Province_Phuket,Season_Summer,Season_Winter,Q_3,Q_4",
		lines[0])
	assert.Equal(t, "2020,7,0.625,0.3793103448275862,0.43548387096774194,10,0.2857142857142857,1,0,0,1,0,1,0", lines[1])
}

func TestReader_OpenError(t *testing.T) {
	reader := NewReader(newMemStore(), "missing.csv", slog.Default())
	_, err := reader.Extract(context.Background())
	require.Error(t, err)
}

func TestReadColumns(t *testing.T) {
	cols, err := ReadColumns(strings.NewReader(rawCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"PROV_ID", "PROV_T", "YEAR", "MONTH", "MinRain", "MaxRain", "AvgRain"}, cols.Names)
	assert.Equal(t, 3, cols.Rows)
	assert.Equal(t, []string{"50.0", "0", "80"}, cols.Values["MinRain"])
	assert.Equal(t, []string{"10", "50", "83"}, cols.Values["PROV_ID"])
	assert.Equal(t, []int{2, 3, 4}, cols.Lines)
}

func TestReadColumns_HeaderOnly(t *testing.T) {
	cols, err := ReadColumns(strings.NewReader("YEAR,MONTH,AvgRain\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"YEAR", "MONTH", "AvgRain"}, cols.Names)
	assert.Zero(t, cols.Rows)
	assert.Empty(t, cols.Values["AvgRain"])
}
