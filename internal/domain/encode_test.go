package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derivedTable(t *testing.T, records ...RawRecord) *Table {
	t.Helper()
	derived, err := DeriveAll(records)
	require.NoError(t, err)
	return NewDerivedTable(derived, nil)
}

func TestEncode_ThreeProvincesYieldTwoColumns(t *testing.T) {
	tbl := derivedTable(t,
		RawRecord{Province: "Chiang Mai", Year: 2020, Month: 1},
		RawRecord{Province: "Bangkok", Year: 2020, Month: 4},
		RawRecord{Province: "Phuket", Year: 2020, Month: 7},
		RawRecord{Province: "Bangkok", Year: 2021, Month: 10},
	)

	encoded, groups, err := Encode(tbl)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	province := groups[0]
	assert.Equal(t, ColProvince, province.Name)
	assert.Equal(t, []string{"Bangkok", "Chiang Mai", "Phuket"}, province.Levels)
	assert.Equal(t, "Bangkok", province.Reference)
	assert.Equal(t, []string{"Province_Chiang Mai", "Province_Phuket"}, province.Columns)

	season := groups[1]
	assert.Equal(t, "Fall", season.Reference)
	assert.Equal(t, []string{"Season_Spring", "Season_Summer", "Season_Winter"}, season.Columns)

	quarter := groups[2]
	assert.Equal(t, "1", quarter.Reference)
	assert.Equal(t, []string{"Q_2", "Q_3", "Q_4"}, quarter.Columns)

	for _, name := range []string{ColProvince, ColSeason, ColQuarter} {
		_, ok := encoded.Column(name)
		assert.False(t, ok, "categorical column %s should be dropped", name)
	}
}

func TestEncode_IndicatorCountAndRowSums(t *testing.T) {
	tbl := derivedTable(t,
		RawRecord{Province: "A", Month: 1},
		RawRecord{Province: "B", Month: 2},
		RawRecord{Province: "C", Month: 5},
		RawRecord{Province: "D", Month: 8},
		RawRecord{Province: "A", Month: 11},
	)

	encoded, groups, err := Encode(tbl)
	require.NoError(t, err)

	for _, g := range groups {
		assert.Len(t, g.Columns, len(g.Levels)-1, g.Name)

		for i := range encoded.Rows {
			sum := 0.0
			for _, name := range g.Columns {
				col, ok := encoded.Column(name)
				require.True(t, ok)
				sum += col.Values[i]
			}
			assert.LessOrEqual(t, sum, 1.0, "group %s row %d", g.Name, i)
		}
	}

	// Reference rows have no active indicator.
	provB, ok := encoded.Column("Province_B")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 1, 0, 0, 0}, provB.Values)
}

func TestEncode_SingleLevelProducesNoColumns(t *testing.T) {
	tbl := derivedTable(t,
		RawRecord{Province: "Only", Month: 7},
		RawRecord{Province: "Only", Month: 8},
	)

	_, groups, err := Encode(tbl)
	require.NoError(t, err)
	assert.Empty(t, groups[0].Columns)
	assert.Equal(t, "Only", groups[0].Reference)
}

func TestEncode_ColumnOrder(t *testing.T) {
	tbl := derivedTable(t,
		RawRecord{Province: "A", Year: 2020, Month: 1},
		RawRecord{Province: "B", Year: 2020, Month: 6},
	)

	encoded, _, err := Encode(tbl)
	require.NoError(t, err)

	want := []string{
		ColYear, ColMonth, ColMinRain, ColMaxRain, ColAvgRain,
		ColRainRange, ColRainySeason,
		"Province_B", "Season_Winter", "Q_2",
	}
	if diff := cmp.Diff(want, encoded.Names()); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_LeavesInputUntouched(t *testing.T) {
	tbl := derivedTable(t,
		RawRecord{Province: "A", Month: 1},
		RawRecord{Province: "B", Month: 6},
	)
	before := tbl.Names()

	_, _, err := Encode(tbl)
	require.NoError(t, err)
	assert.Equal(t, before, tbl.Names())
}

func TestSortedLevels_Numeric(t *testing.T) {
	got := sortedLevels([]string{"10", "2", "1", "2"}, true)
	assert.Equal(t, []string{"1", "2", "10"}, got)
}
