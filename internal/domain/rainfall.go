package domain

// Input column names of the raw rainfall CSV.
const (
	ColProvince = "PROV_T"
	ColYear     = "YEAR"
	ColMonth    = "MONTH"
	ColMinRain  = "MinRain"
	ColMaxRain  = "MaxRain"
	ColAvgRain  = "AvgRain"

	// ColProvinceID is optional; when present it is carried through as an identifier.
	ColProvinceID = "PROV_ID"
)

// Derived column names.
const (
	ColSeason      = "Season"
	ColRainRange   = "RainRange"
	ColQuarter     = "Quarter"
	ColRainySeason = "IsRainySeason"
)

// RequiredColumns lists the input columns every dataset must carry.
var RequiredColumns = []string{ColProvince, ColYear, ColMonth, ColMinRain, ColMaxRain, ColAvgRain}

// ScaledColumns lists the numeric columns that are min-max scaled, in output order.
var ScaledColumns = []string{ColMinRain, ColMaxRain, ColAvgRain, ColRainRange}

// NonFeatureColumns are kept in the encoded table but never offered to a model.
var NonFeatureColumns = []string{ColAvgRain, ColYear, ColMonth, ColProvinceID}

// RawRecord is one (province, year, month) observation as loaded from the CSV.
type RawRecord struct {
	Province string
	Year     int
	Month    int
	MinRain  float64 // millimeters
	MaxRain  float64 // millimeters
	AvgRain  float64 // millimeters

	// Extra holds passthrough column values aligned with Dataset.ExtraColumns.
	Extra []string

	// Line is the 1-based CSV line the record came from, 0 when unknown.
	Line int
}

// Dataset is the full set of raw records plus the names of any passthrough columns.
type Dataset struct {
	Records      []RawRecord
	ExtraColumns []string
}

// Season is a meteorological season label.
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
)

// DerivedRecord extends a RawRecord with calendar and interval features.
type DerivedRecord struct {
	RawRecord
	Season      Season
	RainRange   float64
	Quarter     int
	RainySeason bool
}
