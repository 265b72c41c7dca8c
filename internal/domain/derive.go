package domain

import "fmt"

// SeasonOf maps a calendar month to its season. Months outside 1-12 fall
// through to Fall; callers validate months before deriving.
func SeasonOf(month int) Season {
	switch month {
	case 12, 1, 2:
		return Winter
	case 3, 4, 5:
		return Spring
	case 6, 7, 8:
		return Summer
	default:
		return Fall
	}
}

// QuarterOf returns the calendar quarter (1-4) of a month.
func QuarterOf(month int) int {
	return (month-1)/3 + 1
}

// IsRainySeason reports whether a month falls in the May-October monsoon.
func IsRainySeason(month int) bool {
	return month >= 5 && month <= 10
}

// ValidateRecord checks a raw record's invariants. Average rainfall outside
// [min, max] is tolerated.
func ValidateRecord(rec RawRecord) error {
	if rec.Month < 1 || rec.Month > 12 {
		return &SchemaError{Line: rec.Line, Column: ColMonth, Reason: fmt.Sprintf("month %d out of range 1-12", rec.Month)}
	}
	if rec.Province == "" {
		return &SchemaError{Line: rec.Line, Column: ColProvince, Reason: "empty province"}
	}
	return nil
}

// Derive computes the calendar and interval features of a single record.
func Derive(rec RawRecord) DerivedRecord {
	return DerivedRecord{
		RawRecord:   rec,
		Season:      SeasonOf(rec.Month),
		RainRange:   rec.MaxRain - rec.MinRain,
		Quarter:     QuarterOf(rec.Month),
		RainySeason: IsRainySeason(rec.Month),
	}
}

// DeriveAll validates and derives every record into a new slice. The input is
// not modified.
func DeriveAll(records []RawRecord) ([]DerivedRecord, error) {
	out := make([]DerivedRecord, len(records))
	for i := range records {
		if err := ValidateRecord(records[i]); err != nil {
			return nil, err
		}
		out[i] = Derive(records[i])
	}
	return out, nil
}
