// Package domain models monthly provincial rainfall observations and the
// feature preparation applied to them before model training.
//
// # Data Source
//
// The raw dataset is a CSV with one row per (province, year, month):
//
//	PROV_T,YEAR,MONTH,MinRain,MaxRain,AvgRain
//	Bangkok,2020,7,50.0,120.0,85.0
//
// Rainfall values are millimeters. Any further columns (PROV_ID is common)
// are carried through untouched as text. PROV_ID is an identifier and never
// a feature; other passthrough columns stay in the feature set, and numeric
// sinks skip the ones that do not hold numbers.
//
// # Derived Fields
//
//	Season:        {12,1,2} Winter | {3,4,5} Spring | {6,7,8} Summer | else Fall
//	Quarter:       ((MONTH - 1) / 3) + 1
//	IsRainySeason: 1 for MONTH 5 through 10, else 0
//	RainRange:     MaxRain - MinRain
//
// # Encoding
//
// Province, Season and Quarter are one-hot encoded with prefixes Province_,
// Season_ and Q_. Levels are sorted (strings lexicographically, quarters
// numerically) and the first level is the reference: it gets no indicator
// column and is implied when all of the group's indicators are 0. A group
// with k observed levels therefore yields k-1 columns.
//
// # Scaling
//
// MinRain, MaxRain, AvgRain and RainRange are min-max scaled into [0,1]
// using the observed column minimum and maximum. A column whose minimum
// equals its maximum scales to 0 for every row and is reported as
// degenerate; see [MinMaxScaler].
//
// # Features
//
// The feature set is every encoded column except AvgRain (the prediction
// target) and the identifiers YEAR, MONTH and PROV_ID.
package domain
