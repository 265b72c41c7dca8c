// Command genmock writes a deterministic synthetic raw rainfall CSV in the
// layout the prepare stage reads: one row per province per month, with a
// PROV_ID passthrough column. The same seed always yields the same file.
//
// Usage:
//
//	go run ./cmd/genmock -out data/raw-rain-data.csv -from 2015 -to 2022 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
)

type province struct {
	id     int
	name   string
	factor float64 // scales the national monthly profile
}

var provinces = []province{
	{id: 10, name: "Bangkok", factor: 1.00},
	{id: 50, name: "Chiang Mai", factor: 0.85},
	{id: 30, name: "Nakhon Ratchasima", factor: 0.70},
	{id: 40, name: "Khon Kaen", factor: 0.75},
	{id: 20, name: "Chon Buri", factor: 0.95},
	{id: 83, name: "Phuket", factor: 1.45},
	{id: 90, name: "Songkhla", factor: 1.30},
	{id: 84, name: "Surat Thani", factor: 1.25},
}

// monthlyAvg is a rough national average monthly rainfall in mm, January first.
var monthlyAvg = [12]float64{10, 20, 45, 80, 190, 160, 165, 190, 250, 180, 60, 15}

type options struct {
	from, to int
	seed     uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/raw-rain-data.csv", "output path for the raw rainfall CSV")
	from := flag.Int("from", 2015, "first year to generate")
	to := flag.Int("to", 2022, "last year to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *to < *from {
		flag.Usage()
		return fmt.Errorf("-to (%d) is before -from (%d)", *to, *from)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := generate(f, options{from: *from, to: *to, seed: *seed})
	if err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d rows to %s", rows, *out)
	return nil
}

// generate writes the CSV and returns the number of data rows.
func generate(w io.Writer, opts options) (int, error) {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"PROV_T", "PROV_ID", "YEAR", "MONTH", "MinRain", "MaxRain", "AvgRain"}); err != nil {
		return 0, err
	}

	rows := 0
	for year := opts.from; year <= opts.to; year++ {
		for _, p := range provinces {
			for month := 1; month <= 12; month++ {
				avg := monthlyAvg[month-1] * p.factor * (0.75 + 0.5*rng.Float64())
				spread := avg * (0.3 + 0.6*rng.Float64())
				minRain := math.Max(0, avg-spread*rng.Float64())
				maxRain := avg + spread*rng.Float64()

				if err := cw.Write([]string{
					p.name,
					strconv.Itoa(p.id),
					strconv.Itoa(year),
					strconv.Itoa(month),
					formatMM(minRain),
					formatMM(maxRain),
					formatMM(avg),
				}); err != nil {
					return rows, err
				}
				rows++
			}
		}
	}

	cw.Flush()
	return rows, cw.Error()
}

// formatMM rounds to one decimal, the precision rain gauges report.
func formatMM(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}
