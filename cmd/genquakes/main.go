// Command genquakes writes a synthetic earthquake event table with the raw
// column layout the trainer expects. Intensity values follow magnitude and
// depth, and a share of cells is left blank so the cleaning step has work to do.
//
// Usage:
//
//	go run ./cmd/genquakes -rows 800 -seed 7 -missing-rate 0.05 -out data/earthquakes.csv
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
	"time"

	"github.com/couchcryptid/quake-intensity-model/internal/domain"
)

var baseDate = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// header is the raw layout: the seven dropped columns followed by the features.
var header = append(domain.DroppedColumns(), "magnitude", "depth", "latitude", "longitude", "tsunami")

// optional columns may be left blank; id and mmi are always present.
var optional = map[string]bool{
	domain.ColumnPlace: true,
	domain.ColumnFelt:  true,
	domain.ColumnCDI:   true,
	"depth":            true,
}

var regions = []string{
	"Central Alaska", "Southern California", "Honshu, Japan", "Central Chile",
	"Sumatra, Indonesia", "Northern Turkey", "Fiji region", "Kermadec Islands",
}

func main() {
	rows := flag.Int("rows", 500, "number of events to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	missingRate := flag.Float64("missing-rate", 0.05, "share of optional cells left blank")
	out := flag.String("out", "", "output CSV path (stdout when empty)")
	flag.Parse()

	if *rows < 1 || *missingRate < 0 || *missingRate >= 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*rows, *seed, *missingRate, *out); err != nil {
		log.Fatal(err)
	}
}

func run(rows int, seed uint64, missingRate float64, out string) error {
	records := generate(rows, seed, missingRate)

	if out == "" {
		return writeCSV(os.Stdout, records)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out) //nolint:gosec // output path from flag
	if err != nil {
		return err
	}
	if err := writeCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %d events to %s", rows, out)
	return nil
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// generate returns the header plus rows events, deterministic for a seed.
func generate(rows int, seed uint64, missingRate float64) [][]string {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	records := make([][]string, 0, rows+1)
	records = append(records, header)
	for i := range rows {
		magnitude := 2.5 + rng.ExpFloat64()*1.1
		magnitude = math.Min(magnitude, 9.1)
		depth := 2 + rng.ExpFloat64()*40
		mmi := intensity(magnitude, depth, rng.NormFloat64()*0.4)
		felt := int(math.Pow(10, magnitude-2.5) * rng.Float64())
		cdi := math.Max(0, mmi-0.5+rng.NormFloat64()*0.5)
		sig := int(math.Round(magnitude*100*magnitude/6.5)) + felt/100
		tsunami := 0
		if magnitude > 7 && depth < 70 && rng.Float64() < 0.6 {
			tsunami = 1
		}
		region := regions[rng.IntN(len(regions))]

		values := map[string]string{
			domain.ColumnID:           fmt.Sprintf("sq%06d", i),
			domain.ColumnTime:         baseDate.Add(time.Duration(i) * 97 * time.Minute).Format(time.RFC3339),
			domain.ColumnPlace:        fmt.Sprintf("%d km %s of %s", 3+rng.IntN(150), compass(rng), region),
			domain.ColumnFelt:         strconv.Itoa(felt),
			domain.ColumnCDI:          formatFloat(cdi, 1),
			domain.ColumnMMI:          formatFloat(mmi, 3),
			domain.ColumnSignificance: strconv.Itoa(sig),
			"magnitude":               formatFloat(magnitude, 1),
			"depth":                   formatFloat(depth, 3),
			"latitude":                formatFloat(rng.Float64()*140-70, 4),
			"longitude":               formatFloat(rng.Float64()*360-180, 4),
			"tsunami":                 strconv.Itoa(tsunami),
		}

		record := make([]string, len(header))
		for j, col := range header {
			if optional[col] && rng.Float64() < missingRate {
				continue
			}
			record[j] = values[col]
		}
		records = append(records, record)
	}
	return records
}

// intensity is a rough attenuation curve: stronger for larger, shallower events.
func intensity(magnitude, depth, noise float64) float64 {
	mmi := 1.6*magnitude - 1.2*math.Log10(depth+10) - 1.3 + noise
	return math.Min(math.Max(mmi, 1), 10)
}

func compass(rng *rand.Rand) string {
	points := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	return points[rng.IntN(len(points))]
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
