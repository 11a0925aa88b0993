// Command validate checks an earthquake CSV before it is handed to the
// trainer: required columns, numeric types, per-column completeness and the
// intensity class balance of the rows that survive cleaning.
//
// Usage:
//
//	go run ./cmd/validate -csv data/earthquakes.csv -test-size 0.25
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/quake-intensity-model/internal/adapter/csvtable"
	"github.com/couchcryptid/quake-intensity-model/internal/domain"
	"github.com/couchcryptid/quake-intensity-model/internal/frame"
	"github.com/couchcryptid/quake-intensity-model/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("csv", "", "path to the earthquake CSV")
	testSize := flag.Float64("test-size", pipeline.DefaultTestSize, "test fraction used to check the split")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	df, err := csvtable.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	if code := run(os.Stdout, df, *testSize); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, df dataframe.DataFrame, testSize float64) int {
	fmt.Fprintln(w, "=== Earthquake Table Validation ===")
	fmt.Fprintf(w, "Rows: %d, columns: %d\n\n", df.Nrow(), df.Ncol())

	phases := []*phase{validateSchema(df)}
	if phases[0].passed() {
		phases = append(phases,
			validateCompleteness(df),
			validateClasses(df, testSize),
		)
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for _, n := range p.notes {
			fmt.Fprintf(w, "  %s\n", n)
		}
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateSchema(df dataframe.DataFrame) *phase {
	p := &phase{name: "Schema"}

	if missing := domain.MissingColumns(df.Names(), domain.DroppedColumns()); len(missing) > 0 {
		p.errorf("missing required columns: %v", missing)
		return p
	}
	if df.Col(domain.ColumnMMI).Type() == series.String {
		p.errorf("column %q is not numeric", domain.ColumnMMI)
	}

	features := slices.DeleteFunc(df.Names(), func(name string) bool {
		return slices.Contains(domain.DroppedColumns(), name)
	})
	if len(features) == 0 {
		p.errorf("no feature columns besides the dropped ones")
		return p
	}
	if bad := frame.NonNumericColumns(df.Select(features)); len(bad) > 0 {
		p.errorf("non-numeric feature columns: %v", bad)
	}
	p.notef("features: %v", features)
	return p
}

func validateCompleteness(df dataframe.DataFrame) *phase {
	p := &phase{name: "Completeness"}

	for _, name := range df.Names() {
		missing := 0
		for _, na := range df.Col(name).IsNaN() {
			if na {
				missing++
			}
		}
		if missing > 0 {
			p.notef("%-14s %5d missing (%.1f%%)", name, missing, 100*float64(missing)/float64(df.Nrow()))
		}
	}

	complete := len(frame.CompleteRows(df))
	p.notef("complete rows: %d of %d", complete, df.Nrow())
	if complete == 0 {
		p.errorf("every row has at least one missing value")
	}
	return p
}

func validateClasses(df dataframe.DataFrame, testSize float64) *phase {
	p := &phase{name: "Intensity classes"}

	cleaned := frame.Rows(df, frame.CompleteRows(df))
	labels := pipeline.LabelMMI(cleaned.Col(domain.ColumnMMI).Float())

	counts := make([]int, domain.NumMMIClasses)
	for _, l := range labels {
		counts[l]++
	}
	for c, n := range counts {
		p.notef("%-10s %5d", domain.MMIClass(c), n)
		if n == 0 {
			p.notef("warning: no rows in class %s", domain.MMIClass(c))
		}
	}

	if _, _, err := pipeline.TrainTestSplit(len(labels), testSize, 1); err != nil {
		p.errorf("split: %v", err)
	}
	return p
}
