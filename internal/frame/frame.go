// Package frame holds the small set of gota DataFrame helpers shared by the
// preprocessing and prediction paths.
package frame

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/quake-intensity-model/internal/domain"
)

// CompleteRows returns the indexes of rows with no NA element in any column.
func CompleteRows(df dataframe.DataFrame) []int {
	nrows := df.Nrow()
	missing := make([]bool, nrows)
	for _, name := range df.Names() {
		for i, na := range df.Col(name).IsNaN() {
			if na {
				missing[i] = true
			}
		}
	}
	keep := make([]int, 0, nrows)
	for i, m := range missing {
		if !m {
			keep = append(keep, i)
		}
	}
	return keep
}

// Rows returns the subset of df at the given row indexes, renumbered from zero.
// An empty index list yields a zero-row frame with the same columns.
func Rows(df dataframe.DataFrame, idx []int) dataframe.DataFrame {
	return df.Subset(idx)
}

// NonNumericColumns returns the names of columns that cannot be read as floats.
func NonNumericColumns(df dataframe.DataFrame) []string {
	var out []string
	for i, t := range df.Types() {
		if t == series.String {
			out = append(out, df.Names()[i])
		}
	}
	return out
}

// ToMatrix copies the named columns of df into a dense row-major matrix, in
// the order given. Missing or non-numeric columns produce a *domain.SchemaError.
func ToMatrix(df dataframe.DataFrame, columns []string) (*mat.Dense, error) {
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}
	if err := domain.RequireColumns(df.Names(), columns); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, &domain.SchemaError{Reason: domain.ReasonNoFeatures}
	}
	nrows := df.Nrow()
	if nrows == 0 {
		return nil, domain.ErrEmptyDataset
	}

	out := mat.NewDense(nrows, len(columns), nil)
	for j, name := range columns {
		col := df.Col(name)
		if col.Type() == series.String {
			return nil, &domain.SchemaError{Reason: domain.ReasonNonNumeric, Columns: []string{name}}
		}
		out.SetCol(j, col.Float())
	}
	return out, nil
}

// Preview renders up to n leading rows as CSV-style records including the header.
func Preview(df dataframe.DataFrame, n int) [][]string {
	if n > df.Nrow() {
		n = df.Nrow()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return df.Subset(idx).Records()
}
