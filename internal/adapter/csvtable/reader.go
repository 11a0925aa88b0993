// Package csvtable loads raw earthquake event tables from CSV files.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/quake-intensity-model/internal/domain"
)

// MissingValues are the cell contents treated as missing. Empty cells are
// included so blank numeric and text cells are both dropped by preprocessing.
var MissingValues = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

// textColumns are always loaded as strings even when every value looks numeric.
var textColumns = map[string]series.Type{
	domain.ColumnID:    series.String,
	domain.ColumnTime:  series.String,
	domain.ColumnPlace: series.String,
}

// ReadFile opens path and reads it as a raw event table.
func ReadFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open table: %w", err)
	}
	defer func() { _ = f.Close() }()

	df, err := Read(f)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, err)
	}
	return df, nil
}

// Read parses a header-first CSV. Column types are detected per column; a
// header with no data rows is an empty dataset.
func Read(r io.Reader) (dataframe.DataFrame, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) <= 1 {
		return dataframe.DataFrame{}, fmt.Errorf("parse csv: %w", domain.ErrEmptyDataset)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(MissingValues),
		dataframe.WithTypes(textColumns),
	)
	if err := df.Error(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load table: %w", err)
	}
	return df, nil
}
