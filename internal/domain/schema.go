package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Column names of the raw event table.
const (
	ColumnID           = "id"
	ColumnTime         = "time"
	ColumnPlace        = "place"
	ColumnFelt         = "felt"
	ColumnCDI          = "cdi"
	ColumnMMI          = "mmi"
	ColumnSignificance = "significance"

	// ColumnMMIClass is the derived label column.
	ColumnMMIClass = "mmi_class"
)

// DroppedColumns returns the identifier and label-adjacent columns removed
// before training, in table order. Every one of them is required in the input.
func DroppedColumns() []string {
	return []string{
		ColumnID,
		ColumnTime,
		ColumnPlace,
		ColumnFelt,
		ColumnCDI,
		ColumnMMI,
		ColumnSignificance,
	}
}

var (
	// ErrSchema matches every *SchemaError via errors.Is.
	ErrSchema = errors.New("schema error")

	// ErrEmptyDataset is returned when no complete rows remain to train on.
	ErrEmptyDataset = errors.New("dataset has no complete rows")

	// ErrDegenerateSplit is returned when a train/test split would leave one side empty.
	ErrDegenerateSplit = errors.New("dataset too small to split")
)

// Reasons carried by SchemaError.
const (
	ReasonMissingColumn = "missing column"
	ReasonNonNumeric    = "non-numeric column"
	ReasonNoFeatures    = "no feature columns"
)

// SchemaError reports columns that are absent or unusable.
type SchemaError struct {
	Reason  string
	Columns []string
}

func (e *SchemaError) Error() string {
	if len(e.Columns) == 0 {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: %s: %s", e.Reason, strings.Join(e.Columns, ", "))
}

// Is lets errors.Is(err, ErrSchema) match any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// MissingColumns returns the names in required that are not in have, in the
// order of required.
func MissingColumns(have, required []string) []string {
	present := make(map[string]struct{}, len(have))
	for _, name := range have {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// RequireColumns returns a *SchemaError naming every required column absent from have.
func RequireColumns(have, required []string) error {
	missing := MissingColumns(have, required)
	if len(missing) == 0 {
		return nil
	}
	return &SchemaError{Reason: ReasonMissingColumn, Columns: missing}
}
