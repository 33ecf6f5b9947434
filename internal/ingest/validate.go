package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/models"
)

const (
	ColCrashDate  = "crash_date"
	ColCause      = "prim_contributory_cause"
	ColWeather    = "weather_condition"
	ColTrafficway = "trafficway_type"

	ColNonIncapacitating = string(models.SeverityLight)
	ColIncapacitating    = string(models.SeveritySerious)
	ColFatal             = string(models.SeverityFatal)
)

// RequiredColumns lists every column the loader reads. Other columns are
// ignored.
var RequiredColumns = []string{
	ColCrashDate,
	ColCause,
	ColWeather,
	ColTrafficway,
	ColNonIncapacitating,
	ColIncapacitating,
	ColFatal,
}

// ColumnError reports required columns absent from the header.
type ColumnError struct {
	Missing []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// RowError reports a cell that could not be interpreted. Row is 1-based and
// counts data rows only (the header is not row 1).
type RowError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: column %s: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// CheckColumns returns a *ColumnError naming every required column missing
// from header.
func CheckColumns(header []string) error {
	missing := lo.Without(RequiredColumns, header...)
	if len(missing) > 0 {
		return &ColumnError{Missing: missing}
	}
	return nil
}

// missingCells are the spellings a spreadsheet export uses for an empty
// numeric cell.
var missingCells = []string{"", "NA", "NaN", "nan", "<nil>"}

// ParseCount parses an injury count. Missing cells count as zero. Whole
// floats such as "2.0" are accepted; negatives and fractions are not.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if lo.Contains(missingCells, s) {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count")
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if f < 0 || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole non-negative count")
	}
	return int(f), nil
}
