package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrNoRows is returned for a CSV with a header but no data rows.
var ErrNoRows = errors.New("dataset has no rows")

// RawRecord is one CSV row restricted to the required columns, as strings.
type RawRecord struct {
	Row        int
	CrashDate  string
	Cause      string
	Weather    string
	Trafficway string

	NonIncapacitating string
	Incapacitating    string
	Fatal             string
}

// requireDataRow returns ErrNoRows unless data holds a header and at least
// one record after it.
func requireDataRow(data []byte) error {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	for range 2 {
		if _, err := cr.Read(); errors.Is(err, io.EOF) {
			return ErrNoRows
		} else if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
	}
	return nil
}

// ReadFrame reads a CSV into raw records. Every column is read as a string so
// that cells reach classification untouched; type inference would turn
// "NA"-style causes into missing values.
func ReadFrame(r io.Reader) ([]RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if err := requireDataRow(data); err != nil {
		return nil, err
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	if err := CheckColumns(df.Names()); err != nil {
		return nil, err
	}

	col := func(name string) []string {
		return df.Col(name).Records()
	}
	dates := col(ColCrashDate)
	causes := col(ColCause)
	weather := col(ColWeather)
	trafficway := col(ColTrafficway)
	light := col(ColNonIncapacitating)
	serious := col(ColIncapacitating)
	fatal := col(ColFatal)

	n := df.Nrow()
	if n == 0 {
		return nil, ErrNoRows
	}
	out := make([]RawRecord, n)
	for i := range n {
		out[i] = RawRecord{
			Row:               i + 1,
			CrashDate:         dates[i],
			Cause:             causes[i],
			Weather:           weather[i],
			Trafficway:        trafficway[i],
			NonIncapacitating: light[i],
			Incapacitating:    serious[i],
			Fatal:             fatal[i],
		}
	}
	return out, nil
}
