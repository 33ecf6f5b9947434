package ingest

import (
	"errors"
	"strings"
	"time"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/models"
)

// TimestampLayouts are tried in order. The first is the Chicago open-data
// export format.
var TimestampLayouts = []string{
	"01/02/2006 03:04:05 PM",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var errTimestamp = errors.New("unrecognised timestamp")

// ParseTimestamp parses s with the first matching layout. Layouts without a
// zone are interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errTimestamp
}

// Features are the calendar attributes derived from a crash timestamp.
type Features struct {
	Year      int
	DayOfWeek string
	Month     string
	Hour      int
	Season    models.Season
}

func DeriveFeatures(t time.Time) Features {
	return Features{
		Year:      t.Year(),
		DayOfWeek: t.Weekday().String(),
		Month:     t.Month().String(),
		Hour:      t.Hour(),
		Season:    models.SeasonForMonth(t.Month()),
	}
}

// Enricher turns raw rows into classified accident records.
type Enricher struct {
	set *categories.Set
	loc *time.Location
}

func NewEnricher(set *categories.Set, loc *time.Location) *Enricher {
	if loc == nil {
		loc = time.Local
	}
	return &Enricher{set: set, loc: loc}
}

// Enrich parses, derives and classifies one row. Any structural problem is
// returned as a *RowError.
func (e *Enricher) Enrich(raw RawRecord) (models.AccidentRecord, error) {
	ts, err := ParseTimestamp(raw.CrashDate, e.loc)
	if err != nil {
		return models.AccidentRecord{}, &RowError{Row: raw.Row, Column: ColCrashDate, Value: raw.CrashDate, Err: err}
	}

	var counts [3]int
	cells := [3]struct{ col, val string }{
		{ColNonIncapacitating, raw.NonIncapacitating},
		{ColIncapacitating, raw.Incapacitating},
		{ColFatal, raw.Fatal},
	}
	for i, c := range cells {
		n, err := ParseCount(c.val)
		if err != nil {
			return models.AccidentRecord{}, &RowError{Row: raw.Row, Column: c.col, Value: c.val, Err: err}
		}
		counts[i] = n
	}

	f := DeriveFeatures(ts)
	return models.AccidentRecord{
		CrashDate: ts,
		Year:      f.Year,
		DayOfWeek: f.DayOfWeek,
		Month:     f.Month,
		Hour:      f.Hour,
		Season:    f.Season,

		Cause:      raw.Cause,
		Weather:    raw.Weather,
		Trafficway: raw.Trafficway,

		CauseCategory:      e.set.Cause.Classify(raw.Cause),
		WeatherCategory:    e.set.Weather.Classify(raw.Weather),
		TrafficwayCategory: e.set.Trafficway.Classify(raw.Trafficway),

		Injuries: models.InjuryCounts{
			NonIncapacitating: counts[0],
			Incapacitating:    counts[1],
			Fatal:             counts[2],
		},
	}, nil
}
