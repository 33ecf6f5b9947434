package models

import (
	"time"

	"github.com/lox/crashwatch/internal/categories"
)

type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
)

// Seasons is the fixed column order of every seasonal table.
var Seasons = []Season{Winter, Spring, Summer, Autumn}

// seasonByMonth follows the Northern-Hemisphere meteorological convention.
var seasonByMonth = [...]Season{
	time.January:   Winter,
	time.February:  Winter,
	time.March:     Spring,
	time.April:     Spring,
	time.May:       Spring,
	time.June:      Summer,
	time.July:      Summer,
	time.August:    Summer,
	time.September: Autumn,
	time.October:   Autumn,
	time.November:  Autumn,
	time.December:  Winter,
}

func SeasonForMonth(m time.Month) Season {
	return seasonByMonth[m]
}

func (s Season) String() string {
	return string(s)
}

// Index returns the season's column in Seasons, or -1.
func (s Season) Index() int {
	for i, season := range Seasons {
		if season == s {
			return i
		}
	}
	return -1
}

func ParseSeason(s string) (Season, bool) {
	for _, season := range Seasons {
		if string(season) == s {
			return season, true
		}
	}
	return "", false
}

// Weekdays lists day names in display order (Monday first).
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func IsWeekday(s string) bool {
	for _, d := range Weekdays {
		if d == s {
			return true
		}
	}
	return false
}

// Severity names an injury-severity bucket by its source column.
type Severity string

const (
	SeverityLight   Severity = "injuries_non_incapacitating"
	SeveritySerious Severity = "injuries_incapacitating"
	SeverityFatal   Severity = "injuries_fatal"
)

var Severities = []Severity{SeverityLight, SeveritySerious, SeverityFatal}

// InjuryView selects how the injury aggregate is rendered.
type InjuryView string

const (
	ViewSunburst InjuryView = "sunburst"
	ViewSankey   InjuryView = "sankey"
)

var InjuryViews = []InjuryView{ViewSunburst, ViewSankey}

type InjuryCounts struct {
	NonIncapacitating int
	Incapacitating    int
	Fatal             int
}

func (c InjuryCounts) For(s Severity) int {
	switch s {
	case SeverityLight:
		return c.NonIncapacitating
	case SeveritySerious:
		return c.Incapacitating
	case SeverityFatal:
		return c.Fatal
	}
	return 0
}

type AccidentRecord struct {
	CrashDate time.Time
	Year      int
	DayOfWeek string
	Month     string
	Hour      int
	Season    Season

	Cause      string
	Weather    string
	Trafficway string

	CauseCategory      categories.Category
	WeatherCategory    categories.Category
	TrafficwayCategory categories.Category

	Injuries InjuryCounts
}

// Dataset is the loaded, classified record set. It is shared read-only
// between requests; nothing may append to or modify Records after load.
type Dataset struct {
	Records  []AccidentRecord
	Source   string
	Checksum string
	LoadedAt time.Time
	// Unchanged is set when the load ledger holds the same checksum for
	// Source from an earlier successful load.
	Unchanged bool
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

// YearRange returns the first and last crash year, or zeros when empty.
func (d *Dataset) YearRange() (int, int) {
	if len(d.Records) == 0 {
		return 0, 0
	}
	first, last := d.Records[0].Year, d.Records[0].Year
	for _, r := range d.Records[1:] {
		if r.Year < first {
			first = r.Year
		}
		if r.Year > last {
			last = r.Year
		}
	}
	return first, last
}

// DateRange returns the earliest and latest crash timestamps.
func (d *Dataset) DateRange() (time.Time, time.Time) {
	if len(d.Records) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last := d.Records[0].CrashDate, d.Records[0].CrashDate
	for _, r := range d.Records[1:] {
		if r.CrashDate.Before(first) {
			first = r.CrashDate
		}
		if r.CrashDate.After(last) {
			last = r.CrashDate
		}
	}
	return first, last
}
