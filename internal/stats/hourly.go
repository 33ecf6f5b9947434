package stats

import (
	"time"

	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/models"
)

// DateRange selects whole calendar days: From at midnight up to the end of
// To. Both are interpreted in their own location.
type DateRange struct {
	From time.Time
	To   time.Time
}

func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: midnight(from), To: midnight(to)}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To.AddDate(0, 0, 1))
}

// InDateRange returns the records whose crash date falls inside r.
func InDateRange(records []models.AccidentRecord, r DateRange) []models.AccidentRecord {
	return lo.Filter(records, func(rec models.AccidentRecord, _ int) bool {
		return r.Contains(rec.CrashDate)
	})
}

// DayProfile is a 24-slot hour histogram for one weekday.
type DayProfile struct {
	Day   string
	Hours [24]int
	Total int
}

// Closed returns the 24 hourly counts followed by hour 0 again, so a polar
// trace draws a closed loop.
func (p DayProfile) Closed() []int {
	out := make([]int, 25)
	copy(out, p.Hours[:])
	out[24] = p.Hours[0]
	return out
}

// Hourly builds one profile per selected weekday that has at least one
// record, in Monday..Sunday order.
func Hourly(records []models.AccidentRecord, days []string) []DayProfile {
	byDay := lo.GroupBy(records, func(r models.AccidentRecord) string {
		return r.DayOfWeek
	})

	var out []DayProfile
	for _, day := range models.Weekdays {
		recs, ok := byDay[day]
		if !ok || !lo.Contains(days, day) {
			continue
		}
		p := DayProfile{Day: day, Total: len(recs)}
		for _, r := range recs {
			if r.Hour >= 0 && r.Hour < 24 {
				p.Hours[r.Hour]++
			}
		}
		out = append(out, p)
	}
	return out
}
