// Package stats derives the dashboard's tables from classified accident
// records. Every function reads its input without modifying it and returns
// freshly allocated results.
package stats

import (
	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/models"
)

// SeasonalRow holds one year's counts, indexed like models.Seasons.
type SeasonalRow struct {
	Year   int
	Counts [4]int
}

func (r SeasonalRow) Count(s models.Season) int {
	i := s.Index()
	if i < 0 {
		return 0
	}
	return r.Counts[i]
}

func (r SeasonalRow) Total() int {
	return r.Counts[0] + r.Counts[1] + r.Counts[2] + r.Counts[3]
}

// SeasonalTable is dense: it has a row for every year from the first to
// the last observed year, even when a year has no records.
type SeasonalTable struct {
	Rows []SeasonalRow
}

func Seasonal(records []models.AccidentRecord) SeasonalTable {
	if len(records) == 0 {
		return SeasonalTable{}
	}
	first := lo.MinBy(records, func(a, b models.AccidentRecord) bool { return a.Year < b.Year }).Year
	last := lo.MaxBy(records, func(a, b models.AccidentRecord) bool { return a.Year > b.Year }).Year

	rows := make([]SeasonalRow, last-first+1)
	for i := range rows {
		rows[i].Year = first + i
	}
	for _, r := range records {
		if i := r.Season.Index(); i >= 0 {
			rows[r.Year-first].Counts[i]++
		}
	}
	return SeasonalTable{Rows: rows}
}

// Row returns the row for year, or an all-zero row outside the table.
func (t SeasonalTable) Row(year int) SeasonalRow {
	if len(t.Rows) == 0 {
		return SeasonalRow{Year: year}
	}
	i := year - t.Rows[0].Year
	if i < 0 || i >= len(t.Rows) {
		return SeasonalRow{Year: year}
	}
	return t.Rows[i]
}

// Years returns the first and last year of the table.
func (t SeasonalTable) Years() (int, int) {
	if len(t.Rows) == 0 {
		return 0, 0
	}
	return t.Rows[0].Year, t.Rows[len(t.Rows)-1].Year
}

// SeasonSeries is one season's counts aligned with SeasonalWindow.Years.
type SeasonSeries struct {
	Season models.Season
	Counts []int
}

// SeasonalWindow is the slice of a SeasonalTable shown by the bar chart.
type SeasonalWindow struct {
	Years  []int
	Series []SeasonSeries
	// YearTotals counts every season, selected or not.
	YearTotals []int
}

// Empty reports whether no season was selected.
func (w SeasonalWindow) Empty() bool {
	return len(w.Series) == 0
}

// Window restricts the table to years start..end inclusive and to the
// selected seasons, kept in fixed season order. Years outside the table
// appear with zero counts. A range with start after end has no years.
func (t SeasonalTable) Window(start, end int, seasons []models.Season) SeasonalWindow {
	var w SeasonalWindow
	// Stop on equality so end == math.MaxInt cannot wrap.
	for y := start; start <= end; y++ {
		w.Years = append(w.Years, y)
		w.YearTotals = append(w.YearTotals, t.Row(y).Total())
		if y == end {
			break
		}
	}
	for _, s := range models.Seasons {
		if !lo.Contains(seasons, s) {
			continue
		}
		counts := lo.Map(w.Years, func(y int, _ int) int {
			return t.Row(y).Count(s)
		})
		w.Series = append(w.Series, SeasonSeries{Season: s, Counts: counts})
	}
	return w
}
