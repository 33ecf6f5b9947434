package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/models"
)

func testSet(t *testing.T) *categories.Set {
	t.Helper()
	cause, err := categories.NewLookup(categories.Cause, []categories.Group{
		{Name: "Reckless driving", Values: []string{"Speeding"}},
		{Name: "Driver distraction", Values: []string{"Distracted"}},
	})
	require.NoError(t, err)
	weather, err := categories.NewLookup(categories.Weather, []categories.Group{
		{Name: "Clear weather", Values: []string{"CLEAR"}},
		{Name: "Rain / Snow", Values: []string{"RAIN"}},
	})
	require.NoError(t, err)
	road, err := categories.NewLookup(categories.Trafficway, []categories.Group{
		{Name: "Standard roads", Values: []string{"NOT DIVIDED"}},
	})
	require.NoError(t, err)
	return &categories.Set{Cause: cause, Weather: weather, Trafficway: road}
}

type fixture struct {
	at                         time.Time
	cause, weather, trafficway string
	light, serious, fatal      int
}

func build(t *testing.T, set *categories.Set, fixtures ...fixture) []models.AccidentRecord {
	t.Helper()
	out := make([]models.AccidentRecord, len(fixtures))
	for i, s := range fixtures {
		out[i] = models.AccidentRecord{
			CrashDate:          s.at,
			Year:               s.at.Year(),
			DayOfWeek:          s.at.Weekday().String(),
			Month:              s.at.Month().String(),
			Hour:               s.at.Hour(),
			Season:             models.SeasonForMonth(s.at.Month()),
			Cause:              s.cause,
			Weather:            s.weather,
			Trafficway:         s.trafficway,
			CauseCategory:      set.Cause.Classify(s.cause),
			WeatherCategory:    set.Weather.Classify(s.weather),
			TrafficwayCategory: set.Trafficway.Classify(s.trafficway),
			Injuries:           models.InjuryCounts{NonIncapacitating: s.light, Incapacitating: s.serious, Fatal: s.fatal},
		}
	}
	return out
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

// Three spring records in 2020, one with an unmapped cause.
func scenario2020(t *testing.T, set *categories.Set) []models.AccidentRecord {
	t.Helper()
	return build(t, set,
		fixture{at: day(2020, time.March, 10, 8), cause: "Speeding", light: 1},
		fixture{at: day(2020, time.April, 11, 9), cause: "Unknown123", light: 4, fatal: 1},
		fixture{at: day(2020, time.May, 12, 17), cause: "Distracted", serious: 2},
	)
}

func TestSeasonal_Scenario2020(t *testing.T) {
	set := testSet(t)
	table := Seasonal(scenario2020(t, set))

	require.Len(t, table.Rows, 1)
	row := table.Row(2020)
	assert.Equal(t, [4]int{0, 3, 0, 0}, row.Counts)
	assert.Equal(t, 3, row.Count(models.Spring))
	assert.Equal(t, 0, row.Count(models.Winter))
	assert.Equal(t, 3, row.Total())
}

func TestSeasonal_DenseAndRowSums(t *testing.T) {
	set := testSet(t)
	records := build(t, set,
		fixture{at: day(2018, time.January, 3, 1)},
		fixture{at: day(2018, time.December, 24, 22)},
		fixture{at: day(2018, time.July, 4, 12)},
		fixture{at: day(2021, time.October, 31, 23)},
	)
	table := Seasonal(records)

	first, last := table.Years()
	assert.Equal(t, 2018, first)
	assert.Equal(t, 2021, last)
	require.Len(t, table.Rows, 4)

	assert.Equal(t, [4]int{2, 0, 1, 0}, table.Row(2018).Counts)
	assert.Equal(t, [4]int{}, table.Row(2019).Counts, "years without records are present with zeros")
	assert.Equal(t, [4]int{}, table.Row(2020).Counts)
	assert.Equal(t, [4]int{0, 0, 0, 1}, table.Row(2021).Counts)

	perYear := map[int]int{}
	for _, r := range records {
		perYear[r.Year]++
	}
	for _, row := range table.Rows {
		assert.Equal(t, perYear[row.Year], row.Total(), "year %d", row.Year)
	}
}

func TestSeasonal_Empty(t *testing.T) {
	table := Seasonal(nil)
	assert.Empty(t, table.Rows)
	assert.Equal(t, SeasonalRow{Year: 2020}, table.Row(2020))
}

func TestSeasonalWindow(t *testing.T) {
	set := testSet(t)
	records := build(t, set,
		fixture{at: day(2019, time.January, 3, 1)},
		fixture{at: day(2019, time.June, 3, 1)},
		fixture{at: day(2020, time.June, 3, 1)},
	)
	table := Seasonal(records)

	w := table.Window(2018, 2020, []models.Season{models.Summer, models.Winter})
	assert.Equal(t, []int{2018, 2019, 2020}, w.Years)
	require.Len(t, w.Series, 2)
	assert.Equal(t, models.Winter, w.Series[0].Season, "fixed season order regardless of selection order")
	assert.Equal(t, []int{0, 1, 0}, w.Series[0].Counts)
	assert.Equal(t, models.Summer, w.Series[1].Season)
	assert.Equal(t, []int{0, 1, 1}, w.Series[1].Counts)
	assert.Equal(t, []int{0, 2, 1}, w.YearTotals)
	assert.False(t, w.Empty())

	none := table.Window(2018, 2020, nil)
	assert.True(t, none.Empty())
}

func TestSeasonalWindow_RangeEdges(t *testing.T) {
	table := Seasonal(nil)

	done := make(chan SeasonalWindow, 1)
	go func() { done <- table.Window(math.MaxInt-1, math.MaxInt, models.Seasons) }()
	select {
	case w := <-done:
		assert.Equal(t, []int{math.MaxInt - 1, math.MaxInt}, w.Years)
		require.Len(t, w.Series, 4)
		assert.Equal(t, []int{0, 0}, w.Series[0].Counts)
	case <-time.After(3 * time.Second):
		t.Fatal("window ending at the largest int did not return")
	}

	inverted := table.Window(2021, 2020, models.Seasons)
	assert.Empty(t, inverted.Years)
	assert.Empty(t, inverted.YearTotals)
}

func TestHourly(t *testing.T) {
	set := testSet(t)
	// 2024-01-01 is a Monday.
	records := build(t, set,
		fixture{at: day(2024, time.January, 1, 8)},
		fixture{at: day(2024, time.January, 1, 8)},
		fixture{at: day(2024, time.January, 1, 0)},
		fixture{at: day(2024, time.January, 6, 23)},
		fixture{at: day(2024, time.January, 3, 12)},
	)

	profiles := Hourly(records, []string{"Saturday", "Monday", "Sunday"})
	require.Len(t, profiles, 2, "Sunday has no records")
	assert.Equal(t, "Monday", profiles[0].Day)
	assert.Equal(t, 3, profiles[0].Total)
	assert.Equal(t, 2, profiles[0].Hours[8])
	assert.Equal(t, 1, profiles[0].Hours[0])
	assert.Equal(t, "Saturday", profiles[1].Day)
	assert.Equal(t, 1, profiles[1].Hours[23])

	closed := profiles[0].Closed()
	require.Len(t, closed, 25)
	assert.Equal(t, closed[0], closed[24])

	assert.Empty(t, Hourly(records, nil))
}

func TestDateRange_InclusiveEndDay(t *testing.T) {
	set := testSet(t)
	records := build(t, set,
		fixture{at: time.Date(2023, 5, 31, 23, 59, 0, 0, time.UTC)},
		fixture{at: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		fixture{at: time.Date(2023, 6, 30, 23, 59, 59, 0, time.UTC)},
		fixture{at: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
	)
	r := NewDateRange(time.Date(2023, 6, 1, 15, 0, 0, 0, time.UTC), time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))

	got := InDateRange(records, r)
	require.Len(t, got, 2)
	assert.Equal(t, 6, int(got[0].CrashDate.Month()))
	assert.Equal(t, 30, got[1].CrashDate.Day())
	assert.Len(t, records, 4, "input is not modified")
}

func TestCrossTab(t *testing.T) {
	set := testSet(t)
	records := build(t, set,
		fixture{at: day(2020, 1, 1, 0), cause: "Speeding", weather: "CLEAR", trafficway: "NOT DIVIDED"},
		fixture{at: day(2020, 1, 1, 0), cause: "Speeding", weather: "CLEAR", trafficway: "NOT DIVIDED"},
		fixture{at: day(2020, 1, 1, 0), cause: "Speeding", weather: "RAIN", trafficway: "ALLEY"},
		fixture{at: day(2020, 1, 1, 0), cause: "Unknown123", weather: "FOG", trafficway: "NOT DIVIDED"},
		fixture{at: day(2020, 1, 1, 0), cause: "Distracted", weather: "CLEAR", trafficway: "ALLEY"},
	)
	cf := CrossTab(records, set)

	assert.Equal(t, 5, cf.Total())
	require.Len(t, cf.Triples, 4)
	assert.Equal(t, Triple{"Reckless driving", "Clear weather", "Standard roads", 2}, cf.Triples[0])

	assert.Equal(t, []categories.Category{
		"Reckless driving", "Driver distraction", categories.Other,
		"Clear weather", "Rain / Snow",
		"Standard roads",
	}, cf.Nodes, "Other is a single shared node")

	other, ok := cf.Index(categories.Other)
	require.True(t, ok)
	assert.Equal(t, 2, other)
	_, ok = cf.Index("Cloudy or fog")
	assert.False(t, ok)

	edgeCount := func(from, to categories.Category) int {
		for _, e := range cf.Edges {
			if e.From == from && e.To == to {
				assert.Equal(t, cf.Nodes[e.Source], e.From)
				assert.Equal(t, cf.Nodes[e.Target], e.To)
				return e.Count
			}
		}
		return 0
	}
	assert.Equal(t, 2, edgeCount("Reckless driving", "Clear weather"))
	assert.Equal(t, 1, edgeCount("Reckless driving", "Rain / Snow"))
	assert.Equal(t, 1, edgeCount(categories.Other, categories.Other))
	assert.Equal(t, 1, edgeCount("Driver distraction", "Clear weather"))
	assert.Equal(t, 2, edgeCount("Clear weather", "Standard roads"))
	assert.Equal(t, 1, edgeCount("Clear weather", categories.Other))
	assert.Equal(t, 1, edgeCount("Rain / Snow", categories.Other))
	assert.Equal(t, 1, edgeCount(categories.Other, "Standard roads"))
	assert.Len(t, cf.Edges, 8)

	sum := 0
	for _, e := range cf.Edges {
		sum += e.Count
	}
	assert.Equal(t, 2*len(records), sum, "each layer sums to the record count")
}

func TestCrossTab_Deterministic(t *testing.T) {
	set := testSet(t)
	records := build(t, set,
		fixture{at: day(2020, 1, 1, 0), cause: "Distracted", weather: "RAIN", trafficway: "X"},
		fixture{at: day(2020, 1, 1, 0), cause: "Speeding", weather: "CLEAR", trafficway: "NOT DIVIDED"},
		fixture{at: day(2020, 1, 1, 0), cause: "Y", weather: "Z", trafficway: "NOT DIVIDED"},
	)
	first := CrossTab(records, set)
	for range 10 {
		assert.Equal(t, first, CrossTab(records, set))
	}
}

func TestInjuries_ExcludesOther(t *testing.T) {
	set := testSet(t)
	agg := Injuries(scenario2020(t, set), set.Cause)

	assert.Equal(t, []categories.Category{"Reckless driving", "Driver distraction"}, agg.Causes)
	require.Len(t, agg.Rows, 6)
	for _, row := range agg.Rows {
		assert.NotEqual(t, categories.Other, row.Cause)
	}
	assert.Equal(t, 1, agg.SeverityTotal(models.SeverityLight), "the Unknown123 record is excluded")
	assert.Equal(t, 2, agg.SeverityTotal(models.SeveritySerious))
	assert.Equal(t, 0, agg.SeverityTotal(models.SeverityFatal))
	assert.Equal(t, 3, agg.Total())

	light := agg.BySeverity(models.SeverityLight)
	assert.Equal(t, InjuryRow{models.SeverityLight, "Reckless driving", 1}, light[0])
	assert.Equal(t, InjuryRow{models.SeverityLight, "Driver distraction", 0}, light[1])
}

func TestInjuries_IdempotentUnderExclusion(t *testing.T) {
	set := testSet(t)
	records := scenario2020(t, set)

	once := Injuries(records, set.Cause)
	twice := Injuries(ExcludeOtherCause(records), set.Cause)
	assert.Equal(t, once, twice)
	assert.Len(t, records, 3)
}

func TestInjuries_OnlyOther(t *testing.T) {
	set := testSet(t)
	records := build(t, set, fixture{at: day(2020, 1, 1, 0), cause: "nope", fatal: 3})
	agg := Injuries(records, set.Cause)
	assert.True(t, agg.Empty())
	assert.Zero(t, agg.Total())
}

func TestInjuries_CategoriesOutsideLookupSortLast(t *testing.T) {
	set := testSet(t)
	records := scenario2020(t, set)
	records = append(records,
		models.AccidentRecord{CrashDate: day(2020, 5, 1, 0), CauseCategory: "Zebra crossing", Injuries: models.InjuryCounts{Fatal: 1}},
		models.AccidentRecord{CrashDate: day(2020, 5, 2, 0), CauseCategory: "Mystery", Injuries: models.InjuryCounts{NonIncapacitating: 2}},
	)

	agg := Injuries(records, set.Cause)
	assert.Equal(t, []categories.Category{"Reckless driving", "Driver distraction", "Mystery", "Zebra crossing"}, agg.Causes)
	require.Len(t, agg.Rows, 12)
	assert.Equal(t, 1, agg.SeverityTotal(models.SeverityFatal))

	light := agg.BySeverity(models.SeverityLight)
	assert.Equal(t, InjuryRow{models.SeverityLight, "Mystery", 2}, light[2])
	assert.Equal(t, InjuryRow{models.SeverityLight, "Zebra crossing", 0}, light[3])
}
