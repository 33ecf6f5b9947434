package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/ingest"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/stats"
	"github.com/lox/crashwatch/internal/store"
)

type SeasonalRowView struct {
	Year   int `json:"year"`
	Winter int `json:"winter"`
	Spring int `json:"spring"`
	Summer int `json:"summer"`
	Autumn int `json:"autumn"`
	Total  int `json:"total"`
}

func seasonalRows(t stats.SeasonalTable) []SeasonalRowView {
	return lo.Map(t.Rows, func(r stats.SeasonalRow, _ int) SeasonalRowView {
		return SeasonalRowView{
			Year:   r.Year,
			Winter: r.Count(models.Winter),
			Spring: r.Count(models.Spring),
			Summer: r.Count(models.Summer),
			Autumn: r.Count(models.Autumn),
			Total:  r.Total(),
		}
	})
}

type TripleView struct {
	Cause      string `json:"cause"`
	Weather    string `json:"weather"`
	Trafficway string `json:"trafficway"`
	Count      int    `json:"count"`
}

type EdgeView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Source int    `json:"source"`
	Target int    `json:"target"`
	Count  int    `json:"count"`
}

type CrossflowView struct {
	Nodes   []string     `json:"nodes"`
	Triples []TripleView `json:"triples"`
	Edges   []EdgeView   `json:"edges"`
	Total   int          `json:"total"`
}

func crossflowView(cf stats.Crossflow) CrossflowView {
	return CrossflowView{
		Nodes: lo.Map(cf.Nodes, func(c categories.Category, _ int) string { return string(c) }),
		Triples: lo.Map(cf.Triples, func(t stats.Triple, _ int) TripleView {
			return TripleView{
				Cause:      string(t.Cause),
				Weather:    string(t.Weather),
				Trafficway: string(t.Trafficway),
				Count:      t.Count,
			}
		}),
		Edges: lo.Map(cf.Edges, func(e stats.FlowEdge, _ int) EdgeView {
			return EdgeView{From: string(e.From), To: string(e.To), Source: e.Source, Target: e.Target, Count: e.Count}
		}),
		Total: cf.Total(),
	}
}

type InjuryRowView struct {
	Severity string `json:"severity"`
	Label    string `json:"label"`
	Cause    string `json:"cause"`
	Total    int    `json:"total"`
}

type InjuriesView struct {
	Causes []string        `json:"causes"`
	Rows   []InjuryRowView `json:"rows"`
	Totals map[string]int  `json:"totals"`
	Total  int             `json:"total"`
}

func injuriesView(agg stats.InjuryAggregate, p figures.Palette) InjuriesView {
	return InjuriesView{
		Causes: lo.Map(agg.Causes, func(c categories.Category, _ int) string { return string(c) }),
		Rows: lo.Map(agg.Rows, func(r stats.InjuryRow, _ int) InjuryRowView {
			return InjuryRowView{
				Severity: string(r.Severity),
				Label:    p.SeverityLabel(r.Severity),
				Cause:    string(r.Cause),
				Total:    r.Total,
			}
		}),
		Totals: lo.SliceToMap(models.Severities, func(s models.Severity) (string, int) {
			return string(s), agg.SeverityTotal(s)
		}),
		Total: agg.Total(),
	}
}

type SummaryView struct {
	Records    int            `json:"records"`
	FirstYear  int            `json:"first_year"`
	LastYear   int            `json:"last_year"`
	FirstCrash time.Time      `json:"first_crash"`
	LastCrash  time.Time      `json:"last_crash"`
	Source     string         `json:"source"`
	Checksum   string         `json:"checksum"`
	LoadedAt   time.Time      `json:"loaded_at"`
	Fallbacks  map[string]int `json:"fallbacks"`
}

func summaryView(ds *models.Dataset) SummaryView {
	v := SummaryView{
		Records:  ds.Len(),
		Source:   ds.Source,
		Checksum: ds.Checksum,
		LoadedAt: ds.LoadedAt,
		Fallbacks: lo.MapKeys(ingest.FallbackCounts(ds.Records), func(_ int, d categories.Dimension) string {
			return string(d)
		}),
	}
	v.FirstYear, v.LastYear = ds.YearRange()
	v.FirstCrash, v.LastCrash = ds.DateRange()
	return v
}

// LookupsView feeds the page controls.
type LookupsView struct {
	Palette    figures.Palette     `json:"palette"`
	Categories map[string][]string `json:"categories"`
	Seasons    []models.Season     `json:"seasons"`
	Days       []string            `json:"days"`
	Views      []models.InjuryView `json:"views"`
	FirstYear  int                 `json:"first_year"`
	LastYear   int                 `json:"last_year"`
	FirstDate  string              `json:"first_date"`
	LastDate   string              `json:"last_date"`
}

func lookupsView(ds *models.Dataset, set *categories.Set, p figures.Palette) LookupsView {
	ordered := func(l *categories.Lookup) []string {
		return lo.Map(l.Ordered(), func(c categories.Category, _ int) string { return string(c) })
	}
	v := LookupsView{
		Palette: p,
		Categories: map[string][]string{
			string(categories.Cause):      ordered(set.Cause),
			string(categories.Weather):    ordered(set.Weather),
			string(categories.Trafficway): ordered(set.Trafficway),
		},
		Seasons: models.Seasons,
		Days:    models.Weekdays,
		Views:   models.InjuryViews,
	}
	v.FirstYear, v.LastYear = ds.YearRange()
	first, last := ds.DateRange()
	if !first.IsZero() {
		v.FirstDate = first.Format(dateLayout)
		v.LastDate = last.Format(dateLayout)
	}
	return v
}

type LoadRunView struct {
	StartedAt time.Time      `json:"started_at"`
	Source    string         `json:"source"`
	Success   bool           `json:"success"`
	Checksum  string         `json:"checksum,omitempty"`
	Rows      int64          `json:"rows"`
	Error     string         `json:"error,omitempty"`
	Fallbacks map[string]int `json:"fallbacks,omitempty"`
}

func loadRunView(r store.LoadRun) LoadRunView {
	return LoadRunView{
		StartedAt: r.StartedAt,
		Source:    r.Source,
		Success:   r.Success,
		Checksum:  r.Checksum.String,
		Rows:      r.RowsLoaded.Int64,
		Error:     r.ErrorMessage.String,
		Fallbacks: r.Fallbacks,
	}
}

type LoadDayView struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
}

type HealthStatus struct {
	Status      string        `json:"status"`
	Records     int           `json:"records"`
	LoadedAt    time.Time     `json:"loaded_at"`
	LastLoad    *LoadRunView  `json:"last_load,omitempty"`
	RecentLoads []LoadRunView `json:"recent_loads,omitempty"`
	LoadDays    []LoadDayView `json:"load_days,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
}
