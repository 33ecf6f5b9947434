package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/metrics"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/stats"
	"github.com/lox/crashwatch/internal/store"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func (s *Server) writeFigure(w http.ResponseWriter, view string, fig figures.Figure) {
	if fig.Placeholder {
		metrics.PlaceholdersServed.WithLabelValues(view).Inc()
	}
	writeJSON(w, fig)
}

func (s *Server) handleSeasonalFigure(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSeasonal(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fig := observe("seasonal", func() figures.Figure {
		return figures.Seasonal(s.seasonal.Window(sel.Start, sel.End, sel.Seasons), s.palette)
	})
	s.writeFigure(w, "seasonal", fig)
}

func (s *Server) handleHourlyFigure(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseHourly(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !sel.Complete {
		s.writeFigure(w, "hourly", figures.Placeholder(figures.HourlyPrompt))
		return
	}
	fig := observe("hourly", func() figures.Figure {
		inRange := stats.InDateRange(s.dataset.Records, sel.Range)
		return figures.Hourly(stats.Hourly(inRange, sel.Days))
	})
	s.writeFigure(w, "hourly", fig)
}

func (s *Server) handleCrossflowFigure(w http.ResponseWriter, r *http.Request) {
	s.writeFigure(w, "crossflow", figures.Crossflow(s.crossflow, s.palette))
}

func (s *Server) handleInjuryFigure(w http.ResponseWriter, r *http.Request) {
	view, err := s.parseView(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var fig figures.Figure
	switch view {
	case models.ViewSankey:
		fig = figures.InjurySankey(s.injuries, s.palette)
	default:
		fig = figures.InjurySunburst(s.injuries, s.palette)
	}
	s.writeFigure(w, "injuries_"+string(view), fig)
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSeasonal(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"title": figures.SeasonalTitle(sel.Start, sel.End)})
}

func (s *Server) handleSeasonalTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, seasonalRows(s.seasonal))
}

func (s *Server) handleCrossflowTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, crossflowView(s.crossflow))
}

func (s *Server) handleInjuryTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, injuriesView(s.injuries, s.palette))
}

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	view, err := s.parseView(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text, ok := s.narrative.Text(r.Context(), view, s.injuries)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, text)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, summaryView(s.dataset))
}

func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, lookupsView(s.dataset, s.set, s.palette))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:   "ok",
		Records:  s.dataset.Len(),
		LoadedAt: s.dataset.LoadedAt,
	}

	if s.store != nil {
		s.addLoadHealth(&health)
	}

	if health.Records == 0 {
		health.Status = "degraded"
	}
	if len(health.Errors) > 0 {
		health.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("health: write response: %v", err)
	}
}

// healthDays is how far back /health summarises load runs.
const healthDays = 7

func (s *Server) addLoadHealth(health *HealthStatus) {
	if err := s.store.Ping(); err != nil {
		health.Errors = append(health.Errors, "store: "+err.Error())
		return
	}

	if run, err := s.store.LastSuccessfulLoad(); err != nil {
		health.Errors = append(health.Errors, "last load: "+err.Error())
	} else if run != nil {
		v := loadRunView(*run)
		health.LastLoad = &v
	}

	if runs, err := s.store.RecentLoadRuns(5); err != nil {
		health.Errors = append(health.Errors, "recent loads: "+err.Error())
	} else {
		health.RecentLoads = lo.Map(runs, func(r store.LoadRun, _ int) LoadRunView { return loadRunView(r) })
	}

	if days, err := s.store.GetLoadHealth(healthDays); err != nil {
		health.Errors = append(health.Errors, "load health: "+err.Error())
	} else {
		health.LoadDays = lo.Map(days, func(d store.LoadHealth, _ int) LoadDayView {
			return LoadDayView{Date: d.Date, Total: d.TotalRuns, Success: d.SuccessRuns, Failed: d.FailedRuns}
		})
	}
}
