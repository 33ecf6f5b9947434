// Package api serves the dashboard page and the JSON endpoints behind its
// charts. Every derived view is computed from the in-memory dataset, which
// is never modified after load.
package api

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/imagegen"
	"github.com/lox/crashwatch/internal/metrics"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/narrative"
	"github.com/lox/crashwatch/internal/stats"
	"github.com/lox/crashwatch/internal/store"
)

// Config wires a Server. Store and Narrative are optional.
type Config struct {
	Dataset    *models.Dataset
	Categories *categories.Set
	Store      *store.Store
	Narrative  *narrative.Service
	Palette    figures.Palette
	Port       string
	Location   *time.Location
}

type Server struct {
	dataset   *models.Dataset
	set       *categories.Set
	store     *store.Store
	narrative *narrative.Service
	palette   figures.Palette
	port      string
	loc       *time.Location

	tmpl       *template.Template
	validate   *validator.Validate
	imageCache *imagegen.Cache

	// Views that do not depend on request parameters.
	seasonal  stats.SeasonalTable
	crossflow stats.Crossflow
	injuries  stats.InjuryAggregate
}

func NewServer(cfg Config) *Server {
	s := &Server{
		dataset:    cfg.Dataset,
		set:        cfg.Categories,
		store:      cfg.Store,
		narrative:  cfg.Narrative,
		palette:    cfg.Palette,
		port:       cfg.Port,
		loc:        cfg.Location,
		tmpl:       newTemplates(),
		validate:   newValidator(),
		imageCache: imagegen.NewCache(10*time.Minute, 256),
	}
	if s.palette.Seasons == nil {
		s.palette = figures.DefaultPalette
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.narrative == nil {
		s.narrative = narrative.NewService(nil)
	}

	records := s.dataset.Records
	s.seasonal = observe("seasonal_table", func() stats.SeasonalTable { return stats.Seasonal(records) })
	s.crossflow = observe("crossflow", func() stats.Crossflow { return stats.CrossTab(records, s.set) })
	s.injuries = observe("injuries", func() stats.InjuryAggregate { return stats.Injuries(records, s.set.Cause) })
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/images/seasonal.png", s.handleSeasonalImage)
	mux.HandleFunc("/api/figures/seasonal", s.handleSeasonalFigure)
	mux.HandleFunc("/api/figures/hourly", s.handleHourlyFigure)
	mux.HandleFunc("/api/figures/crossflow", s.handleCrossflowFigure)
	mux.HandleFunc("/api/figures/injuries", s.handleInjuryFigure)
	mux.HandleFunc("/api/title", s.handleTitle)
	mux.HandleFunc("/api/tables/seasonal", s.handleSeasonalTable)
	mux.HandleFunc("/api/tables/crossflow", s.handleCrossflowTable)
	mux.HandleFunc("/api/tables/injuries", s.handleInjuryTable)
	mux.HandleFunc("/api/narrative", s.handleNarrative)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/lookups", s.handleLookups)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s (%d records)", s.port, s.dataset.Len())
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// observe runs fn under the view's latency histogram.
func observe[T any](view string, fn func() T) T {
	timer := prometheus.NewTimer(metrics.ViewLatency.WithLabelValues(view))
	defer timer.ObserveDuration()
	metrics.ViewComputations.WithLabelValues(view).Inc()
	return fn()
}
