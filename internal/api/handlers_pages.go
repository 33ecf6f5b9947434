package api

import (
	"log"
	"net/http"

	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/models"
)

type IndexData struct {
	Title     string
	Records   int
	FirstYear int
	LastYear  int
	FirstDate string
	LastDate  string
	Seasons   []models.Season
	Days      []string
	Views     []models.InjuryView
	Palette   figures.Palette
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	lookups := lookupsView(s.dataset, s.set, s.palette)
	data := IndexData{
		Title:     figures.SeasonalTitle(lookups.FirstYear, lookups.LastYear),
		Records:   s.dataset.Len(),
		FirstYear: lookups.FirstYear,
		LastYear:  lookups.LastYear,
		FirstDate: lookups.FirstDate,
		LastDate:  lookups.LastDate,
		Seasons:   models.Seasons,
		Days:      models.Weekdays,
		Views:     models.InjuryViews,
		Palette:   s.palette,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("api: render index: %v", err)
	}
}
