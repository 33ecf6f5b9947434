package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/imagegen"
	"github.com/lox/crashwatch/internal/metrics"
)

// handleSeasonalImage renders the seasonal bars as a PNG for link previews.
func (s *Server) handleSeasonalImage(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSeasonal(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("%d-%d-%v", sel.Start, sel.End, sel.Seasons)
	if data, ok := s.imageCache.Get(key); ok {
		s.servePNG(w, data)
		return
	}

	window := s.seasonal.Window(sel.Start, sel.End, sel.Seasons)
	if window.Empty() {
		metrics.PlaceholdersServed.WithLabelValues("seasonal_image").Inc()
	}
	var renderErr error
	data := observe("seasonal_image", func() []byte {
		b, err := imagegen.RenderSeasonal(window, figures.SeasonalTitle(sel.Start, sel.End), s.palette)
		renderErr = err
		return b
	})
	if err := renderErr; err != nil {
		log.Printf("api: render seasonal image: %v", err)
		http.Error(w, "failed to render image", http.StatusInternalServerError)
		return
	}
	s.imageCache.Set(key, data)
	s.servePNG(w, data)
}

func (s *Server) servePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}
