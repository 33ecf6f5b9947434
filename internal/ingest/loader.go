package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/metrics"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/store"
)

// Loader reads a dataset once and returns it fully classified. Any
// structural error aborts the whole load.
type Loader struct {
	enricher *Enricher
	store    *store.Store
}

func NewLoader(set *categories.Set, loc *time.Location) *Loader {
	return &Loader{
		enricher: NewEnricher(set, loc),
	}
}

// SetStore enables the load-run ledger. A nil store disables it.
func (l *Loader) SetStore(st *store.Store) {
	l.store = st
}

// Load fetches location and parses it. Outcomes are logged, counted and,
// when a store is configured, recorded in the ledger.
func (l *Loader) Load(ctx context.Context, location string) (*models.Dataset, error) {
	start := time.Now()

	var run *store.LoadRun
	if l.store != nil {
		var err error
		run, err = l.store.StartLoadRun(location)
		if err != nil {
			log.Printf("ingest: failed to start load run: %v", err)
		}
	}

	ds, size, err := l.load(ctx, location)
	metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("error").Inc()
		if run != nil {
			run.MarkFailed(err)
			l.completeRun(run)
		}
		return nil, err
	}
	metrics.DatasetLoadsTotal.WithLabelValues("ok").Inc()
	metrics.RecordsLoaded.Set(float64(ds.Len()))

	fallbacks := FallbackCounts(ds.Records)
	for dim, n := range fallbacks {
		metrics.ClassificationFallbacks.WithLabelValues(string(dim)).Set(float64(n))
	}

	first, last := ds.YearRange()
	log.Printf("ingest: loaded %d records from %s (%d-%d) in %s, fallbacks cause=%d weather=%d trafficway=%d",
		ds.Len(), location, first, last, time.Since(start).Round(time.Millisecond),
		fallbacks[categories.Cause], fallbacks[categories.Weather], fallbacks[categories.Trafficway])

	if run != nil {
		changed, err := l.store.ChecksumChanged(location, ds.Checksum)
		if err != nil {
			log.Printf("ingest: failed to compare checksum: %v", err)
		} else if !changed {
			ds.Unchanged = true
			log.Printf("ingest: dataset unchanged since last load (sha256 %s)", ds.Checksum[:12])
		}

		run.Success = true
		run.Checksum = sql.NullString{String: ds.Checksum, Valid: true}
		run.SizeBytes = sql.NullInt64{Int64: int64(size), Valid: true}
		run.RowsLoaded = sql.NullInt64{Int64: int64(ds.Len()), Valid: true}
		run.FirstYear = sql.NullInt64{Int64: int64(first), Valid: true}
		run.LastYear = sql.NullInt64{Int64: int64(last), Valid: true}
		run.Fallbacks = lo.MapKeys(fallbacks, func(_ int, dim categories.Dimension) string {
			return string(dim)
		})
		l.completeRun(run)
	}
	return ds, nil
}

func (l *Loader) completeRun(run *store.LoadRun) {
	if err := l.store.CompleteLoadRun(run); err != nil {
		log.Printf("ingest: failed to record load run: %v", err)
	}
}

func (l *Loader) load(ctx context.Context, location string) (*models.Dataset, int, error) {
	src, err := SourceFor(location)
	if err != nil {
		return nil, 0, err
	}
	body, err := src.Fetch(ctx)
	if err != nil {
		return nil, 0, err
	}

	records, err := l.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, len(body), fmt.Errorf("load %s: %w", location, err)
	}

	sum := sha256.Sum256(body)
	return &models.Dataset{
		Records:  records,
		Source:   location,
		Checksum: hex.EncodeToString(sum[:]),
		LoadedAt: time.Now(),
	}, len(body), nil
}

// Parse reads CSV from r and returns classified records in file order.
func (l *Loader) Parse(r io.Reader) ([]models.AccidentRecord, error) {
	raws, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.AccidentRecord, len(raws))
	for i, raw := range raws {
		rec, err := l.enricher.Enrich(raw)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

// FallbackCounts returns how many records fell back to Other per dimension.
func FallbackCounts(records []models.AccidentRecord) map[categories.Dimension]int {
	return map[categories.Dimension]int{
		categories.Cause: lo.CountBy(records, func(r models.AccidentRecord) bool {
			return r.CauseCategory.IsOther()
		}),
		categories.Weather: lo.CountBy(records, func(r models.AccidentRecord) bool {
			return r.WeatherCategory.IsOther()
		}),
		categories.Trafficway: lo.CountBy(records, func(r models.AccidentRecord) bool {
			return r.TrafficwayCategory.IsOther()
		}),
	}
}
