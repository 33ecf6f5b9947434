package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/ingest"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/stats"
	"github.com/lox/crashwatch/internal/store"
)

func printSummary(w io.Writer, ds *models.Dataset, set *categories.Set) error {
	first, last := ds.YearRange()
	fmt.Fprintf(w, "%s records from %s (%d–%d)\n\n", figures.Count(ds.Len()), ds.Source, first, last)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Year\t")
	for _, s := range models.Seasons {
		fmt.Fprintf(tw, "%s\t", s)
	}
	fmt.Fprint(tw, "Total\t\n")
	for _, row := range stats.Seasonal(ds.Records).Rows {
		fmt.Fprintf(tw, "%d\t", row.Year)
		for _, s := range models.Seasons {
			fmt.Fprintf(tw, "%s\t", figures.Count(row.Count(s)))
		}
		fmt.Fprintf(tw, "%s\t\n", figures.Count(row.Total()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fallbacks := ingest.FallbackCounts(ds.Records)
	for _, dim := range []categories.Dimension{categories.Cause, categories.Weather, categories.Trafficway} {
		fmt.Fprintf(w, "%s classified as Other: %s\n", dim, figures.Count(fallbacks[dim]))
	}

	fmt.Fprintln(w)
	agg := stats.Injuries(ds.Records, set.Cause)
	for _, sev := range models.Severities {
		fmt.Fprintf(w, "%s: %s\n", figures.DefaultPalette.SeverityLabel(sev), figures.Count(agg.SeverityTotal(sev)))
	}
	fmt.Fprintf(w, "Injuries with a known cause: %s\n", figures.Count(agg.Total()))
	return nil
}

func printLoadRuns(w io.Writer, runs []store.LoadRun) error {
	fmt.Fprintf(w, "\nRecent loads\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "Started\tStatus\tRows\tChecksum\tSource\n")
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.ErrorMessage.String
		}
		checksum := r.Checksum.String
		if len(checksum) > 12 {
			checksum = checksum[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Format(time.DateTime), status, figures.Count(int(r.RowsLoaded.Int64)), checksum, r.Source)
	}
	return tw.Flush()
}

// exportTables writes the dataset-wide derived tables into dir and returns
// the paths written.
func exportTables(dir string, ds *models.Dataset, set *categories.Set) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	cf := stats.CrossTab(ds.Records, set)
	agg := stats.Injuries(ds.Records, set.Cause)

	tables := []struct {
		name string
		rows [][]string
	}{
		{"seasonal.csv", seasonalCSV(stats.Seasonal(ds.Records))},
		{"crossflow_triples.csv", triplesCSV(cf)},
		{"crossflow_edges.csv", edgesCSV(cf)},
		{"injuries.csv", injuriesCSV(agg)},
	}

	var written []string
	for _, t := range tables {
		path := filepath.Join(dir, t.name)
		if err := writeCSV(path, t.rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func seasonalCSV(t stats.SeasonalTable) [][]string {
	header := []string{"year"}
	for _, s := range models.Seasons {
		header = append(header, string(s))
	}
	rows := [][]string{append(header, "total")}
	for _, r := range t.Rows {
		row := []string{strconv.Itoa(r.Year)}
		for _, s := range models.Seasons {
			row = append(row, strconv.Itoa(r.Count(s)))
		}
		rows = append(rows, append(row, strconv.Itoa(r.Total())))
	}
	return rows
}

func triplesCSV(cf stats.Crossflow) [][]string {
	rows := [][]string{{"cause", "weather", "trafficway", "count"}}
	for _, t := range cf.Triples {
		rows = append(rows, []string{string(t.Cause), string(t.Weather), string(t.Trafficway), strconv.Itoa(t.Count)})
	}
	return rows
}

func edgesCSV(cf stats.Crossflow) [][]string {
	rows := [][]string{{"from", "to", "count"}}
	for _, e := range cf.Edges {
		rows = append(rows, []string{string(e.From), string(e.To), strconv.Itoa(e.Count)})
	}
	return rows
}

func injuriesCSV(agg stats.InjuryAggregate) [][]string {
	rows := [][]string{{"severity", "cause", "total"}}
	for _, r := range agg.Rows {
		rows = append(rows, []string{string(r.Severity), string(r.Cause), strconv.Itoa(r.Total)})
	}
	return rows
}
