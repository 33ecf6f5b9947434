package api

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/stats"
)

const dateLayout = "2006-01-02"

// yearMargin is how far a requested year range may reach past the data.
const yearMargin = 10

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

type seasonalQuery struct {
	Start   string   `query:"start" validate:"omitempty,number"`
	End     string   `query:"end" validate:"omitempty,number"`
	Seasons []string `query:"season" validate:"dive,oneof=Winter Spring Summer Autumn"`
}

type hourlyQuery struct {
	Days []string `query:"day" validate:"dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	From string   `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string   `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

type viewQuery struct {
	View string `query:"view" validate:"omitempty,oneof=sunburst sankey"`
}

// list returns the non-empty values of a repeated parameter. A comma
// separated single value is accepted too.
func list(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		out = append(out, strings.Split(v, ",")...)
	}
	return lo.Compact(lo.Map(out, func(v string, _ int) string { return strings.TrimSpace(v) }))
}

// check validates q and turns the first failure into a readable message.
func (s *Server) check(q any) error {
	err := s.validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	name, _, _ := strings.Cut(fe.Field(), "[")
	return fmt.Errorf("invalid %s: %q", name, fmt.Sprint(fe.Value()))
}

type seasonalSelection struct {
	Start   int
	End     int
	Seasons []models.Season
}

// parseSeasonal reads start, end and season. Missing years default to the
// dataset's year range; missing seasons are an empty selection.
func (s *Server) parseSeasonal(q url.Values) (seasonalSelection, error) {
	raw := seasonalQuery{
		Start:   strings.TrimSpace(q.Get("start")),
		End:     strings.TrimSpace(q.Get("end")),
		Seasons: list(q, "season"),
	}
	if err := s.check(raw); err != nil {
		return seasonalSelection{}, err
	}

	sel := seasonalSelection{}
	sel.Start, sel.End = s.dataset.YearRange()
	var err error
	if raw.Start != "" {
		if sel.Start, err = strconv.Atoi(raw.Start); err != nil {
			return seasonalSelection{}, fmt.Errorf("invalid start: %q", raw.Start)
		}
	}
	if raw.End != "" {
		if sel.End, err = strconv.Atoi(raw.End); err != nil {
			return seasonalSelection{}, fmt.Errorf("invalid end: %q", raw.End)
		}
	}
	if sel.Start > sel.End {
		return seasonalSelection{}, fmt.Errorf("start year %d is after end year %d", sel.Start, sel.End)
	}
	first, last := s.dataset.YearRange()
	if minYear, maxYear := first-yearMargin, last+yearMargin; sel.Start < minYear || sel.End > maxYear {
		return seasonalSelection{}, fmt.Errorf("year range %d-%d is outside %d-%d", sel.Start, sel.End, minYear, maxYear)
	}
	for _, v := range lo.Uniq(raw.Seasons) {
		season, _ := models.ParseSeason(v)
		sel.Seasons = append(sel.Seasons, season)
	}
	return sel, nil
}

type hourlySelection struct {
	Days  []string
	Range stats.DateRange
	// Complete is false when days or either date is missing.
	Complete bool
}

func (s *Server) parseHourly(q url.Values) (hourlySelection, error) {
	raw := hourlyQuery{
		Days: list(q, "day"),
		From: strings.TrimSpace(q.Get("from")),
		To:   strings.TrimSpace(q.Get("to")),
	}
	if err := s.check(raw); err != nil {
		return hourlySelection{}, err
	}

	sel := hourlySelection{Days: lo.Uniq(raw.Days)}
	if raw.From == "" || raw.To == "" {
		return sel, nil
	}
	from, err := time.ParseInLocation(dateLayout, raw.From, s.loc)
	if err != nil {
		return hourlySelection{}, fmt.Errorf("invalid from: %q", raw.From)
	}
	to, err := time.ParseInLocation(dateLayout, raw.To, s.loc)
	if err != nil {
		return hourlySelection{}, fmt.Errorf("invalid to: %q", raw.To)
	}
	if from.After(to) {
		return hourlySelection{}, fmt.Errorf("from date %s is after to date %s", raw.From, raw.To)
	}
	sel.Range = stats.NewDateRange(from, to)
	sel.Complete = len(sel.Days) > 0
	return sel, nil
}

// parseView reads view, defaulting to the sunburst.
func (s *Server) parseView(q url.Values) (models.InjuryView, error) {
	raw := viewQuery{View: strings.TrimSpace(q.Get("view"))}
	if err := s.check(raw); err != nil {
		return "", err
	}
	if raw.View == "" {
		return models.ViewSunburst, nil
	}
	return models.InjuryView(raw.View), nil
}
