package stats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/models"
)

type InjuryRow struct {
	Severity models.Severity
	Cause    categories.Category
	Total    int
}

// InjuryAggregate sums injuries by severity and cause category. Records
// whose cause is Other are excluded before summing.
type InjuryAggregate struct {
	// Causes are the non-Other cause categories that occur, in lookup order,
	// followed by any categories the lookup does not declare, sorted.
	Causes []categories.Category
	// Rows has one entry per severity and cause, severities in fixed order.
	Rows []InjuryRow
}

// ExcludeOtherCause drops records whose cause classified as Other.
func ExcludeOtherCause(records []models.AccidentRecord) []models.AccidentRecord {
	return lo.Filter(records, func(r models.AccidentRecord, _ int) bool {
		return !r.CauseCategory.IsOther()
	})
}

func Injuries(records []models.AccidentRecord, causes *categories.Lookup) InjuryAggregate {
	kept := ExcludeOtherCause(records)
	byCause := lo.GroupBy(kept, func(r models.AccidentRecord) categories.Category {
		return r.CauseCategory
	})

	var agg InjuryAggregate
	for _, c := range causes.Categories() {
		if _, ok := byCause[c]; ok {
			agg.Causes = append(agg.Causes, c)
		}
	}
	extra := lo.Without(lo.Keys(byCause), agg.Causes...)
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	agg.Causes = append(agg.Causes, extra...)
	for _, sev := range models.Severities {
		for _, c := range agg.Causes {
			agg.Rows = append(agg.Rows, InjuryRow{
				Severity: sev,
				Cause:    c,
				Total: lo.SumBy(byCause[c], func(r models.AccidentRecord) int {
					return r.Injuries.For(sev)
				}),
			})
		}
	}
	return agg
}

// BySeverity returns the rows for one severity in cause order.
func (a InjuryAggregate) BySeverity(s models.Severity) []InjuryRow {
	return lo.Filter(a.Rows, func(r InjuryRow, _ int) bool { return r.Severity == s })
}

func (a InjuryAggregate) SeverityTotal(s models.Severity) int {
	return lo.SumBy(a.BySeverity(s), func(r InjuryRow) int { return r.Total })
}

func (a InjuryAggregate) Total() int {
	return lo.SumBy(a.Rows, func(r InjuryRow) int { return r.Total })
}

func (a InjuryAggregate) Empty() bool {
	return len(a.Causes) == 0
}
