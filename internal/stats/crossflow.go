package stats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/models"
)

// Triple is the number of records sharing one cause, weather and trafficway
// category.
type Triple struct {
	Cause      categories.Category
	Weather    categories.Category
	Trafficway categories.Category
	Count      int
}

// FlowEdge joins two nodes of a flow diagram. Source and Target index
// Crossflow.Nodes.
type FlowEdge struct {
	From   categories.Category
	To     categories.Category
	Source int
	Target int
	Count  int
}

// Crossflow is the cause -> weather -> trafficway cross-tabulation.
//
// Each layer of edges is summed independently from the triples, so the flow
// into a weather node need not equal the flow out of it once a label is
// shared between layers. Nodes hold every category that occurs, each label
// once: a label present in two layers (typically Other) is one node.
type Crossflow struct {
	Triples []Triple
	Nodes   []categories.Category
	Edges   []FlowEdge
}

type tripleKey struct {
	cause, weather, trafficway categories.Category
}

type pairKey struct {
	from, to categories.Category
}

// CrossTab counts records by category triple and derives the two edge
// layers. Records with an Other cause are kept.
func CrossTab(records []models.AccidentRecord, set *categories.Set) Crossflow {
	counts := lo.CountValuesBy(records, func(r models.AccidentRecord) tripleKey {
		return tripleKey{r.CauseCategory, r.WeatherCategory, r.TrafficwayCategory}
	})

	triples := make([]Triple, 0, len(counts))
	for k, n := range counts {
		triples = append(triples, Triple{Cause: k.cause, Weather: k.weather, Trafficway: k.trafficway, Count: n})
	}
	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if ra, rb := set.Cause.Rank(a.Cause), set.Cause.Rank(b.Cause); ra != rb {
			return ra < rb
		}
		if ra, rb := set.Weather.Rank(a.Weather), set.Weather.Rank(b.Weather); ra != rb {
			return ra < rb
		}
		return set.Trafficway.Rank(a.Trafficway) < set.Trafficway.Rank(b.Trafficway)
	})

	cf := Crossflow{Triples: triples}
	index := make(map[categories.Category]int)
	addLayer := func(l *categories.Lookup, present func(Triple) categories.Category) {
		seen := lo.SliceToMap(triples, func(t Triple) (categories.Category, bool) {
			return present(t), true
		})
		for _, c := range l.Ordered() {
			if _, dup := index[c]; dup || !seen[c] {
				continue
			}
			index[c] = len(cf.Nodes)
			cf.Nodes = append(cf.Nodes, c)
		}
		// Categories outside the lookup (a table swapped after load).
		extra := lo.Filter(lo.Keys(seen), func(c categories.Category, _ int) bool {
			_, ok := index[c]
			return !ok
		})
		sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
		for _, c := range extra {
			index[c] = len(cf.Nodes)
			cf.Nodes = append(cf.Nodes, c)
		}
	}
	addLayer(set.Cause, func(t Triple) categories.Category { return t.Cause })
	addLayer(set.Weather, func(t Triple) categories.Category { return t.Weather })
	addLayer(set.Trafficway, func(t Triple) categories.Category { return t.Trafficway })

	layer := func(from, to func(Triple) categories.Category, fromL, toL *categories.Lookup) []FlowEdge {
		sums := make(map[pairKey]int)
		for _, t := range triples {
			sums[pairKey{from(t), to(t)}] += t.Count
		}
		edges := make([]FlowEdge, 0, len(sums))
		for k, n := range sums {
			edges = append(edges, FlowEdge{
				From:   k.from,
				To:     k.to,
				Source: index[k.from],
				Target: index[k.to],
				Count:  n,
			})
		}
		sort.Slice(edges, func(i, j int) bool {
			a, b := edges[i], edges[j]
			if ra, rb := fromL.Rank(a.From), fromL.Rank(b.From); ra != rb {
				return ra < rb
			}
			if a.Source != b.Source {
				return a.Source < b.Source
			}
			if ra, rb := toL.Rank(a.To), toL.Rank(b.To); ra != rb {
				return ra < rb
			}
			return a.Target < b.Target
		})
		return edges
	}
	cf.Edges = append(
		layer(func(t Triple) categories.Category { return t.Cause }, func(t Triple) categories.Category { return t.Weather }, set.Cause, set.Weather),
		layer(func(t Triple) categories.Category { return t.Weather }, func(t Triple) categories.Category { return t.Trafficway }, set.Weather, set.Trafficway)...,
	)
	return cf
}

// Index returns the node index of label.
func (c Crossflow) Index(label categories.Category) (int, bool) {
	i := lo.IndexOf(c.Nodes, label)
	return i, i >= 0
}

// Total is the number of records cross-tabulated.
func (c Crossflow) Total() int {
	return lo.SumBy(c.Triples, func(t Triple) int { return t.Count })
}
