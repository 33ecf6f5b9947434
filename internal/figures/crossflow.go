package figures

import (
	"github.com/samber/lo"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/stats"
)

// Crossflow draws the cause -> weather -> road Sankey. Node order and
// indices come straight from the cross-tabulation.
func Crossflow(cf stats.Crossflow, p Palette) Figure {
	labels := lo.Map(cf.Nodes, func(c categories.Category, _ int) string { return string(c) })
	colors := lo.Map(cf.Nodes, func(c categories.Category, _ int) string { return p.FlowColor(c) })

	link := SankeyLink{
		Source: []int{},
		Target: []int{},
		Value:  []int{},
		Color:  "rgba(0,0,0,0.2)",
	}
	for _, e := range cf.Edges {
		link.Source = append(link.Source, e.Source)
		link.Target = append(link.Target, e.Target)
		link.Value = append(link.Value, e.Count)
	}

	layout := baseLayout("Accident causes by weather and road type")
	layout.Title.Y = 0.97
	layout.Font = &Font{Size: 12}
	layout.Height = 550
	layout.Margin = &Margin{L: 20, R: 20, T: 120, B: 50}
	layout.HoverMode = "x"

	return Figure{
		Data: []Trace{&Sankey{
			Type:        "sankey",
			Arrangement: "snap",
			Node: SankeyNode{
				Pad:       20,
				Thickness: 20,
				Line:      &Line{Color: "black", Width: 0.5},
				Label:     labels,
				Color:     colors,
			},
			Link: link,
		}},
		Layout: layout,
	}
}
