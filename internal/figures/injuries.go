package figures

import (
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/stats"
)

const injuryTitle = "Injuries and accident causes"

// InjurySunburst draws Total -> severity -> cause with branch values
// "total": each parent equals the sum of its children.
func InjurySunburst(agg stats.InjuryAggregate, p Palette) Figure {
	sb := &Sunburst{
		Type:         "sunburst",
		BranchValues: "total",
		TextFont:     &Font{Size: 17},
	}
	add := func(id, label, parent string, value int) {
		sb.IDs = append(sb.IDs, id)
		sb.Labels = append(sb.Labels, label)
		sb.Parents = append(sb.Parents, parent)
		sb.Values = append(sb.Values, value)
		sb.Marker.Colors = append(sb.Marker.Colors, p.InjuryColor(label, p.InjurySunburstDefault))
	}

	add(TotalLabel, TotalLabel, "", agg.Total())
	for _, sev := range models.Severities {
		label := p.SeverityLabel(sev)
		sevID := TotalLabel + "/" + label
		add(sevID, label, TotalLabel, agg.SeverityTotal(sev))
		for _, row := range agg.BySeverity(sev) {
			add(sevID+"/"+string(row.Cause), string(row.Cause), sevID, row.Total)
		}
	}
	sb.Marker.Line = &Line{Color: "black", Width: 1}

	layout := baseLayout(injuryTitle)
	layout.Height = 650
	return Figure{Data: []Trace{sb}, Layout: layout}
}

// InjurySankey draws the same aggregate as a three-layer flow. Cause nodes
// are shared between severities.
func InjurySankey(agg stats.InjuryAggregate, p Palette) Figure {
	labels := []string{TotalLabel}
	for _, sev := range models.Severities {
		labels = append(labels, p.SeverityLabel(sev))
	}
	causeBase := len(labels)
	for _, c := range agg.Causes {
		labels = append(labels, string(c))
	}
	causeIndex := make(map[string]int, len(agg.Causes))
	for i, c := range agg.Causes {
		causeIndex[string(c)] = causeBase + i
	}

	link := SankeyLink{
		Color: "rgba(169, 169, 169, 0.6)",
		Line:  &Line{Color: "rgba(169, 169, 169, 0.6)", Width: 2},
	}
	for i, sev := range models.Severities {
		sevNode := 1 + i
		link.Source = append(link.Source, 0)
		link.Target = append(link.Target, sevNode)
		link.Value = append(link.Value, agg.SeverityTotal(sev))
		for _, row := range agg.BySeverity(sev) {
			link.Source = append(link.Source, sevNode)
			link.Target = append(link.Target, causeIndex[string(row.Cause)])
			link.Value = append(link.Value, row.Total)
		}
	}

	colors := make([]string, len(labels))
	for i, l := range labels {
		colors[i] = p.InjuryColor(l, p.InjurySankeyDefault)
	}

	layout := baseLayout(injuryTitle)
	layout.Height = 600
	return Figure{
		Data: []Trace{&Sankey{
			Type: "sankey",
			Node: SankeyNode{
				Pad:       15,
				Thickness: 20,
				Label:     labels,
				Color:     colors,
			},
			Link: link,
		}},
		Layout: layout,
	}
}
