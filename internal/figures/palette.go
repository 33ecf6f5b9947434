package figures

import (
	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/models"
)

// Palette holds every color and label the figures use. It is also served
// to the page so the controls match the charts.
type Palette struct {
	Seasons map[models.Season]string `json:"seasons"`
	// Flow colors the cause/weather/road Sankey nodes.
	Flow map[categories.Category]string `json:"flow"`
	// Injury colors the injury sunburst and Sankey, keyed by node label.
	Injury map[string]string `json:"injury"`

	FlowDefault           string `json:"flow_default"`
	InjurySunburstDefault string `json:"injury_sunburst_default"`
	InjurySankeyDefault   string `json:"injury_sankey_default"`

	SeverityLabels map[models.Severity]string `json:"severity_labels"`
	DayLabels      map[string]string          `json:"day_labels"`
}

// DefaultPalette matches the shipped category tables.
var DefaultPalette = Palette{
	Seasons: map[models.Season]string{
		models.Winter: "#636EFA",
		models.Spring: "#77DD77",
		models.Summer: "#FFD700",
		models.Autumn: "#FFB347",
	},
	Flow: map[categories.Category]string{
		// causes
		"Traffic violations":                 "#e74c3c",
		"Reckless driving":                   "#d35400",
		"Inexperienced driving":              "#c0392b",
		"Driver impairment":                  "#e67e22",
		"Driver distraction":                 "#f39c12",
		"Environmental and external factors": "#7f8c8d",

		// weather
		"Clear weather":   "#3498db",
		"Rain / Snow":     "#2980b9",
		"Cloudy or fog":   "#95a5a6",
		"Extreme weather": "#34495e",

		// roads
		"Standard roads":                  "#2ecc71",
		"Intersections and divided roads": "#27ae60",
		"Special or unknown roads":        "#16a085",
	},
	Injury: map[string]string{
		"Traffic violations":                 "#9ea9ff",
		"Reckless driving":                   "#7b9fff",
		"Inexperienced driving":              "#7b9fff",
		"Driver impairment":                  "#7b9fff",
		"Driver distraction":                 "#7b9fff",
		"Environmental and external factors": "#9ea9ff",
		"Weather conditions":                 "#9ea9ff",
		string(categories.Other):             "#d3d3d3",
		"Light injuries":                     "#FF6F61",
		"Serious injuries":                   "#D14B3A",
		"Fatal injuries":                     "#A42D2A",
		TotalLabel:                           "#bdc3c7",
	},
	FlowDefault:           "#bdc3c7",
	InjurySunburstDefault: "#bdc3c7",
	InjurySankeyDefault:   "#cccccc",
	SeverityLabels: map[models.Severity]string{
		models.SeverityLight:   "Light injuries",
		models.SeveritySerious: "Serious injuries",
		models.SeverityFatal:   "Fatal injuries",
	},
	DayLabels: map[string]string{
		"Monday":    "Mon",
		"Tuesday":   "Tue",
		"Wednesday": "Wed",
		"Thursday":  "Thu",
		"Friday":    "Fri",
		"Saturday":  "Sat",
		"Sunday":    "Sun",
	},
}

// TotalLabel is the root node of both injury renderings.
const TotalLabel = "Total"

func (p Palette) SeasonColor(s models.Season) string {
	if c, ok := p.Seasons[s]; ok {
		return c
	}
	return p.FlowDefault
}

func (p Palette) FlowColor(c categories.Category) string {
	if col, ok := p.Flow[c]; ok {
		return col
	}
	return p.FlowDefault
}

func (p Palette) InjuryColor(label, fallback string) string {
	if col, ok := p.Injury[label]; ok {
		return col
	}
	return fallback
}

func (p Palette) SeverityLabel(s models.Severity) string {
	if l, ok := p.SeverityLabels[s]; ok {
		return l
	}
	return string(s)
}

func (p Palette) DayLabel(day string) string {
	if l, ok := p.DayLabels[day]; ok {
		return l
	}
	return day
}
