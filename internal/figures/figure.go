// Package figures turns derived tables into Plotly figure documents. The
// JSON produced here is passed to Plotly.react unchanged by the dashboard.
package figures

import (
	"encoding/json"
	"strconv"
)

// Figure is a Plotly figure: traces plus layout. Placeholder is set when
// the figure stands in for an empty selection.
type Figure struct {
	Data        []Trace `json:"data"`
	Layout      Layout  `json:"layout"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// Trace is one of the Plotly trace types below.
type Trace interface {
	traceType() string
}

type Font struct {
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
}

type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width"`
}

type Marker struct {
	Color   string   `json:"color,omitempty"`
	Colors  []string `json:"colors,omitempty"`
	Line    *Line    `json:"line,omitempty"`
	Size    int      `json:"size,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
}

type Bar struct {
	Type             string   `json:"type"`
	Name             string   `json:"name"`
	Orientation      string   `json:"orientation"`
	X                []int    `json:"x"`
	Y                []int    `json:"y"`
	Marker           Marker   `json:"marker"`
	Text             []string `json:"text"`
	TextPosition     string   `json:"textposition"`
	InsideTextAnchor string   `json:"insidetextanchor"`
	TextFont         *Font    `json:"textfont,omitempty"`
	HoverInfo        string   `json:"hoverinfo"`
	HoverText        []string `json:"hovertext"`
}

func (*Bar) traceType() string { return "bar" }

type ScatterPolar struct {
	Type          string   `json:"type"`
	Subplot       string   `json:"subplot"`
	R             []int    `json:"r"`
	Theta         []string `json:"theta"`
	Fill          string   `json:"fill"`
	FillColor     string   `json:"fillcolor"`
	Mode          string   `json:"mode"`
	Text          []string `json:"text"`
	HoverTemplate string   `json:"hovertemplate"`
	Line          *Line    `json:"line,omitempty"`
	Marker        *Marker  `json:"marker,omitempty"`
}

func (*ScatterPolar) traceType() string { return "scatterpolar" }

type SankeyNode struct {
	Pad       int      `json:"pad"`
	Thickness int      `json:"thickness"`
	Line      *Line    `json:"line,omitempty"`
	Label     []string `json:"label"`
	Color     []string `json:"color"`
}

type SankeyLink struct {
	Source []int  `json:"source"`
	Target []int  `json:"target"`
	Value  []int  `json:"value"`
	Color  string `json:"color,omitempty"`
	Line   *Line  `json:"line,omitempty"`
}

type Sankey struct {
	Type        string     `json:"type"`
	Arrangement string     `json:"arrangement,omitempty"`
	Node        SankeyNode `json:"node"`
	Link        SankeyLink `json:"link"`
}

func (*Sankey) traceType() string { return "sankey" }

type Sunburst struct {
	Type         string   `json:"type"`
	IDs          []string `json:"ids"`
	Labels       []string `json:"labels"`
	Parents      []string `json:"parents"`
	Values       []int    `json:"values"`
	BranchValues string   `json:"branchvalues"`
	TextFont     *Font    `json:"textfont,omitempty"`
	Marker       Marker   `json:"marker"`
}

func (*Sunburst) traceType() string { return "sunburst" }

type Title struct {
	Text    string  `json:"text"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	XAnchor string  `json:"xanchor,omitempty"`
	YAnchor string  `json:"yanchor,omitempty"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type Axis struct {
	Title     string `json:"title,omitempty"`
	Visible   *bool  `json:"visible,omitempty"`
	TickMode  string `json:"tickmode,omitempty"`
	DTick     int    `json:"dtick,omitempty"`
	Type      string `json:"type,omitempty"`
	AutoRange string `json:"autorange,omitempty"`
}

type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
	ShowArrow bool    `json:"showarrow"`
	Font      *Font   `json:"font,omitempty"`
}

type Domain struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

type AngularAxis struct {
	Direction string   `json:"direction"`
	Rotation  int      `json:"rotation"`
	TickMode  string   `json:"tickmode"`
	TickVals  []string `json:"tickvals"`
	TickText  []string `json:"ticktext"`
}

type RadialAxis struct {
	ShowTickLabels bool `json:"showticklabels"`
}

type Polar struct {
	Domain      Domain      `json:"domain"`
	AngularAxis AngularAxis `json:"angularaxis"`
	RadialAxis  RadialAxis  `json:"radialaxis"`
}

type Layout struct {
	Title        *Title       `json:"title,omitempty"`
	BarMode      string       `json:"barmode,omitempty"`
	ShowLegend   bool         `json:"showlegend"`
	Height       int          `json:"height,omitempty"`
	Margin       *Margin      `json:"margin,omitempty"`
	XAxis        *Axis        `json:"xaxis,omitempty"`
	YAxis        *Axis        `json:"yaxis,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty"`
	Font         *Font        `json:"font,omitempty"`
	HoverMode    string       `json:"hovermode,omitempty"`
	PlotBGColor  string       `json:"plot_bgcolor,omitempty"`
	PaperBGColor string       `json:"paper_bgcolor,omitempty"`

	// Polars are written as polar, polar2, polar3... as Plotly expects.
	Polars []Polar `json:"-"`
}

// PolarKey names the i-th polar subplot (0-based) the way traces refer to it.
func PolarKey(i int) string {
	if i == 0 {
		return "polar"
	}
	return "polar" + strconv.Itoa(i+1)
}

func (l Layout) MarshalJSON() ([]byte, error) {
	type plain Layout
	b, err := json.Marshal(plain(l))
	if err != nil || len(l.Polars) == 0 {
		return b, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for i, p := range l.Polars {
		pb, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		fields[PolarKey(i)] = pb
	}
	return json.Marshal(fields)
}

const transparent = "rgba(0, 0, 0, 0)"

func baseLayout(title string) Layout {
	return Layout{
		Title: &Title{
			Text:    "<b>" + title + "</b>",
			X:       0.5,
			XAnchor: "center",
			YAnchor: "top",
		},
		PlotBGColor:  transparent,
		PaperBGColor: transparent,
	}
}

func boolPtr(b bool) *bool {
	return &b
}
