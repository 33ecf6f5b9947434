package figures

import (
	"strconv"

	"github.com/lox/crashwatch/internal/stats"
)

// Seasonal draws one horizontal stacked bar per year, one trace per
// selected season. Zero cells carry no label and no hover text.
func Seasonal(w stats.SeasonalWindow, p Palette) Figure {
	if w.Empty() {
		return Placeholder(SeasonPrompt)
	}

	fig := Figure{Layout: Layout{
		BarMode:      "stack",
		XAxis:        &Axis{Title: "Number of accidents"},
		YAxis:        &Axis{Title: "Year", TickMode: "linear", DTick: 1, Type: "linear", AutoRange: "reversed"},
		Margin:       &Margin{L: 60, R: 20, T: 40, B: 60},
		PlotBGColor:  transparent,
		PaperBGColor: transparent,
	}}

	for _, series := range w.Series {
		text := make([]string, len(series.Counts))
		hover := make([]string, len(series.Counts))
		for i, v := range series.Counts {
			if v <= 0 {
				continue
			}
			text[i] = strconv.Itoa(v)
			hover[i] = series.Season.String() + " – " + Count(v) + " accidents<br>Total in " +
				strconv.Itoa(w.Years[i]) + ": " + Count(w.YearTotals[i])
		}
		fig.Data = append(fig.Data, &Bar{
			Type:             "bar",
			Name:             string(series.Season),
			Orientation:      "h",
			X:                series.Counts,
			Y:                w.Years,
			Marker:           Marker{Color: p.SeasonColor(series.Season)},
			Text:             text,
			TextPosition:     "inside",
			InsideTextAnchor: "middle",
			TextFont:         &Font{Color: "white", Size: 12},
			HoverInfo:        "text",
			HoverText:        hover,
		})
	}
	return fig
}
