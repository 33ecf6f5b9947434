package figures

import (
	"strconv"

	"github.com/lox/crashwatch/internal/stats"
)

const (
	radarRows  = 2
	radarCols  = 4
	radarHGap  = 0.08
	radarVGap  = 0.08
	radarColor = "rgba(30,144,255,0.5)"
)

var hourTicks, hourLabels = func() ([]string, []string) {
	ticks := make([]string, 24)
	labels := make([]string, 24)
	for h := range 24 {
		ticks[h] = strconv.Itoa(h)
		labels[h] = strconv.Itoa(h) + "h"
	}
	return ticks, labels
}()

// radarDomain returns the paper coordinates of grid cell i, filled row by
// row from the top left.
func radarDomain(i int) Domain {
	row, col := i/radarCols, i%radarCols
	w := (1 - radarHGap*(radarCols-1)) / radarCols
	h := (1 - radarVGap*(radarRows-1)) / radarRows
	x0 := float64(col) * (w + radarHGap)
	y1 := 1 - float64(row)*(h+radarVGap)
	return Domain{X: [2]float64{x0, x0 + w}, Y: [2]float64{y1 - h, y1}}
}

// Hourly draws one closed radar per day profile on a 2x4 grid. No profiles
// means the selected period holds no accidents, which is drawn as a
// placeholder.
func Hourly(profiles []stats.DayProfile) Figure {
	if len(profiles) == 0 {
		return Placeholder("No accidents in the selected period.")
	}
	if len(profiles) > radarRows*radarCols {
		profiles = profiles[:radarRows*radarCols]
	}

	layout := baseLayout("Accidents per hour by day of week")
	layout.Title.Y = 0.97
	layout.Height = 800
	layout.Margin = &Margin{L: 40, R: 40, T: 120, B: 50}

	theta := append(append([]string{}, hourTicks...), hourTicks[0])
	fig := Figure{Layout: layout}
	for i, p := range profiles {
		d := radarDomain(i)
		fig.Layout.Polars = append(fig.Layout.Polars, Polar{
			Domain: d,
			AngularAxis: AngularAxis{
				Direction: "clockwise",
				Rotation:  90,
				TickMode:  "array",
				TickVals:  hourTicks,
				TickText:  hourLabels,
			},
		})
		fig.Layout.Annotations = append(fig.Layout.Annotations, Annotation{
			Text:      p.Day + "<br>Total: " + Count(p.Total) + " accidents",
			XRef:      "paper",
			YRef:      "paper",
			X:         (d.X[0] + d.X[1]) / 2,
			Y:         d.Y[1],
			XAnchor:   "center",
			YAnchor:   "bottom",
			ShowArrow: false,
			Font:      &Font{Size: 14},
		})

		r := p.Closed()
		text := make([]string, len(r))
		for j, v := range r {
			text[j] = p.Day + "<br>" + theta[j] + "h : " + Count(v) + " accidents"
		}
		hidden := 0.0
		fig.Data = append(fig.Data, &ScatterPolar{
			Type:          "scatterpolar",
			Subplot:       PolarKey(i),
			R:             r,
			Theta:         theta,
			Fill:          "toself",
			FillColor:     radarColor,
			Mode:          "lines+markers",
			Text:          text,
			HoverTemplate: "%{text}<extra></extra>",
			Line:          &Line{Color: "black", Width: 1},
			Marker:        &Marker{Size: 4, Opacity: &hidden},
		})
	}
	return fig
}
