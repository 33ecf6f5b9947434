package figures

const (
	SeasonPrompt = "Please select at least one season."
	HourlyPrompt = "Please select at least one day and a date range."
	NoDataText   = "No data to display"
)

// Placeholder is the figure shown when a selection leaves nothing to draw:
// hidden axes, a prompt as title and a centered notice.
func Placeholder(prompt string) Figure {
	return Figure{
		Data: []Trace{},
		Layout: Layout{
			Title:        &Title{Text: prompt},
			XAxis:        &Axis{Visible: boolPtr(false)},
			YAxis:        &Axis{Visible: boolPtr(false)},
			PlotBGColor:  transparent,
			PaperBGColor: transparent,
			Annotations: []Annotation{{
				Text:      NoDataText,
				XRef:      "paper",
				YRef:      "paper",
				X:         0.5,
				Y:         0.5,
				ShowArrow: false,
				Font:      &Font{Size: 20},
			}},
		},
		Placeholder: true,
	}
}
