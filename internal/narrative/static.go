package narrative

import "github.com/lox/crashwatch/internal/models"

// Text is the heading and body shown under the injury tabs.
type Text struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
	Generated  bool     `json:"generated"`
}

var static = map[models.InjuryView]Text{
	models.ViewSunburst: {
		Title: "The story ends with what matters most: human lives. This sunburst links causes to the severity of injuries.",
		Paragraphs: []string{
			"Every accident is more than a point on a chart. It is a life turned upside down.",
			"The sunburst below connects each injury category, from light injuries to the most serious cases, with the causes that produced them.",
			"Injuries are above all a reflection of human error. Reckless driving, which covers speeding and negligence, dominates, especially among light injuries.",
			"Traffic violations and distraction, often shrugged off, are also frequent causes. Some risky habits have become part of the daily routine.",
			"As severity rises, the profile of causes shifts. Impaired driving weighs far more among serious and fatal injuries.",
			"Behind every cause there is a story: an interrupted trip, a family affected, an error that could have been avoided.",
		},
	},
	models.ViewSankey: {
		Title: "An alternative reading as a Sankey: from injuries back to causes, this time as flows.",
		Paragraphs: []string{
			"This Sankey follows the human impact first and then the factors that caused it.",
			"Injuries, light, serious or fatal, are on the left. Causes on the right show how each contributes.",
			"The widest flow comes from light injuries: most accidents are thankfully not severe, but the picture is more complex.",
			"Towards serious and fatal injuries the causes become more specific, tied to reckless driving, speeding and violations.",
			"Behind every number there is a life changed by a human mistake.",
		},
	},
}

// Static returns the built-in text for view.
func Static(view models.InjuryView) (Text, bool) {
	t, ok := static[view]
	if !ok {
		return Text{}, false
	}
	t.Paragraphs = append([]string(nil), t.Paragraphs...)
	return t, true
}
