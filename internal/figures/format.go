package figures

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count formats n with thousands separators ("25,000").
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// SeasonalTitle is the heading above the seasonal bars. Years are printed
// without grouping.
func SeasonalTitle(start, end int) string {
	if start == end {
		return "Accidents per season (" + strconv.Itoa(start) + ")"
	}
	return "Accidents per season (" + strconv.Itoa(start) + "–" + strconv.Itoa(end) + ")"
}
