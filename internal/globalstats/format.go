package globalstats

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"covidrisk/internal/models"
)

var printer = message.NewPrinter(language.English)

// FormatNumber abbreviates large figures (1.2B, 3.4M, 5.6K) and groups
// smaller ones with thousands separators.
func FormatNumber(n float64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	}
	return printer.Sprintf("%d", int64(math.Round(n)))
}

// Stat is one labelled figure on the global overview card.
type Stat struct {
	Label string
	Value string
	Class string
}

// Overview lays the stats out in dashboard order.
func Overview(g *models.GlobalStats) []Stat {
	return []Stat{
		{Label: "Total Cases", Value: FormatNumber(g.Cases), Class: "blue"},
		{Label: "Active", Value: FormatNumber(g.Active), Class: "orange"},
		{Label: "Recovered", Value: FormatNumber(g.Recovered), Class: "green"},
		{Label: "Deaths", Value: FormatNumber(g.Deaths), Class: "red"},
		{Label: "Today Cases", Value: "+" + FormatNumber(g.TodayCases), Class: "blue"},
		{Label: "Today Deaths", Value: "+" + FormatNumber(g.TodayDeaths), Class: "red"},
		{Label: "Countries", Value: fmt.Sprintf("%d", int64(g.AffectedCountries)), Class: "purple"},
	}
}
