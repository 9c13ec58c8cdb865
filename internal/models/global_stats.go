package models

// GlobalStats is the subset of the public COVID-19 aggregate the dashboard shows.
type GlobalStats struct {
	Cases             float64 `json:"cases"`
	Deaths            float64 `json:"deaths"`
	Recovered         float64 `json:"recovered"`
	Active            float64 `json:"active"`
	TodayCases        float64 `json:"todayCases"`
	TodayDeaths       float64 `json:"todayDeaths"`
	AffectedCountries float64 `json:"affectedCountries"`
	Updated           int64   `json:"updated,omitempty"` // provider timestamp, unix ms
}

// Valid reports whether every figure is non-negative.
func (g *GlobalStats) Valid() bool {
	for _, v := range []float64{g.Cases, g.Deaths, g.Recovered, g.Active, g.TodayCases, g.TodayDeaths, g.AffectedCountries} {
		if v < 0 {
			return false
		}
	}
	return true
}
