package viewmodel

import (
	"math/rand"
	"time"

	"github.com/pulseboard/pulseboard/internal/models"
)

// ForecastHorizon is the number of forward-looking points in the stub
// forecast merged into every dashboard aggregate.
const ForecastHorizon = 30

// DefaultEfficiency is the placeholder efficiency gauge value until the
// backend serves real efficiency data.
const DefaultEfficiency = 78

// SyntheticForecast produces the placeholder forecast band: one point per
// day starting from now, with stub baseline and confidence bounds.
func SyntheticForecast(now time.Time, points int) *models.ForecastBand {
	band := &models.ForecastBand{
		Dates:    make([]string, points),
		Baseline: make([]float64, points),
		Forecast: make([]float64, points),
		Lower:    make([]float64, points),
		Upper:    make([]float64, points),
	}
	for i := 0; i < points; i++ {
		band.Dates[i] = now.AddDate(0, 0, i).Format(time.RFC3339)
		band.Baseline[i] = 3000 + rand.Float64()*500
		band.Forecast[i] = 2800 + rand.Float64()*500
		band.Lower[i] = 2600 + rand.Float64()*500
		band.Upper[i] = 3000 + rand.Float64()*500
	}
	return band
}

// DefaultInsights returns the fixed set of insight cards shown alongside the
// metrics.
func DefaultInsights() []models.Insight {
	return []models.Insight{
		{
			Icon:        "📈",
			Title:       "Growth Opportunity",
			Description: "Perth sustainable gear market shows 340% search growth",
			Action:      "Launch Campaign",
		},
		{
			Icon:        "⚠️",
			Title:       "Supply Risk",
			Description: "Shipping delays may impact Q3 inventory",
			Action:      "Find Alternatives",
		},
		{
			Icon:        "💡",
			Title:       "Cost Optimization",
			Description: "Bundle strategy could protect margins by 2.3%",
			Action:      "Implement Strategy",
		},
	}
}
