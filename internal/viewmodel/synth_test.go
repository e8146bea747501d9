package viewmodel

import (
	"testing"
	"time"
)

func TestSyntheticForecast(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	band := SyntheticForecast(now, ForecastHorizon)

	if len(band.Dates) != ForecastHorizon {
		t.Fatalf("expected %d dates, got %d", ForecastHorizon, len(band.Dates))
	}
	for _, series := range [][]float64{band.Baseline, band.Forecast, band.Lower, band.Upper} {
		if len(series) != ForecastHorizon {
			t.Errorf("series length = %d, want %d", len(series), ForecastHorizon)
		}
	}

	first, err := time.Parse(time.RFC3339, band.Dates[0])
	if err != nil {
		t.Fatalf("first date not RFC3339: %v", err)
	}
	if !first.Equal(now) {
		t.Errorf("first date = %v, want %v", first, now)
	}
	last, err := time.Parse(time.RFC3339, band.Dates[ForecastHorizon-1])
	if err != nil {
		t.Fatalf("last date not RFC3339: %v", err)
	}
	if !last.Equal(now.AddDate(0, 0, ForecastHorizon-1)) {
		t.Errorf("last date = %v, want %v", last, now.AddDate(0, 0, ForecastHorizon-1))
	}

	for i, v := range band.Baseline {
		if v < 3000 || v > 3500 {
			t.Errorf("baseline[%d] = %v outside stub range", i, v)
		}
	}
}

func TestDefaultInsights(t *testing.T) {
	insights := DefaultInsights()
	if len(insights) != 3 {
		t.Fatalf("expected 3 insight cards, got %d", len(insights))
	}
	for i, in := range insights {
		if in.Title == "" || in.Description == "" || in.Action == "" {
			t.Errorf("insight %d has empty fields: %+v", i, in)
		}
	}
}
