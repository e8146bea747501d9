package viewmodel

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pulseboard/pulseboard/internal/models"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"Cash Runway", "cash_runway"},
		{"REVENUE", "revenue"},
		{"Net  Profit   Margin", "net_profit_margin"},
		{"nps", "nps"},
		{"  Market Share  ", "market_share"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := Slug(tt.label)
			if got != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.label, got, tt.expected)
			}
			if strings.ContainsAny(got, " \t\n") {
				t.Errorf("Slug(%q) = %q contains whitespace", tt.label, got)
			}
		})
	}
}

func TestSlugDependsOnLabelOnly(t *testing.T) {
	a := BuildMetric(models.KPITile{Label: "Revenue", Value: 100, DeltaPct: 5})
	b := BuildMetric(models.KPITile{Label: "Revenue", Value: -3, DeltaPct: -42, Unit: "$"})
	if a.ID != b.ID {
		t.Errorf("same label produced different IDs: %q vs %q", a.ID, b.ID)
	}
}

func TestTrendOf(t *testing.T) {
	tests := []struct {
		delta    float64
		expected string
	}{
		{5.0, models.TrendUp},
		{0.0001, models.TrendUp},
		{-3.2, models.TrendDown},
		{-0.0001, models.TrendDown},
		{0, models.TrendNeutral},
	}

	for _, tt := range tests {
		m := BuildMetric(models.KPITile{Label: "Revenue", DeltaPct: tt.delta})
		if m.Trend != tt.expected {
			t.Errorf("trend for delta %v = %q, want %q", tt.delta, m.Trend, tt.expected)
		}
	}
}

func TestMetricStatusRules(t *testing.T) {
	tests := []struct {
		name     string
		tile     models.KPITile
		expected string
	}{
		{"supply risk", models.KPITile{Label: "Supply Risk Index", Value: 3, DeltaPct: 0}, models.StatusCritical},
		{"margin falling", models.KPITile{Label: "Gross Margin", Value: 40, DeltaPct: -2}, models.StatusWarning},
		{"margin stable", models.KPITile{Label: "Gross Margin", Value: 40, DeltaPct: -0.5}, ""},
		{"revenue surging", models.KPITile{Label: "Revenue", Value: 1000, DeltaPct: 12}, models.StatusGood},
		{"revenue flat", models.KPITile{Label: "Revenue", Value: 1000, DeltaPct: 3}, ""},
		{"share eroding", models.KPITile{Label: "Market Share", Value: 22, DeltaPct: -1.5}, models.StatusCritical},
		{"high nps", models.KPITile{Label: "NPS", Value: 75, DeltaPct: 1}, models.StatusGood},
		{"low cash", models.KPITile{Label: "Cash Runway", Value: 4, DeltaPct: -2}, models.StatusWarning},
		{"healthy cash", models.KPITile{Label: "Cash Runway", Value: 9, DeltaPct: 1}, ""},
		{"no rule", models.KPITile{Label: "Orders", Value: 120, DeltaPct: 2}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildMetric(tt.tile)
			if m.Status != tt.expected {
				t.Errorf("status = %q, want %q", m.Status, tt.expected)
			}
		})
	}
}

// Supply-risk rule outranks the margin rule when both substrings match.
func TestMetricStatusFirstMatchWins(t *testing.T) {
	m := BuildMetric(models.KPITile{Label: "Supply Risk Margin", Value: 1, DeltaPct: -5})
	if m.Status != models.StatusCritical {
		t.Errorf("status = %q, want %q", m.Status, models.StatusCritical)
	}
}

func TestBuildMetricCashRunway(t *testing.T) {
	m := BuildMetric(models.KPITile{Label: "Cash Runway", Value: 4, DeltaPct: -2, Unit: "mo"})

	if m.ID != "cash_runway" {
		t.Errorf("ID = %q, want %q", m.ID, "cash_runway")
	}
	if m.Label != "CASH RUNWAY" {
		t.Errorf("Label = %q, want %q", m.Label, "CASH RUNWAY")
	}
	if m.Status != models.StatusWarning {
		t.Errorf("Status = %q, want %q", m.Status, models.StatusWarning)
	}
	if m.Trend != models.TrendDown {
		t.Errorf("Trend = %q, want %q", m.Trend, models.TrendDown)
	}
	if m.Change != -2 {
		t.Errorf("Change = %v, want -2", m.Change)
	}
	if m.ChangeType != "percentage" {
		t.Errorf("ChangeType = %q, want percentage", m.ChangeType)
	}
	if m.Unit != "mo" {
		t.Errorf("Unit = %q, want mo", m.Unit)
	}
	if m.Subtitle != "vs LM" {
		t.Errorf("Subtitle = %q, want %q", m.Subtitle, "vs LM")
	}
}

func TestBuildMetricKeepsProvidedSparkline(t *testing.T) {
	spark := []float64{1, 2, 3}
	m := BuildMetric(models.KPITile{Label: "Revenue", Spark: spark})
	if !reflect.DeepEqual(m.Sparkline, spark) {
		t.Errorf("Sparkline = %v, want %v", m.Sparkline, spark)
	}
}

func TestSyntheticSparkline(t *testing.T) {
	m := BuildMetric(models.KPITile{Label: "Revenue"})

	if len(m.Sparkline) != sparklinePoints {
		t.Fatalf("expected %d points, got %d", sparklinePoints, len(m.Sparkline))
	}
	for i, v := range m.Sparkline {
		if v < 0 || v > 100 {
			t.Errorf("point %d = %v outside [0,100]", i, v)
		}
	}

	// Seeded from the slug: the same tile renders the same placeholder.
	again := BuildMetric(models.KPITile{Label: "Revenue"})
	if !reflect.DeepEqual(m.Sparkline, again.Sparkline) {
		t.Errorf("sparkline not stable across refreshes: %v vs %v", m.Sparkline, again.Sparkline)
	}
}

func TestBuildMetricsIdempotent(t *testing.T) {
	tiles := []models.KPITile{
		{Label: "Revenue", Value: 52000, DeltaPct: 12.5, Unit: "$"},
		{Label: "Cash Runway", Value: 4, DeltaPct: -2, Unit: "mo"},
		{Label: "NPS", Value: 75, DeltaPct: 0},
	}

	first := BuildMetrics(tiles)
	second := BuildMetrics(tiles)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated transform differs:\n%v\n%v", first, second)
	}

	if len(first) != len(tiles) {
		t.Fatalf("expected %d metrics, got %d", len(tiles), len(first))
	}
	for i, tile := range tiles {
		if first[i].ID != Slug(tile.Label) {
			t.Errorf("metric %d out of order: got %q", i, first[i].ID)
		}
	}
}
