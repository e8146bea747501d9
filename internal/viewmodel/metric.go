// Package viewmodel transforms raw backend payloads into presentation-ready
// view-models: KPI tiles into metrics with trend, status, and sparkline, and
// alerts into enriched records with parsed figures, synthesized actions, and
// a business category.
package viewmodel

import (
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"

	"github.com/pulseboard/pulseboard/internal/models"
)

const (
	sparklinePoints   = 7
	sparklineBaseline = 50.0
	sparklineTrend    = 2.0
	sparklineNoise    = 10.0

	metricSubtitle = "vs LM" // versus last month
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Slug derives the stable metric identifier from a tile label: lower-cased,
// runs of whitespace collapsed to a single underscore. It is a pure function
// of the label alone.
func Slug(label string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "_")
}

// BuildMetrics maps KPI tiles to metrics one-to-one, preserving order.
func BuildMetrics(tiles []models.KPITile) []models.Metric {
	metrics := make([]models.Metric, 0, len(tiles))
	for _, tile := range tiles {
		metrics = append(metrics, BuildMetric(tile))
	}
	return metrics
}

// BuildMetric derives the view-model metric for a single tile.
func BuildMetric(tile models.KPITile) models.Metric {
	m := models.Metric{
		ID:         Slug(tile.Label),
		Label:      strings.ToUpper(tile.Label),
		Value:      tile.Value,
		Change:     tile.DeltaPct,
		ChangeType: "percentage",
		Trend:      trendOf(tile.DeltaPct),
		Unit:       tile.Unit,
		Status:     metricStatus(tile),
		Subtitle:   metricSubtitle,
	}
	if len(tile.Spark) > 0 {
		m.Sparkline = tile.Spark
	} else {
		m.Sparkline = syntheticSparkline(m.ID)
	}
	return m
}

func trendOf(delta float64) string {
	switch {
	case delta > 0:
		return models.TrendUp
	case delta < 0:
		return models.TrendDown
	default:
		return models.TrendNeutral
	}
}

// metricStatus applies the ordered label-substring + threshold rules.
// First match wins.
func metricStatus(tile models.KPITile) string {
	label := strings.ToLower(tile.Label)
	switch {
	case strings.Contains(label, "supply") && strings.Contains(label, "risk"):
		return models.StatusCritical
	case strings.Contains(label, "margin") && tile.DeltaPct < -1:
		return models.StatusWarning
	case strings.Contains(label, "revenue") && tile.DeltaPct > 10:
		return models.StatusGood
	case strings.Contains(label, "share") && tile.DeltaPct < -1:
		return models.StatusCritical
	case strings.Contains(label, "nps") && tile.Value > 70:
		return models.StatusGood
	case strings.Contains(label, "cash") && tile.Value < 5:
		return models.StatusWarning
	}
	return ""
}

// syntheticSparkline generates the placeholder series used when a tile ships
// no spark data: upward-biased around a 50 baseline, clamped to [0,100].
// Seeded from the metric ID so the same tile renders the same placeholder on
// every refresh.
func syntheticSparkline(id string) []float64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	points := make([]float64, sparklinePoints)
	for i := range points {
		v := sparklineBaseline + sparklineTrend*float64(i) + (rng.Float64()*2*sparklineNoise - sparklineNoise)
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		points[i] = v
	}
	return points
}
