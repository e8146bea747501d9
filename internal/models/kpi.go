// Package models defines the wire types delivered by the BI backend and the
// view-model types derived from them for presentation consumers.
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// KPITile is a single named business metric as delivered by GET /dashboard.
type KPITile struct {
	Label    string    `json:"label"`
	Value    float64   `json:"value"`
	DeltaPct float64   `json:"delta_pct"`
	Spark    []float64 `json:"spark,omitempty"`
	Unit     string    `json:"unit,omitempty"`
}

// Validate checks tile field constraints.
func (t *KPITile) Validate() error {
	if t.Label == "" {
		return errors.New("tile label must not be empty")
	}
	return nil
}

// Trend direction of a metric or alert-metric.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// Metric status derived from domain heuristics.
const (
	StatusGood     = "good"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// Metric is the presentation-ready form of a KPITile.
type Metric struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Value      float64   `json:"value"`
	Change     float64   `json:"change"`
	ChangeType string    `json:"changeType"`
	Trend      string    `json:"trend"`
	Sparkline  []float64 `json:"sparkline"`
	Unit       string    `json:"unit,omitempty"`
	Status     string    `json:"status,omitempty"`
	Subtitle   string    `json:"subtitle,omitempty"`
}

// Validate checks metric field constraints.
func (m *Metric) Validate() error {
	if m.ID == "" {
		return errors.New("metric ID must not be empty")
	}
	if m.Label == "" {
		return errors.New("metric label must not be empty")
	}
	switch m.Trend {
	case TrendUp, TrendDown, TrendNeutral:
	default:
		return errors.New("metric trend must be up, down, or neutral")
	}
	switch m.Status {
	case "", StatusGood, StatusWarning, StatusCritical:
	default:
		return errors.New("metric status must be good, warning, or critical")
	}
	return nil
}

// EfficiencyMetric is a per-day efficiency record from GET /efficiency.
type EfficiencyMetric struct {
	Date       string  `json:"date"`
	Baseline   float64 `json:"baseline"`
	Actual     float64 `json:"actual"`
	Efficiency float64 `json:"efficiency"`
}

// WSMessage is the envelope delivered on the push channels. Bodies are
// treated opaquely as refresh triggers; only the alerts channel payload is
// decoded further.
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
