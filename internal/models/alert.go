package models

import (
	"errors"
	"time"
)

// Alert severity levels.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert categories used for UI grouping and action routing.
const (
	CategorySales      = "sales"
	CategorySupply     = "supply"
	CategoryCompetitor = "competitor"
	CategoryMarket     = "market"
	CategoryFinance    = "finance"
	CategoryOperations = "operations"
)

// Alert action types and styles.
const (
	ActionMarketing = "marketing"
	ActionLogistics = "logistics"
	ActionAnalysis  = "analysis"
	ActionFinance   = "finance"
	ActionCustom    = "custom"

	StylePrimary = "primary"
	StyleDanger  = "danger"
	StyleWarn    = "warning"
	StyleDefault = "default"
)

// AlertMetric is a structured figure extracted from an alert (impact, change,
// or the associated KPI).
type AlertMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Trend string `json:"trend,omitempty"`
}

// AlertAction is a UI action attached to an alert. Automated actions are
// backend-executable workflows rather than navigational shortcuts.
type AlertAction struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Icon      string `json:"icon,omitempty"`
	Type      string `json:"type"`
	Style     string `json:"style"`
	Automated bool   `json:"automated,omitempty"`
}

// Alert carries both the raw backend fields (ID through SuggestedAction) and
// the enriched view-model fields (Title through Category). The backend may
// already supply structured Metrics, Actions, and Category; enrichment fills
// them from the headline only when absent.
type Alert struct {
	ID              string    `json:"id,omitempty"`
	TS              time.Time `json:"ts"`
	Severity        string    `json:"severity"`
	Headline        string    `json:"headline"`
	Details         string    `json:"details,omitempty"`
	KPI             string    `json:"kpi,omitempty"`
	SuggestedAction string    `json:"suggested_action,omitempty"`

	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Metrics     []AlertMetric `json:"metrics,omitempty"`
	Actions     []AlertAction `json:"actions,omitempty"`
	Category    string        `json:"category,omitempty"`
}

// Validate checks enriched alert field constraints.
func (a *Alert) Validate() error {
	if a.ID == "" {
		return errors.New("alert ID must not be empty")
	}
	if a.Headline == "" {
		return errors.New("alert headline must not be empty")
	}
	switch a.Severity {
	case SeverityCritical, SeverityWarning, SeverityInfo:
	default:
		return errors.New("alert severity must be critical, warning, or info")
	}
	switch a.Category {
	case "", CategorySales, CategorySupply, CategoryCompetitor, CategoryMarket, CategoryFinance, CategoryOperations:
	default:
		return errors.New("unknown alert category")
	}
	return nil
}
