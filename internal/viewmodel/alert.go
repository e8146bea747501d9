package viewmodel

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/pulseboard/pulseboard/internal/models"
)

var (
	currencyRe = regexp.MustCompile(`\$?\d[\d,]*[KM]?`)
	percentRe  = regexp.MustCompile(`[\d.]+%`)
)

// EnrichAlerts enriches raw alerts one-to-one, preserving backend order.
func EnrichAlerts(raw []models.Alert) []models.Alert {
	alerts := make([]models.Alert, 0, len(raw))
	for _, a := range raw {
		alerts = append(alerts, EnrichAlert(a))
	}
	return alerts
}

// EnrichAlert fills the view-model fields of a raw alert. Backend-supplied
// structured metrics, actions, and category are kept as-is; headline parsing
// is the fallback for older backends that only ship free text.
func EnrichAlert(a models.Alert) models.Alert {
	if a.ID == "" {
		a.ID = fallbackID(a.TS, a.Headline)
	}
	if a.Severity == "" {
		a.Severity = models.SeverityInfo
	}
	if a.Title == "" {
		a.Title = a.Headline
	}
	if a.Description == "" {
		if a.Details != "" {
			a.Description = a.Details
		} else {
			a.Description = a.Headline
		}
	}
	if len(a.Metrics) == 0 {
		a.Metrics = parseHeadlineMetrics(a)
	}
	if len(a.Actions) == 0 {
		a.Actions = synthesizeActions(a)
	}
	if a.Category == "" {
		a.Category = categorize(a.Headline)
	}
	return a
}

// fallbackID derives a stable identifier from the alert content, so the same
// alert keeps the same ID across refresh cycles.
func fallbackID(ts time.Time, headline string) string {
	h := fnv.New64a()
	h.Write([]byte(ts.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte{'|'})
	h.Write([]byte(headline))
	return fmt.Sprintf("alert-%016x", h.Sum64())
}

// parseHeadlineMetrics scans the headline for a currency-like token, a
// percentage token, and folds in the KPI field. Matches append in the fixed
// order IMPACT, CHANGE, KPI; a missing token contributes nothing.
func parseHeadlineMetrics(a models.Alert) []models.AlertMetric {
	var metrics []models.AlertMetric

	if money := currencyRe.FindString(a.Headline); money != "" {
		if !strings.HasPrefix(money, "$") {
			money = "$" + money
		}
		metrics = append(metrics, models.AlertMetric{Label: "IMPACT", Value: money})
	}

	if pct := percentRe.FindString(a.Headline); pct != "" {
		trend := models.TrendUp
		if strings.Contains(strings.ToLower(a.Headline), "down") {
			trend = models.TrendDown
		}
		metrics = append(metrics, models.AlertMetric{Label: "CHANGE", Value: pct, Trend: trend})
	}

	if a.KPI != "" {
		metrics = append(metrics, models.AlertMetric{Label: "KPI", Value: a.KPI})
	}

	return metrics
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// synthesizeActions builds the action list: the backend suggestion first,
// then automated actions for every matching keyword set (not mutually
// exclusive), and a trailing analyze action regardless.
func synthesizeActions(a models.Alert) []models.AlertAction {
	var actions []models.AlertAction

	if a.SuggestedAction != "" {
		actions = append(actions, models.AlertAction{
			ID:    "suggested",
			Label: a.SuggestedAction,
			Type:  models.ActionCustom,
			Style: models.StylePrimary,
		})
	}

	headline := strings.ToLower(a.Headline)

	if containsAny(headline, "sales", "revenue", "customer") {
		actions = append(actions, models.AlertAction{
			ID:        "marketing",
			Label:     "🎯 AUTO-MARKETING",
			Icon:      "🎯",
			Type:      models.ActionMarketing,
			Style:     models.StylePrimary,
			Automated: true,
		})
	}

	if containsAny(headline, "supply", "shipment", "inventory") {
		actions = append(actions, models.AlertAction{
			ID:        "logistics",
			Label:     "🚚 AUTO-LOGISTICS",
			Icon:      "🚚",
			Type:      models.ActionLogistics,
			Style:     models.StyleWarn,
			Automated: true,
		})
	}

	if containsAny(headline, "competitor", "price") {
		actions = append(actions, models.AlertAction{
			ID:        "counter",
			Label:     "⚡ COUNTER-STRIKE",
			Icon:      "⚡",
			Type:      models.ActionAnalysis,
			Style:     models.StyleDanger,
			Automated: true,
		})
	}

	actions = append(actions, models.AlertAction{
		ID:    "analyze",
		Label: "📊 Analyze",
		Type:  models.ActionAnalysis,
		Style: models.StyleDefault,
	})

	return actions
}

// categorize maps the headline into a business category. Keyword sets are
// checked in a fixed order; the first match wins.
func categorize(headline string) string {
	h := strings.ToLower(headline)
	switch {
	case containsAny(h, "sales", "revenue", "customer"):
		return models.CategorySales
	case containsAny(h, "supply", "shipment", "inventory"):
		return models.CategorySupply
	case containsAny(h, "competitor", "market share"):
		return models.CategoryCompetitor
	case containsAny(h, "market", "trend"):
		return models.CategoryMarket
	case containsAny(h, "margin", "cost", "cash"):
		return models.CategoryFinance
	}
	return models.CategoryOperations
}
