// Package dashboard orchestrates dashboard refresh cycles: concurrent
// retrieval of KPI and alert data, transformation into view-models, and
// coordination of the polling and push-triggered refresh loop.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pulseboard/pulseboard/internal/logger"
	"github.com/pulseboard/pulseboard/internal/models"
	"github.com/pulseboard/pulseboard/internal/viewmodel"
)

// Source abstracts the two backend reads a refresh cycle depends on.
// Satisfied by *backend.Client.
type Source interface {
	FetchDashboard(ctx context.Context) ([]models.KPITile, error)
	FetchAlerts(ctx context.Context) ([]models.Alert, error)
}

// Builder assembles the DashboardData aggregate from the backend.
type Builder struct {
	src Source
}

// NewBuilder creates a builder reading from src.
func NewBuilder(src Source) *Builder {
	return &Builder{src: src}
}

// Load fetches KPI tiles and alerts concurrently, transforms both into
// view-models, and assembles the aggregate. It fails soft: on any fetch or
// decode failure the returned aggregate is the empty shell (empty non-nil
// collections, fresh LastUpdated) and the error reports the cause. The
// aggregate is always usable; a partial mix of one successful and one failed
// source is never produced.
func (b *Builder) Load(ctx context.Context) (models.DashboardData, error) {
	var (
		tiles  []models.KPITile
		alerts []models.Alert
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tiles, err = b.src.FetchDashboard(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		alerts, err = b.src.FetchAlerts(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Dashboard refresh failed: %v", err)
		return emptyShell(time.Now()), err
	}

	now := time.Now()
	return models.DashboardData{
		Metrics:     validMetrics(viewmodel.BuildMetrics(tiles)),
		Alerts:      validAlerts(viewmodel.EnrichAlerts(alerts)),
		MarketData:  []models.MarketData{},
		Forecast:    viewmodel.SyntheticForecast(now, viewmodel.ForecastHorizon),
		Efficiency:  viewmodel.DefaultEfficiency,
		Insights:    viewmodel.DefaultInsights(),
		LastUpdated: now,
	}, nil
}

// validMetrics drops transformed metrics that fail validation, typically
// tiles the backend shipped without a label.
func validMetrics(metrics []models.Metric) []models.Metric {
	valid := make([]models.Metric, 0, len(metrics))
	for i := range metrics {
		if err := metrics[i].Validate(); err != nil {
			logger.Warn("Dropping invalid metric %q: %v", metrics[i].Label, err)
			continue
		}
		valid = append(valid, metrics[i])
	}
	return valid
}

// validAlerts drops enriched alerts that fail validation.
func validAlerts(alerts []models.Alert) []models.Alert {
	valid := make([]models.Alert, 0, len(alerts))
	for i := range alerts {
		if err := alerts[i].Validate(); err != nil {
			logger.Warn("Dropping invalid alert %q: %v", alerts[i].Headline, err)
			continue
		}
		valid = append(valid, alerts[i])
	}
	return valid
}

// emptyShell is the aggregate substituted when a refresh cycle fails.
// Collections are empty but non-nil so consumers never branch on nil.
func emptyShell(now time.Time) models.DashboardData {
	return models.DashboardData{
		Metrics:     []models.Metric{},
		Alerts:      []models.Alert{},
		MarketData:  []models.MarketData{},
		LastUpdated: now,
	}
}
