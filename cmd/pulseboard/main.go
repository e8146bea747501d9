package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pulseboard/pulseboard/internal/backend"
	"github.com/pulseboard/pulseboard/internal/config"
	"github.com/pulseboard/pulseboard/internal/dashboard"
	"github.com/pulseboard/pulseboard/internal/logger"
	"github.com/pulseboard/pulseboard/internal/models"
	"github.com/pulseboard/pulseboard/internal/notify"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/internal/wsfeed"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := session.Open(cfg.Session.DBPath)
	if err != nil {
		logger.Fatal("Failed to open session store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close session store: %v", err)
		}
	}()

	client := backend.NewClient(cfg.Backend.APIURL, cfg.Backend.Timeout, backend.ClientConfig{
		MaxRetries:     cfg.Backend.MaxRetries,
		RetryDelayBase: cfg.Backend.RetryDelayBase,
		Token:          store.Token,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Auth.Email != "" && store.Token() == "" {
		token, err := client.Login(ctx, cfg.Auth.Email, cfg.Auth.Password)
		if err != nil {
			logger.Fatal("Failed to log in: %v", err)
		}
		if err := store.SetToken(token.AccessToken); err != nil {
			logger.Fatal("Failed to persist token: %v", err)
		}
		logger.Info("Logged in as %s", cfg.Auth.Email)
	}

	var notifier *notify.Client
	if cfg.Notify.Enabled {
		notifier, err = notify.NewClient(cfg.Notify.BotToken, cfg.Notify.ChatID,
			cfg.Backend.MaxRetries, cfg.Backend.RetryDelayBase, cfg.Notify.Cooldown)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram notifier: %v", err)
		}
		logger.Info("Telegram notifier initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	consecutiveFailures := 0
	onUpdate := func(snap dashboard.Snapshot) {
		if snap.LastErr != nil {
			consecutiveFailures++
			logger.Error("Refresh cycle failed: %v", snap.LastErr)
			if consecutiveFailures == 1 && notifier != nil {
				if sendErr := notifier.SendError(snap.LastErr); sendErr != nil {
					logger.Warn("Failed to send error notification: %v", sendErr)
				}
			}
			return
		}
		if consecutiveFailures > 0 && notifier != nil {
			if sendErr := notifier.SendRecovery(consecutiveFailures); sendErr != nil {
				logger.Warn("Failed to send recovery notification: %v", sendErr)
			}
		}
		consecutiveFailures = 0

		logger.Info("Dashboard refreshed: %d metrics, %d alerts (as of %s)",
			len(snap.Data.Metrics), len(snap.Data.Alerts), snap.Data.LastUpdated.Format("15:04:05"))

		if notifier != nil {
			if err := notifier.SendAlerts(snap.Data.Alerts); err != nil {
				logger.Error("Failed to forward critical alerts: %v", err)
			}
		}
	}

	builder := dashboard.NewBuilder(client)
	coord := dashboard.NewCoordinator(builder, cfg.Backend.PollInterval, onUpdate)

	feed := wsfeed.New(cfg.WSBaseURL(),
		func(channel string) {
			logger.Debug("Push message on %s, scheduling refresh", channel)
			coord.Refresh()
		},
		func(a models.Alert) {
			enriched, err := coord.PushAlert(a)
			if err != nil {
				logger.Warn("Rejected invalid live alert %q: %v", a.Headline, err)
				return
			}
			logger.Info("Live alert [%s] %s", enriched.Severity, enriched.Title)
			if notifier != nil {
				if err := notifier.SendAlerts([]models.Alert{enriched}); err != nil {
					logger.Error("Failed to forward live alert: %v", err)
				}
			}
		},
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting dashboard agent (interval: %v, backend: %s)",
		cfg.Backend.PollInterval, cfg.Backend.APIURL)

	coord.Start(ctx)
	feed.Start(ctx)

	<-sigChan
	logger.Info("Shutdown signal received, cleaning up...")
	cancel()
	coord.Stop()
	logger.Info("Service stopped")
}
