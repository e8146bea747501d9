// Package wsfeed maintains the WebSocket subscriptions to the backend push
// channels. Message bodies are treated as refresh triggers; the alerts
// channel additionally carries full alert objects for the live stream.
package wsfeed

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulseboard/pulseboard/internal/logger"
	"github.com/pulseboard/pulseboard/internal/models"
)

// Push channels served by the backend.
const (
	ChannelAlerts    = "/ws/alerts"
	ChannelMarket    = "/ws/market"
	ChannelDashboard = "/ws/dashboard"
)

// Feed dials the push channels and invokes the callbacks on inbound
// messages. Connections reconnect with linear backoff until the context is
// cancelled.
type Feed struct {
	wsBase    string
	channels  []string
	onRefresh func(channel string)
	onAlert   func(models.Alert)

	dialer         *websocket.Dialer
	retryDelayBase time.Duration
	maxRetryDelay  time.Duration
}

// New creates a feed for the standard channels. onRefresh is invoked for
// every inbound message; onAlert additionally for decodable alert payloads
// on the alerts channel. Either callback may be nil.
func New(wsBase string, onRefresh func(channel string), onAlert func(models.Alert)) *Feed {
	return &Feed{
		wsBase:         strings.TrimRight(wsBase, "/"),
		channels:       []string{ChannelAlerts, ChannelMarket, ChannelDashboard},
		onRefresh:      onRefresh,
		onAlert:        onAlert,
		dialer:         websocket.DefaultDialer,
		retryDelayBase: time.Second,
		maxRetryDelay:  30 * time.Second,
	}
}

// Start launches one listener goroutine per channel and returns immediately.
// Listeners stop when ctx is cancelled.
func (f *Feed) Start(ctx context.Context) {
	for _, channel := range f.channels {
		go f.run(ctx, channel)
	}
}

func (f *Feed) run(ctx context.Context, channel string) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := f.dialer.DialContext(ctx, f.wsBase+channel, nil)
		if err != nil {
			attempt++
			delay := f.retryDelayBase * time.Duration(attempt)
			if delay > f.maxRetryDelay {
				delay = f.maxRetryDelay
			}
			logger.Warn("Failed to connect to %s (attempt %d): %v", channel, attempt, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}

		logger.Info("Connected to push channel %s", channel)
		attempt = 0

		// Close the connection when the context ends so ReadMessage unblocks.
		stop := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-stop:
			}
		}()

		f.listen(conn, channel)
		close(stop)
		conn.Close()

		// Brief pause before re-dialing a dropped connection.
		select {
		case <-ctx.Done():
			return
		case <-time.After(f.retryDelayBase):
		}
	}
}

// listen reads until the connection drops. Every message is a refresh cue;
// the payload itself stays opaque except for alert objects.
func (f *Feed) listen(conn *websocket.Conn, channel string) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Push channel %s read error: %v", channel, err)
			}
			return
		}

		if f.onRefresh != nil {
			f.onRefresh(channel)
		}

		if channel == ChannelAlerts && f.onAlert != nil {
			body := payload
			var env models.WSMessage
			if err := json.Unmarshal(payload, &env); err == nil && env.Type != "" && len(env.Data) > 0 {
				body = env.Data
			}
			var alert models.Alert
			if err := json.Unmarshal(body, &alert); err == nil && alert.Headline != "" {
				f.onAlert(alert)
			}
		}
	}
}
