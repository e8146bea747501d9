package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/pulseboard/pulseboard/internal/logger"
	"github.com/pulseboard/pulseboard/internal/models"
	"github.com/pulseboard/pulseboard/internal/viewmodel"
)

// MaxLiveAlerts caps the in-memory list fed by the alerts push channel.
const MaxLiveAlerts = 50

// Snapshot is the coordinator state visible to consumers.
type Snapshot struct {
	Data      models.DashboardData
	IsLoading bool
	LastErr   error
}

// Coordinator re-runs the builder on a fixed interval and on every push
// trigger. Each refresh is tagged with a monotonic sequence number; a result
// is applied only while no later refresh has completed, so a slow, stale
// request can never overwrite newer data. In-flight loads are not cancelled
// when superseded, they are simply discarded on arrival.
type Coordinator struct {
	builder  *Builder
	interval time.Duration
	onUpdate func(Snapshot)

	refreshCh chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup

	// updateMu serializes apply, so onUpdate callbacks never run
	// concurrently and snapshots are delivered in applied order.
	updateMu sync.Mutex

	mu         sync.RWMutex
	data       models.DashboardData
	inFlight   int
	lastErr    error
	issuedSeq  uint64
	appliedSeq uint64
	liveAlerts []models.Alert
}

// NewCoordinator creates a coordinator around builder. onUpdate, if non-nil,
// is invoked after every applied refresh (successful or empty-shell).
func NewCoordinator(builder *Builder, interval time.Duration, onUpdate func(Snapshot)) *Coordinator {
	return &Coordinator{
		builder:   builder,
		interval:  interval,
		onUpdate:  onUpdate,
		refreshCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start launches the refresh loop: an immediate initial load, then one per
// tick and one per push trigger. It returns immediately.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.launch(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.launch(ctx)
			case <-c.refreshCh:
				c.launch(ctx)
			}
		}
	}()
}

// Stop tears down the ticker and waits for the loop and any in-flight loads
// to finish.
func (c *Coordinator) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.wg.Wait()
}

// Refresh requests an immediate reload, typically on receipt of a push
// message. Requests arriving while one is already pending coalesce.
func (c *Coordinator) Refresh() {
	select {
	case c.refreshCh <- struct{}{}:
	default:
	}
}

// launch starts one refresh cycle. Cycles may overlap; the sequence guard in
// apply keeps ordering correct.
func (c *Coordinator) launch(ctx context.Context) {
	c.mu.Lock()
	c.issuedSeq++
	seq := c.issuedSeq
	c.inFlight++
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		data, err := c.builder.Load(ctx)
		c.apply(seq, data, err)
	}()
}

func (c *Coordinator) apply(seq uint64, data models.DashboardData, err error) {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	c.mu.Lock()
	c.inFlight--
	applied := seq > c.appliedSeq
	if applied {
		c.appliedSeq = seq
		c.data = data
		c.lastErr = err
	}
	latest := c.appliedSeq
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if !applied {
		logger.Debug("Discarded stale refresh result (seq %d, latest applied %d)", seq, latest)
		return
	}
	if c.onUpdate != nil {
		c.onUpdate(snap)
	}
}

// Snapshot returns the latest aggregate along with the loading and error
// flags exposed to presentation code.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		Data:      c.data,
		IsLoading: c.inFlight > 0,
		LastErr:   c.lastErr,
	}
}

// PushAlert enriches an alert delivered on the push channel and prepends it
// to the capped live list, most recent first. Alerts that fail validation
// after enrichment are rejected.
func (c *Coordinator) PushAlert(a models.Alert) (models.Alert, error) {
	enriched := viewmodel.EnrichAlert(a)
	if err := enriched.Validate(); err != nil {
		return enriched, err
	}

	c.mu.Lock()
	c.liveAlerts = append([]models.Alert{enriched}, c.liveAlerts...)
	if len(c.liveAlerts) > MaxLiveAlerts {
		c.liveAlerts = c.liveAlerts[:MaxLiveAlerts]
	}
	c.mu.Unlock()

	return enriched, nil
}

// LiveAlerts returns a copy of the capped push-fed alert list.
func (c *Coordinator) LiveAlerts() []models.Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Alert, len(c.liveAlerts))
	copy(out, c.liveAlerts)
	return out
}
