package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	uponor "uponor_bridge"
	"uponor_bridge/internal/logger"
	"uponor_bridge/internal/metrics"
	"uponor_bridge/internal/repository"
)

var (
	errNoVariables = errors.New("controller returned no variables")
	errNoData      = errors.New("controller returned no relevant data")
)

// CoordinatorService drives the poll cycle (discover, filter, fetch,
// translate, publish) and owns the availability clocks and the published
// snapshot. Exactly one cycle runs at a time; a tick arriving while a cycle
// is still in flight is skipped.
type CoordinatorService struct {
	client     JNAPClient
	translator *Translator
	avail      *AvailabilityTracker
	broadcast  *Broadcaster
	snapshots  repository.SnapshotRepo
	names      repository.NamesRepo
	log        *logger.Logger

	fatalWindow time.Duration

	inFlight atomic.Bool

	mu          sync.RWMutex
	published   uponor.Snapshot
	hasSnapshot bool
}

// NewCoordinatorService builds the coordinator and warm-starts it from the
// persisted snapshot, if any, so consumers see data before the first live
// poll completes. Availability still starts false until the controller
// actually answers.
func NewCoordinatorService(client JNAPClient, snapshots repository.SnapshotRepo, names repository.NamesRepo, cfg Config, log *logger.Logger) *CoordinatorService {
	cfg = cfg.withDefaults()
	c := &CoordinatorService{
		client:      client,
		translator:  NewTranslator(cfg.Units),
		avail:       NewAvailabilityTracker(cfg.StalenessThreshold),
		broadcast:   NewBroadcaster(),
		snapshots:   snapshots,
		names:       names,
		log:         log,
		fatalWindow: cfg.FatalWindow,
	}
	c.warmStart()
	return c
}

func (c *CoordinatorService) warmStart() {
	if c.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := c.snapshots.Load(ctx)
	if err != nil {
		c.logw("warn", "snapshot_warm_start_failed", "err", err)
		return
	}
	if len(snap.Thermostats) == 0 && len(snap.System) == 0 {
		return
	}

	customNames := map[string]string{}
	if c.names != nil {
		if loaded, err := c.names.LoadAll(ctx); err == nil {
			customNames = loaded
		} else {
			c.logw("warn", "custom_names_warm_start_failed", "err", err)
		}
	}

	c.translator.Seed(snap, customNames)
	c.mu.Lock()
	c.published = c.translator.Snapshot(snap.LastUpdate)
	c.hasSnapshot = true
	c.mu.Unlock()
	c.logw("info", "warm_start_loaded",
		"thermostats", len(snap.Thermostats), "last_update", snap.LastUpdate)
}

// Run polls at the given interval until ctx is canceled. The first cycle
// fires immediately so consumers are not left waiting a full tick.
func (c *CoordinatorService) Run(ctx context.Context, tick time.Duration) {
	if err := c.RefreshNow(ctx); err != nil {
		c.logw("error", "poll_cycle_failed", "err", err)
	}

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := c.RefreshNow(ctx); err != nil {
				c.logw("error", "poll_cycle_failed", "err", err)
			}
		}
	}
}

// RefreshNow runs one poll cycle. A cycle already in flight makes this a
// no-op. The returned error is nil both on success and on a tolerated
// failure; a non-nil error means no recent success exists to fall back on.
func (c *CoordinatorService) RefreshNow(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.logw("debug", "poll_cycle_skipped_in_flight")
		return nil
	}
	defer c.inFlight.Store(false)

	names, err := c.client.DiscoverVariables(ctx)
	if err != nil {
		return c.failCycle(fmt.Errorf("discover variables: %w", err))
	}
	if len(names) == 0 {
		return c.failCycle(errNoVariables)
	}

	relevant := FilterRelevant(names)
	c.logw("debug", "poll_discovered", "total", len(names), "relevant", len(relevant))

	// Selective queries are unreliable on this controller, so fetch the
	// full set and filter client-side.
	all, err := c.client.GetAttributes(ctx, nil)
	if err != nil {
		return c.failCycle(fmt.Errorf("get attributes: %w", err))
	}
	data := make(map[string]string, len(relevant))
	for _, name := range relevant {
		if value, ok := all[name]; ok {
			data[name] = value
		}
	}
	if len(data) == 0 {
		return c.failCycle(errNoData)
	}

	c.translator.Process(data)
	now := c.avail.MarkSuccess()
	snap := c.translator.Snapshot(now)

	c.mu.Lock()
	c.published = snap
	c.hasSnapshot = true
	c.mu.Unlock()

	c.persist(ctx, snap)

	metrics.ConnectionFailure.Set(0)
	metrics.LastRefreshTimestamp.Set(float64(now.Unix()))
	metrics.ThermostatCount.Set(float64(len(snap.Thermostats)))

	// Listeners are signaled exactly once per completed cycle, only after
	// the published snapshot is fully merged.
	c.broadcast.Publish()

	c.logw("debug", "poll_cycle_succeeded",
		"thermostats", len(snap.Thermostats), "system_vars", len(snap.System))
	return nil
}

// failCycle decides whether a failed cycle is tolerable. Inside the fatal
// window the stale snapshot is republished with a refreshed response clock
// so availability does not lapse on a transient blip; outside it (or before
// any success at all) the failure surfaces to the caller.
func (c *CoordinatorService) failCycle(cause error) error {
	metrics.ConnectionFailure.Set(1)

	since, ok := c.avail.SinceSuccess()
	if !ok || since > c.fatalWindow {
		return fmt.Errorf("update failed: %w", cause)
	}

	now := c.avail.MarkResponse()
	c.mu.Lock()
	if c.hasSnapshot {
		c.published.LastUpdate = now
	}
	c.mu.Unlock()

	c.logw("warn", "poll_cycle_tolerated_failure",
		"err", cause, "since_last_success", since)
	return nil
}

// persist stores the latest snapshot and custom names, best-effort. Only
// the latest state is kept; this is a warm-start cache, not history.
func (c *CoordinatorService) persist(ctx context.Context, snap uponor.Snapshot) {
	if c.snapshots != nil {
		if err := c.snapshots.Save(ctx, snap); err != nil {
			c.logw("warn", "snapshot_persist_failed", "err", err)
		}
	}
	if c.names != nil {
		if err := c.names.SaveAll(ctx, c.translator.CustomNames()); err != nil {
			c.logw("warn", "custom_names_persist_failed", "err", err)
		}
	}
}

// ---- Telemetry ----

func (c *CoordinatorService) GetThermostatData(id string) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.published.Thermostats[id]
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(rec.Data))
	for k, v := range rec.Data {
		out[k] = v
	}
	return out
}

func (c *CoordinatorService) GetSystemData() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any, len(c.published.System))
	for k, v := range c.published.System {
		out[k] = v
	}
	return out
}

func (c *CoordinatorService) ListThermostatIDs() []string {
	return c.translator.ThermostatIDs()
}

func (c *CoordinatorService) GetCustomName(id string) string {
	return c.translator.CustomName(id)
}

func (c *CoordinatorService) IsAvailable() bool {
	return c.avail.IsAvailable()
}

// Snapshot returns a copy of the published view; ok is false before the
// first publish.
func (c *CoordinatorService) Snapshot() (uponor.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasSnapshot {
		return uponor.Snapshot{}, false
	}
	return c.published.Clone(), true
}

func (c *CoordinatorService) Subscribe() (string, <-chan struct{}) {
	return c.broadcast.Subscribe()
}

func (c *CoordinatorService) Unsubscribe(id string) {
	c.broadcast.Unsubscribe(id)
}

// logw logs through the optional logger; handlers and tests may run without
// one.
func (c *CoordinatorService) logw(level, msg string, kv ...any) {
	if c.log == nil {
		return
	}
	switch level {
	case "debug":
		c.log.Debugw(msg, kv...)
	case "warn":
		c.log.Warnw(msg, kv...)
	case "error":
		c.log.Errorw(msg, kv...)
	default:
		c.log.Infow(msg, kv...)
	}
}
