// Package tracker keeps a ranked access point list up to date by feeding
// backend results through a wifi.Engine.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shazow/wifilist/wifi"
	"github.com/shazow/wifilist/wifi/scancache"
)

const (
	// DefaultScanInterval is how often Run asks the radio for a fresh scan.
	DefaultScanInterval = 10 * time.Second
	// DefaultMinScanInterval throttles radio scans from all sources.
	DefaultMinScanInterval = 5 * time.Second
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger for the tracker and its engine.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithEngineOptions passes options through to the engine.
func WithEngineOptions(opts ...wifi.Option) Option {
	return func(t *Tracker) {
		t.engineOpts = append(t.engineOpts, opts...)
	}
}

// WithScanMaxAge keeps scan results for maxAge after the radio last reported
// them. Zero disables it.
func WithScanMaxAge(maxAge time.Duration) Option {
	return func(t *Tracker) {
		t.cache = scancache.New(maxAge)
	}
}

// WithMinScanInterval limits how often the radio is asked to scan. Zero
// removes the limit.
func WithMinScanInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d <= 0 {
			t.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		t.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// Tracker serializes every pass over the engine and publishes the resulting
// snapshots to subscribers. It is safe for concurrent use.
type Tracker struct {
	backend    wifi.Backend
	engine     *wifi.Engine
	engineOpts []wifi.Option
	cache      *scancache.Cache
	limiter    *rate.Limiter
	logger     *slog.Logger

	// mu is held for the whole of every pass.
	mu sync.Mutex

	subMu  sync.Mutex
	subs   map[chan wifi.Snapshot]struct{}
	latest wifi.Snapshot
}

// New creates a tracker around backend. Nothing is read until Refresh or Run
// is called.
func New(backend wifi.Backend, opts ...Option) *Tracker {
	t := &Tracker{
		backend: backend,
		cache:   scancache.New(0),
		limiter: rate.NewLimiter(rate.Every(DefaultMinScanInterval), 1),
		logger:  slog.Default(),
		subs:    make(map[chan wifi.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.engine = wifi.NewEngine(append([]wifi.Option{wifi.WithLogger(t.logger)}, t.engineOpts...)...)
	t.latest = t.engine.Snapshot()
	return t
}

// Latest returns the most recently published snapshot.
func (t *Tracker) Latest() wifi.Snapshot {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	return t.latest
}

// Subscribe returns a channel that always holds the newest snapshot not yet
// received. Older undelivered snapshots are replaced. Call cancel to stop
// receiving.
func (t *Tracker) Subscribe() (<-chan wifi.Snapshot, func()) {
	ch := make(chan wifi.Snapshot, 1)
	t.subMu.Lock()
	t.subs[ch] = struct{}{}
	t.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subs, ch)
			t.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (t *Tracker) publish(snap wifi.Snapshot) wifi.Snapshot {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	if snap.Seq <= t.latest.Seq && t.latest.Seq != 0 {
		return t.latest
	}
	t.latest = snap
	for ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}

// Refresh reads every feed and rebuilds the list. Scan requests beyond the
// rate limit fall back to the results the backend already has.
func (t *Tracker) Refresh(shouldScan bool) (wifi.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refresh(shouldScan)
}

func (t *Tracker) refresh(shouldScan bool) (wifi.Snapshot, error) {
	if shouldScan && !t.limiter.Allow() {
		t.logger.Debug("scan throttled")
		shouldScan = false
	}
	scans, err := t.backend.ScanResults(shouldScan)
	if err != nil {
		return t.Latest(), fmt.Errorf("failed to read scan results: %w", err)
	}
	configs, err := t.backend.ConfiguredNetworks()
	if err != nil {
		return t.Latest(), fmt.Errorf("failed to read configured networks: %w", err)
	}
	live, err := t.live()
	if err != nil {
		return t.Latest(), err
	}

	snap := t.engine.Reconcile(wifi.Input{
		Scans:   t.cache.Merge(scans),
		Configs: configs,
		Live:    live,
	})
	return t.publish(snap), nil
}

func (t *Tracker) live() (*wifi.LiveConnection, error) {
	info, err := t.backend.ConnectionInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read connection info: %w", err)
	}
	if info == nil {
		return nil, nil
	}
	return &wifi.LiveConnection{Info: *info}, nil
}

// updateConnection patches the current list with the live connection.
func (t *Tracker) updateConnection() (wifi.Snapshot, error) {
	live, err := t.live()
	if err != nil {
		return t.Latest(), err
	}
	return t.publish(t.engine.UpdateConnection(live)), nil
}

// HandleEvent runs the pass that matches a backend event.
func (t *Tracker) HandleEvent(e wifi.Event) (wifi.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logger.Debug("backend event", "kind", e.Kind.String())
	switch e.Kind {
	case wifi.EventScanResults, wifi.EventConfiguredNetworks:
		return t.refresh(false)
	case wifi.EventNetworkState, wifi.EventCapabilities:
		return t.updateConnection()
	case wifi.EventAuthFailure:
		if _, err := t.updateConnection(); err != nil {
			return t.Latest(), err
		}
		snap, ok := t.engine.HandleAuthFailure()
		if !ok {
			return t.Latest(), nil
		}
		return t.publish(snap), nil
	}
	return t.Latest(), fmt.Errorf("unknown event %d: %w", e.Kind, wifi.ErrNotSupported)
}

// Run refreshes the list every interval and reacts to backend events until
// ctx is done. Pass failures are logged and retried on the next tick.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultScanInterval
	}

	var events chan wifi.Event
	watchErr := make(chan error, 1)
	if w, ok := t.backend.(wifi.Watcher); ok {
		events = make(chan wifi.Event, 16)
		go func() {
			watchErr <- w.Watch(ctx, events)
		}()
	}

	if _, err := t.Refresh(true); err != nil {
		t.logger.Warn("refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := t.Refresh(true); err != nil {
				t.logger.Warn("refresh failed", "error", err)
			}
		case e := <-events:
			if _, err := t.HandleEvent(e); err != nil {
				t.logger.Warn("event handling failed", "kind", e.Kind.String(), "error", err)
			}
		case err := <-watchErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.logger.Warn("watching backend stopped", "error", err)
			}
			// Polling carries on without events.
			events = nil
			watchErr = nil
		}
	}
}

// Connect joins the network identified by key. A non-empty password replaces
// the saved credentials.
func (t *Tracker) Connect(key wifi.Key, password string) (wifi.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if password != "" {
		if err := t.engine.SetPendingPassword(key, password); err != nil {
			return t.Latest(), err
		}
	}
	ap, ok := t.engine.Lookup(key)
	if !ok {
		return t.Latest(), fmt.Errorf("access point %q: %w", key.SSID, wifi.ErrNotFound)
	}
	if password != "" && ap.Config != nil {
		// New credentials always produce a new configuration.
		ap.Config = nil
	}

	cfg, err := ap.NetworkConfig()
	if err != nil {
		return t.Latest(), fmt.Errorf("access point %q: %w", ap.SSID, err)
	}
	id := cfg.NetworkID
	if id == wifi.InvalidNetworkID {
		stale := t.engine.ConfigIDs(key)
		id, err = t.backend.AddNetwork(cfg)
		if err != nil {
			return t.Latest(), fmt.Errorf("failed to save %q: %w", ap.SSID, err)
		}
		t.removeStale(ap.SSID, stale, id)
		if err := t.engine.ResetCredentials(key); err != nil {
			return t.Latest(), err
		}
	}
	t.logger.Info("connecting", "ssid", ap.SSID, "network_id", id)
	if err := t.backend.EnableNetwork(id); err != nil {
		return t.Latest(), fmt.Errorf("failed to connect to %q: %w", ap.SSID, err)
	}
	return t.refresh(false)
}

// removeStale deletes the profiles that a newly saved one replaces. Some
// backends replace profiles themselves, so missing ones are ignored.
func (t *Tracker) removeStale(ssid string, ids []int, keep int) {
	for _, id := range ids {
		if id == keep {
			continue
		}
		err := t.backend.RemoveNetwork(id)
		switch {
		case err == nil:
			t.logger.Debug("removed replaced profile", "ssid", ssid, "network_id", id)
		case errors.Is(err, wifi.ErrNotFound):
		default:
			t.logger.Warn("failed to remove replaced profile", "ssid", ssid, "network_id", id, "error", err)
		}
	}
}

// Forget removes the saved configuration of the network identified by key.
func (t *Tracker) Forget(key wifi.Key) (wifi.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ap, ok := t.engine.Lookup(key)
	if !ok {
		return t.Latest(), fmt.Errorf("access point %q: %w", key.SSID, wifi.ErrNotFound)
	}
	if !ap.Saved() {
		return t.Latest(), fmt.Errorf("access point %q: %w", key.SSID, wifi.ErrNotSaved)
	}
	if err := t.backend.RemoveNetwork(ap.NetworkID); err != nil {
		return t.Latest(), fmt.Errorf("failed to forget %q: %w", ap.SSID, err)
	}
	if err := t.engine.ResetCredentials(key); err != nil {
		return t.Latest(), err
	}
	t.logger.Info("forgot network", "ssid", ap.SSID, "network_id", ap.NetworkID)
	return t.refresh(false)
}

// SetWireless toggles the radio and refreshes the list.
func (t *Tracker) SetWireless(enabled bool) (wifi.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.backend.SetWireless(enabled); err != nil {
		return t.Latest(), fmt.Errorf("failed to set wireless: %w", err)
	}
	if !enabled {
		t.cache.Flush()
		return t.publish(t.engine.Reconcile(wifi.Input{})), nil
	}
	return t.refresh(true)
}

// WirelessEnabled reports whether the radio is on.
func (t *Tracker) WirelessEnabled() (bool, error) {
	return t.backend.IsWirelessEnabled()
}
