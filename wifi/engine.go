package wifi

import (
	"fmt"
	"log/slog"
)

// Input is one snapshot of every feed.
type Input struct {
	Scans   []ScanResult
	Configs []Configuration
	Live    *LiveConnection
}

// Snapshot is an ordered, immutable copy of the access point list.
type Snapshot struct {
	// Seq increases with every pass so that out of order results can be
	// dropped.
	Seq          uint64
	Levels       int
	AccessPoints []AccessPoint
}

// Find returns the highest ranked access point with the given SSID.
func (s Snapshot) Find(ssid string) (AccessPoint, bool) {
	for _, ap := range s.AccessPoints {
		if ap.SSID == ssid {
			return ap, true
		}
	}
	return AccessPoint{}, false
}

// Lookup returns the access point with the given key.
func (s Snapshot) Lookup(key Key) (AccessPoint, bool) {
	for _, ap := range s.AccessPoints {
		if ap.Key() == key {
			return ap, true
		}
	}
	return AccessPoint{}, false
}

func (s Snapshot) clone() Snapshot {
	s.AccessPoints = append([]AccessPoint(nil), s.AccessPoints...)
	return s
}

// Option configures an Engine.
type Option func(*Engine)

// WithSignalLevels sets the number of signal buckets used for ranking.
func WithSignalLevels(levels int) Option {
	return func(e *Engine) {
		if levels > 0 {
			e.levels = levels
		}
	}
}

// WithSavedOutOfRange lists saved networks that no scan result matched.
func WithSavedOutOfRange(include bool) Option {
	return func(e *Engine) {
		e.includeSaved = include
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine reconciles the feeds into a ranked access point list. It owns every
// AccessPoint it creates and hands out copies only.
//
// Engine is not safe for concurrent use; callers serialize passes.
type Engine struct {
	levels       int
	includeSaved bool
	logger       *slog.Logger

	seq   uint64
	arena map[Key]*AccessPoint
	// built keeps construction order, which decides ambiguous live matches.
	built   []*AccessPoint
	configs []Configuration
	live    *LiveConnection
	last    Snapshot
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		levels: DefaultSignalLevels,
		logger: slog.Default(),
		arena:  make(map[Key]*AccessPoint),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.last = Snapshot{Levels: e.levels}
	return e
}

// Levels returns the number of signal buckets.
func (e *Engine) Levels() int {
	return e.levels
}

// Reconcile rebuilds the access point list from a complete set of feeds.
func (e *Engine) Reconcile(in Input) Snapshot {
	prev := e.arena
	e.arena = make(map[Key]*AccessPoint, len(in.Scans))
	e.built = nil
	e.configs = append([]Configuration(nil), in.Configs...)
	e.live = e.resolveLive(in.Live)

	for _, r := range in.Scans {
		if r.SSID == "" {
			continue
		}
		ap := NewAccessPoint(r)
		if _, dup := e.arena[ap.Key()]; dup {
			continue
		}
		for _, cfg := range e.configs {
			if ap.describedBy(cfg) {
				e.attach(ap, cfg)
			}
		}
		e.add(ap)
	}

	if e.includeSaved {
		for _, cfg := range e.configs {
			ap := NewAccessPointFromConfig(cfg)
			if ap.SSID == "" {
				continue
			}
			if existing, ok := e.arena[ap.Key()]; ok {
				if !existing.InRange {
					e.attach(existing, cfg)
				}
				continue
			}
			e.add(ap)
		}
	}

	for key, ap := range e.arena {
		if old, ok := prev[key]; ok {
			ap.credentials = old.credentials
			ap.PendingPassword = old.PendingPassword
		}
	}

	e.applyLive()
	return e.publish()
}

// attach sets cfg as the configuration of ap. With several profiles for one
// network the last one wins, as backends append new profiles, unless the
// live connection uses the one already attached.
func (e *Engine) attach(ap *AccessPoint, cfg Configuration) {
	if ap.Config != nil && e.live != nil && e.live.Info.NetworkID != InvalidNetworkID &&
		ap.Config.NetworkID == e.live.Info.NetworkID {
		return
	}
	ap.Config = &cfg
	ap.NetworkID = cfg.NetworkID
}

func (e *Engine) add(ap *AccessPoint) {
	e.arena[ap.Key()] = ap
	e.built = append(e.built, ap)
}

// UpdateConnection attaches a new live connection to the current access
// points without rebuilding them. A nil live connection detaches it.
func (e *Engine) UpdateConnection(live *LiveConnection) Snapshot {
	e.live = e.resolveLive(live)
	e.applyLive()
	return e.publish()
}

// HandleAuthFailure records that the OS rejected the credentials of the live
// connection's configuration. The matching access point loses its
// configuration so the next connection attempt asks for a password. It
// reports false when no access point could be identified.
func (e *Engine) HandleAuthFailure() (Snapshot, bool) {
	if e.live == nil || e.live.Config == nil {
		e.logger.Debug("auth failure without a selected configuration")
		return e.Snapshot(), false
	}
	cfg := *e.live.Config
	var target *AccessPoint
	for _, ap := range e.built {
		if ap.Saved() && ap.NetworkID == cfg.NetworkID {
			target = ap
			break
		}
	}
	if target == nil {
		target = e.arena[Key{SSID: Unquote(cfg.SSID), Security: securityFromConfig(cfg)}]
	}
	if target == nil {
		e.logger.Debug("auth failure for unlisted network", "ssid", Unquote(cfg.SSID), "network_id", cfg.NetworkID)
		return e.Snapshot(), false
	}
	target.credentials = target.credentials.next(credentialEventAuthFailure)
	target.Config = nil
	target.NetworkID = InvalidNetworkID
	e.logger.Info("credentials rejected", "ssid", target.SSID)
	return e.publish(), true
}

// ResetCredentials clears the credential rejection of an access point.
func (e *Engine) ResetCredentials(key Key) error {
	ap, ok := e.arena[key]
	if !ok {
		return fmt.Errorf("access point %q: %w", key.SSID, ErrNotFound)
	}
	ap.credentials = ap.credentials.next(credentialEventReset)
	return nil
}

// SetPendingPassword stores the password to use for the next connection
// attempt.
func (e *Engine) SetPendingPassword(key Key, password string) error {
	ap, ok := e.arena[key]
	if !ok {
		return fmt.Errorf("access point %q: %w", key.SSID, ErrNotFound)
	}
	ap.PendingPassword = password
	return nil
}

// Lookup returns a copy of the current access point with the given key.
func (e *Engine) Lookup(key Key) (AccessPoint, bool) {
	ap, ok := e.arena[key]
	if !ok {
		return AccessPoint{}, false
	}
	return *ap, true
}

// ConfigIDs returns the network ids of every known configuration for key,
// including ones not attached to the access point.
func (e *Engine) ConfigIDs(key Key) []int {
	var ids []int
	want := AccessPoint{SSID: key.SSID, Security: key.Security}
	for _, cfg := range e.configs {
		if want.describedBy(cfg) {
			ids = append(ids, cfg.NetworkID)
		}
	}
	return ids
}

// Snapshot returns the most recently published snapshot.
func (e *Engine) Snapshot() Snapshot {
	return e.last.clone()
}

// resolveLive copies the live connection and fills in its configuration
// from the known configurations when the caller did not supply one.
func (e *Engine) resolveLive(live *LiveConnection) *LiveConnection {
	if live == nil {
		return nil
	}
	resolved := LiveConnection{Info: live.Info}
	if live.Config != nil {
		cfg := *live.Config
		resolved.Config = &cfg
	} else if live.Info.NetworkID != InvalidNetworkID {
		for _, cfg := range e.configs {
			if cfg.NetworkID == live.Info.NetworkID {
				c := cfg
				resolved.Config = &c
				break
			}
		}
	}
	return &resolved
}

func (e *Engine) applyLive() {
	var matched *AccessPoint
	for _, ap := range e.built {
		if matched == nil && e.live != nil && ap.matchesConnection(*e.live) {
			info := e.live.Info
			ap.Connection = &info
			matched = ap
			continue
		}
		ap.Connection = nil
	}
	if e.live != nil && matched == nil {
		e.logger.Debug("live connection matched no access point", "ssid", Unquote(e.live.Info.SSID), "network_id", e.live.Info.NetworkID)
	}
}

func (e *Engine) publish() Snapshot {
	for _, ap := range e.built {
		if ap.Status() == StatusConnected {
			ap.credentials = ap.credentials.next(credentialEventConnected)
		}
	}

	sorted := append([]*AccessPoint(nil), e.built...)
	SortAccessPoints(sorted, e.levels)

	e.seq++
	snap := Snapshot{
		Seq:          e.seq,
		Levels:       e.levels,
		AccessPoints: make([]AccessPoint, len(sorted)),
	}
	for i, ap := range sorted {
		snap.AccessPoints[i] = *ap
	}
	e.last = snap

	attrs := []any{"seq", snap.Seq, "count", len(snap.AccessPoints)}
	if len(sorted) > 0 && sorted[0].Active() {
		attrs = append(attrs, "active", sorted[0].SSID, "status", sorted[0].Status().String())
	}
	e.logger.Debug("access points reconciled", attrs...)
	return snap.clone()
}
