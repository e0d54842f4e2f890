//go:build linux

// WARNING: This implementation is untested.
package iwd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifilist/wifi"
)

const agentPath = dbus.ObjectPath("/com/github/shazow/wifilist/agent")

// Backend implements wifi.Backend using iwd.
type Backend struct {
	conn   *dbus.Conn
	logger *slog.Logger
	agent  *agent

	mu sync.Mutex
	// ids gives known networks stable network ids for the life of the
	// process. iwd identifies them by object path only.
	ids     map[dbus.ObjectPath]int
	pending map[int]wifi.Configuration
	nextID  int
	// notify carries events produced by asynchronous connects to Watch.
	notify chan wifi.Event
}

// New creates a new iwd.Backend.
func New(logger *slog.Logger) (wifi.Backend, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	var objs managedObjects
	if err := conn.Object(iwdDest, iwdRoot).Call(objectManagerIface+".GetManagedObjects", 0).Store(&objs); err != nil {
		return nil, fmt.Errorf("iwd is not available: %w", wifi.ErrNotAvailable)
	}

	return &Backend{
		conn:    conn,
		logger:  logger,
		ids:     make(map[dbus.ObjectPath]int),
		pending: make(map[int]wifi.Configuration),
		notify:  make(chan wifi.Event, 8),
	}, nil
}

func (b *Backend) objects() (managedObjects, error) {
	var objs managedObjects
	err := b.conn.Object(iwdDest, iwdRoot).Call(objectManagerIface+".GetManagedObjects", 0).Store(&objs)
	if err != nil {
		return nil, fmt.Errorf("failed to list iwd objects: %w", err)
	}
	return objs, nil
}

func (b *Backend) station(objs managedObjects) (dbus.ObjectPath, map[string]dbus.Variant, error) {
	p, props, ok := objs.station()
	if !ok {
		return "", nil, fmt.Errorf("no station device found: %w", wifi.ErrNotFound)
	}
	return p, props, nil
}

// ScanResults returns the networks the station sees, strongest first.
func (b *Backend) ScanResults(shouldScan bool) ([]wifi.ScanResult, error) {
	enabled, err := b.IsWirelessEnabled()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, wifi.ErrWirelessDisabled
	}
	objs, err := b.objects()
	if err != nil {
		return nil, err
	}
	station, _, err := b.station(objs)
	if err != nil {
		return nil, err
	}
	obj := b.conn.Object(iwdDest, station)
	if shouldScan {
		// Best effort scan
		if err := obj.Call(iwdStationIface+".Scan", 0).Err; err != nil {
			b.logger.Debug("scan request rejected", "error", err)
		}
	}

	var ordered []struct {
		Path   dbus.ObjectPath
		Signal int16
	}
	if err := obj.Call(iwdStationIface+".GetOrderedNetworks", 0).Store(&ordered); err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}

	byPath := make(map[dbus.ObjectPath]network)
	for _, n := range objs.networks() {
		byPath[n.path] = n
	}
	results := make([]wifi.ScanResult, 0, len(ordered))
	for _, o := range ordered {
		n, ok := byPath[o.Path]
		if !ok {
			continue
		}
		results = append(results, wifi.ScanResult{
			SSID:         n.name,
			Capabilities: capabilities(n.kind),
			// Signal is in 100 * dBm.
			Level: int(o.Signal) / 100,
		})
	}
	return results, nil
}

// idFor must be called with mu held.
func (b *Backend) idFor(k knownNetwork) int {
	if id, ok := b.ids[k.path]; ok {
		return id
	}
	// A network added through AddNetwork keeps its id once iwd knows it.
	for id, cfg := range b.pending {
		if wifi.Unquote(cfg.SSID) == k.name {
			delete(b.pending, id)
			b.ids[k.path] = id
			return id
		}
	}
	id := b.nextID
	b.nextID++
	b.ids[k.path] = id
	return id
}

// ConfiguredNetworks returns iwd's known networks plus networks added but
// not connected yet.
func (b *Backend) ConfiguredNetworks() ([]wifi.Configuration, error) {
	objs, err := b.objects()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var configs []wifi.Configuration
	for _, k := range objs.knownNetworks() {
		configs = append(configs, configuration(b.idFor(k), k))
	}
	for _, cfg := range b.pending {
		configs = append(configs, cfg)
	}
	return configs, nil
}

// ConnectionInfo reads the station state and its connected network.
func (b *Backend) ConnectionInfo() (*wifi.ConnectionInfo, error) {
	objs, err := b.objects()
	if err != nil {
		return nil, err
	}
	_, props, err := b.station(objs)
	if err != nil {
		return nil, err
	}
	state := detailedState(stringProp(props, "State"))
	connected := pathProp(props, "ConnectedNetwork")
	if connected == "" || state == wifi.DetailedStateDisconnected {
		return nil, nil
	}

	info := &wifi.ConnectionInfo{
		NetworkID: wifi.InvalidNetworkID,
		State:     state,
	}
	for _, n := range objs.networks() {
		if n.path != connected {
			continue
		}
		info.SSID = wifi.Quote(n.name)
		if n.known != "" {
			b.mu.Lock()
			info.NetworkID = b.idFor(knownNetwork{path: n.known, name: n.name, kind: n.kind})
			b.mu.Unlock()
		}
	}
	return info, nil
}

// AddNetwork remembers cfg until EnableNetwork connects to it. iwd only
// stores networks after a successful connection.
func (b *Backend) AddNetwork(cfg wifi.Configuration) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ssid := wifi.Unquote(cfg.SSID)
	for id, p := range b.pending {
		if wifi.Unquote(p.SSID) == ssid {
			delete(b.pending, id)
		}
	}
	cfg.NetworkID = b.nextID
	b.nextID++
	b.pending[cfg.NetworkID] = cfg
	return cfg.NetworkID, nil
}

func (b *Backend) knownPath(id int) (dbus.ObjectPath, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for p, known := range b.ids {
		if known == id {
			return p, true
		}
	}
	return "", false
}

// EnableNetwork starts connecting to a saved or pending network. The
// outcome is reported through Watch.
func (b *Backend) EnableNetwork(id int) error {
	objs, err := b.objects()
	if err != nil {
		return err
	}

	var ssid string
	b.mu.Lock()
	cfg, isPending := b.pending[id]
	b.mu.Unlock()
	if isPending {
		ssid = wifi.Unquote(cfg.SSID)
	} else if p, ok := b.knownPath(id); ok {
		for _, k := range objs.knownNetworks() {
			if k.path == p {
				ssid = k.name
			}
		}
	}
	if ssid == "" {
		return fmt.Errorf("cannot enable unknown network %d: %w", id, wifi.ErrNotFound)
	}

	var target dbus.ObjectPath
	for _, n := range objs.networks() {
		if n.name == ssid {
			target = n.path
			break
		}
	}
	if target == "" {
		return fmt.Errorf("network %s is not in range: %w", ssid, wifi.ErrNotFound)
	}

	if isPending {
		secret := wifi.Unquote(cfg.PreSharedKey)
		if secret == "" {
			secret = wifi.Unquote(cfg.WEPKey0)
		}
		if secret != "" {
			if err := b.registerAgent(); err != nil {
				return err
			}
			b.agent.set(target, secret)
		}
	}

	call := b.conn.Object(iwdDest, target).Go(iwdNetworkIface+".Connect", 0, make(chan *dbus.Call, 1))
	go func() {
		<-call.Done
		e := wifi.Event{Kind: wifi.EventNetworkState}
		if call.Err != nil {
			b.logger.Warn("connect failed", "ssid", ssid, "error", call.Err)
			if isAuthError(call.Err) {
				e.Kind = wifi.EventAuthFailure
			}
		}
		select {
		case b.notify <- e:
		default:
		}
	}()
	return nil
}

func isAuthError(err error) bool {
	var name string
	switch e := err.(type) {
	case dbus.Error:
		name = e.Name
	case *dbus.Error:
		name = e.Name
	default:
		return false
	}
	return strings.HasSuffix(name, ".InvalidFormat") || strings.HasSuffix(name, ".Failed")
}

func (b *Backend) registerAgent() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.agent != nil {
		return nil
	}
	a := &agent{passphrases: make(map[dbus.ObjectPath]string)}
	if err := b.conn.Export(a, agentPath, iwdAgentIface); err != nil {
		return fmt.Errorf("failed to export agent: %w", err)
	}
	if err := b.conn.Object(iwdDest, iwdNamespace).Call(iwdAgentManagerIface+".RegisterAgent", 0, agentPath).Err; err != nil {
		return fmt.Errorf("failed to register agent: %w", err)
	}
	b.agent = a
	return nil
}

// RemoveNetwork forgets a known network or drops a pending one.
func (b *Backend) RemoveNetwork(id int) error {
	b.mu.Lock()
	if _, ok := b.pending[id]; ok {
		delete(b.pending, id)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	p, ok := b.knownPath(id)
	if !ok {
		return fmt.Errorf("cannot forget: network %d is not known: %w", id, wifi.ErrNotFound)
	}
	if err := b.conn.Object(iwdDest, p).Call(iwdKnownNetworkIface+".Forget", 0).Err; err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.ids, p)
	b.mu.Unlock()
	return nil
}

func (b *Backend) IsWirelessEnabled() (bool, error) {
	objs, err := b.objects()
	if err != nil {
		return false, err
	}
	station, _, err := b.station(objs)
	if err != nil {
		return false, err
	}
	return boolProp(objs[station][iwdDeviceIface], "Powered"), nil
}

func (b *Backend) SetWireless(enabled bool) error {
	objs, err := b.objects()
	if err != nil {
		return err
	}
	station, _, err := b.station(objs)
	if err != nil {
		return err
	}
	obj := b.conn.Object(iwdDest, station)
	variant := dbus.MakeVariant(enabled)
	return obj.Call(propertiesIface+".Set", 0, iwdDeviceIface, "Powered", variant).Err
}

// Watch forwards iwd signals as feed events until ctx is done.
func (b *Backend) Watch(ctx context.Context, events chan<- wifi.Event) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", wifi.ErrNotAvailable)
	}
	defer conn.Close()

	matches := [][]dbus.MatchOption{
		{dbus.WithMatchInterface(propertiesIface), dbus.WithMatchMember("PropertiesChanged"), dbus.WithMatchPathNamespace(iwdNamespace)},
		{dbus.WithMatchInterface(objectManagerIface), dbus.WithMatchSender(iwdDest)},
	}
	for _, m := range matches {
		if err := conn.AddMatchSignal(m...); err != nil {
			return fmt.Errorf("failed to subscribe to signals: %w", err)
		}
	}
	signals := make(chan *dbus.Signal, 32)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	for {
		var e wifi.Event
		select {
		case <-ctx.Done():
			return nil
		case e = <-b.notify:
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("signal channel closed: %w", wifi.ErrOperationFailed)
			}
			var match bool
			if e, match = eventForSignal(sig); !match {
				continue
			}
		}
		select {
		case events <- e:
		case <-ctx.Done():
			return nil
		}
	}
}

// agent answers iwd's passphrase requests for networks added through
// AddNetwork.
type agent struct {
	mu          sync.Mutex
	passphrases map[dbus.ObjectPath]string
}

func (a *agent) set(network dbus.ObjectPath, passphrase string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.passphrases[network] = passphrase
}

func (a *agent) Release() *dbus.Error {
	return nil
}

func (a *agent) RequestPassphrase(network dbus.ObjectPath) (string, *dbus.Error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.passphrases[network]
	if !ok {
		return "", dbus.NewError(iwdAgentIface+".Error.Canceled", nil)
	}
	delete(a.passphrases, network)
	return p, nil
}

func (a *agent) Cancel(reason string) *dbus.Error {
	return nil
}
