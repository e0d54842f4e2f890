package mock

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shazow/wifilist/wifi"
)

var DefaultActionSleep = 500 * time.Millisecond

// MockBackend is an in-memory implementation of wifi.Backend and wifi.Watcher
// for testing.
type MockBackend struct {
	mu sync.Mutex

	Scans      []wifi.ScanResult
	Configs    []wifi.Configuration
	Connection *wifi.ConnectionInfo
	// Passwords holds the password each network accepts, keyed by SSID.
	// Networks without an entry accept anything.
	Passwords map[string]string

	WirelessEnabled        bool
	ScanError              error
	ConfiguredError        error
	ConnectionInfoError    error
	AddNetworkError        error
	EnableNetworkError     error
	RemoveNetworkError     error
	IsWirelessEnabledError error
	SetWirelessError       error

	// ActionSleep is a delay before every action, to better emulate a real-world backend for the frontend. Set to 0 during testing.
	ActionSleep time.Duration

	// KeepReplaced makes AddNetwork append a profile even when one exists
	// for the SSID, as NetworkManager does.
	KeepReplaced bool

	// ScanCount counts scan requests.
	ScanCount int

	nextID   int
	watchers map[chan<- wifi.Event]struct{}
}

// New creates a new mock backend with a list of fun wifi networks.
func New() (wifi.Backend, error) {
	scans := []wifi.ScanResult{
		{SSID: "HideYoKidsHideYoWiFi", BSSID: "02:00:00:00:00:01", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -58},
		{SSID: "NeverGonnaGiveYouIP", BSSID: "02:00:00:00:00:02", Capabilities: "[WEP][ESS]", Level: -71},
		{SSID: "Unencrypted_Honeypot", BSSID: "02:00:00:00:00:03", Capabilities: "[ESS]", Level: -64},
		{SSID: "Dunder MiffLAN", BSSID: "02:00:00:00:00:04", Capabilities: "[WPA-PSK-TKIP][WPA2-PSK-CCMP][ESS]", Level: -80},
		{SSID: "Police Surveillance 2", BSSID: "02:00:00:00:00:05", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -77},
		{SSID: "I Believe Wi Can Fi", BSSID: "02:00:00:00:00:06", Capabilities: "[WEP][ESS]", Level: -90},
		{SSID: "Hot singles in your area", BSSID: "02:00:00:00:00:07", Capabilities: "[WPA-PSK-TKIP][ESS]", Level: -66},
		{SSID: "Password is password", BSSID: "02:00:00:00:00:08", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -52},
		{SSID: "TacoBoutAGoodSignal", BSSID: "02:00:00:00:00:09", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -41},
		{SSID: "Multi-AP Network", BSSID: "00:11:22:33:44:55", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -60},
		{SSID: "Multi-AP Network", BSSID: "AA:BB:CC:DD:EE:FF", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -75},
		{SSID: "Multi-AP Network", BSSID: "11:22:33:44:55:66", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -88},
		{SSID: "CorpNet", BSSID: "02:00:00:00:00:0a", Capabilities: "[WPA2-EAP-CCMP][ESS]", Level: -69},
		{SSID: "", BSSID: "02:00:00:00:00:0b", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -50},
	}
	configs := []wifi.Configuration{
		{NetworkID: 0, SSID: `"HideYoKidsHideYoWiFi"`, KeyMgmt: wifi.KeyMgmtWPAPSK, PreSharedKey: `"hideyokids"`},
		{NetworkID: 1, SSID: `"GET off my LAN"`, KeyMgmt: wifi.KeyMgmtWPAPSK, PreSharedKey: `"offmylawn"`},
		{NetworkID: 2, SSID: `"Password is password"`, KeyMgmt: wifi.KeyMgmtWPAPSK, PreSharedKey: `"password"`},
		{NetworkID: 3, SSID: `"I See Dead Packets"`, KeyMgmt: wifi.KeyMgmtNone, WEPKey0: `"boo!!"`,
			Admin: &wifi.AdminStatus{Enabled: false, DisableReason: wifi.DisableReasonDHCPFailure}},
		{NetworkID: 4, SSID: `"Police Surveillance 2"`, KeyMgmt: wifi.KeyMgmtWPAPSK, PreSharedKey: `"wrongpass"`,
			Admin: &wifi.AdminStatus{Enabled: false, DisableReason: wifi.DisableReasonAuthenticationFailure}},
	}

	return &MockBackend{
		Scans:   scans,
		Configs: configs,
		Passwords: map[string]string{
			"HideYoKidsHideYoWiFi":  "hideyokids",
			"Password is password":  "password",
			"Police Surveillance 2": "fbi-surveillance-van",
		},
		WirelessEnabled: true,
		ActionSleep:     DefaultActionSleep,
		nextID:          len(configs),
	}, nil
}

func (m *MockBackend) ScanResults(shouldScan bool) ([]wifi.ScanResult, error) {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ScanError != nil {
		return nil, m.ScanError
	}
	if !m.WirelessEnabled {
		return nil, wifi.ErrWirelessDisabled
	}
	// For mock, we can re-randomize strengths on each scan
	if shouldScan {
		m.ScanCount++
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := range m.Scans {
			m.Scans[i].Level = -30 - r.Intn(65)
		}
	}
	return append([]wifi.ScanResult(nil), m.Scans...), nil
}

func (m *MockBackend) ConfiguredNetworks() ([]wifi.Configuration, error) {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConfiguredError != nil {
		return nil, m.ConfiguredError
	}
	return append([]wifi.Configuration(nil), m.Configs...), nil
}

func (m *MockBackend) ConnectionInfo() (*wifi.ConnectionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConnectionInfoError != nil {
		return nil, m.ConnectionInfoError
	}
	if m.Connection == nil {
		return nil, nil
	}
	info := *m.Connection
	return &info, nil
}

// AddNetwork saves cfg, replacing any configuration with the same SSID
// unless KeepReplaced is set.
func (m *MockBackend) AddNetwork(cfg wifi.Configuration) (int, error) {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AddNetworkError != nil {
		return wifi.InvalidNetworkID, m.AddNetworkError
	}
	if cfg.SSID == "" {
		return wifi.InvalidNetworkID, fmt.Errorf("empty ssid: %w", wifi.ErrOperationFailed)
	}

	kept := m.Configs
	if !m.KeepReplaced {
		kept = m.Configs[:0]
		for _, c := range m.Configs {
			if wifi.Unquote(c.SSID) != wifi.Unquote(cfg.SSID) {
				kept = append(kept, c)
			}
		}
	}
	cfg.NetworkID = m.nextID
	cfg.Admin = nil
	m.nextID++
	m.Configs = append(kept, cfg)
	m.emit(wifi.EventConfiguredNetworks)
	return cfg.NetworkID, nil
}

// EnableNetwork connects to a saved network. A wrong password leaves the
// radio disconnected and reports an auth failure.
func (m *MockBackend) EnableNetwork(networkID int) error {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EnableNetworkError != nil {
		return m.EnableNetworkError
	}
	if !m.WirelessEnabled {
		return wifi.ErrWirelessDisabled
	}
	cfg, ok := m.find(networkID)
	if !ok {
		return fmt.Errorf("cannot enable unknown network %d: %w", networkID, wifi.ErrNotFound)
	}

	ssid := wifi.Unquote(cfg.SSID)
	info := &wifi.ConnectionInfo{
		NetworkID:  networkID,
		SSID:       cfg.SSID,
		BSSID:      m.bssid(ssid),
		State:      wifi.DetailedStateConnected,
		Validation: wifi.ValidationPassed,
	}
	if want, ok := m.Passwords[ssid]; ok && want != wifi.Unquote(cfg.PreSharedKey) && want != wifi.Unquote(cfg.WEPKey0) {
		info.State = wifi.DetailedStateAuthenticating
		m.Connection = info
		m.emit(wifi.EventAuthFailure)
		return nil
	}
	m.Connection = info
	m.emit(wifi.EventNetworkState)
	return nil
}

func (m *MockBackend) RemoveNetwork(networkID int) error {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveNetworkError != nil {
		return m.RemoveNetworkError
	}
	if _, ok := m.find(networkID); !ok {
		return fmt.Errorf("network not found: %d: %w", networkID, wifi.ErrNotFound)
	}

	kept := m.Configs[:0]
	for _, c := range m.Configs {
		if c.NetworkID != networkID {
			kept = append(kept, c)
		}
	}
	m.Configs = kept
	if m.Connection != nil && m.Connection.NetworkID == networkID {
		m.Connection = nil
		m.emit(wifi.EventNetworkState)
	}
	m.emit(wifi.EventConfiguredNetworks)
	return nil
}

func (m *MockBackend) IsWirelessEnabled() (bool, error) {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsWirelessEnabledError != nil {
		return false, m.IsWirelessEnabledError
	}
	return m.WirelessEnabled, nil
}

func (m *MockBackend) SetWireless(enabled bool) error {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetWirelessError != nil {
		return m.SetWirelessError
	}
	m.WirelessEnabled = enabled
	if !enabled {
		m.Connection = nil
	}
	m.emit(wifi.EventCapabilities)
	return nil
}

// Watch delivers events produced by the mock until ctx is done.
func (m *MockBackend) Watch(ctx context.Context, events chan<- wifi.Event) error {
	m.mu.Lock()
	if m.watchers == nil {
		m.watchers = make(map[chan<- wifi.Event]struct{})
	}
	m.watchers[events] = struct{}{}
	m.mu.Unlock()

	<-ctx.Done()

	m.mu.Lock()
	delete(m.watchers, events)
	m.mu.Unlock()
	return nil
}

// Emit sends an event to every watcher.
func (m *MockBackend) Emit(kind wifi.EventKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emit(kind)
}

// SetConnection replaces the live connection and notifies watchers.
func (m *MockBackend) SetConnection(info *wifi.ConnectionInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connection = info
	m.emit(wifi.EventNetworkState)
}

// emit must be called with mu held. Slow watchers miss events.
func (m *MockBackend) emit(kind wifi.EventKind) {
	for ch := range m.watchers {
		select {
		case ch <- wifi.Event{Kind: kind}:
		default:
		}
	}
}

func (m *MockBackend) find(networkID int) (wifi.Configuration, bool) {
	for _, c := range m.Configs {
		if c.NetworkID == networkID {
			return c, true
		}
	}
	return wifi.Configuration{}, false
}

func (m *MockBackend) bssid(ssid string) string {
	for _, s := range m.Scans {
		if s.SSID == ssid {
			return s.BSSID
		}
	}
	return ""
}
