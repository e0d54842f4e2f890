//go:build linux

package networkmanager

import (
	"fmt"
	"log/slog"
	"sort"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/shazow/wifilist/wifi"
)

// Backend implements wifi.Backend using D-Bus to communicate with NetworkManager.
type Backend struct {
	NM       gonetworkmanager.NetworkManager
	Settings gonetworkmanager.Settings

	logger *slog.Logger
	device gonetworkmanager.DeviceWireless
}

// New creates a new networkmanager.Backend.
func New(logger *slog.Logger) (wifi.Backend, error) {
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager client: %w", wifi.ErrNotAvailable)
	}

	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", wifi.ErrOperationFailed)
	}

	b := &Backend{
		NM:       nm,
		Settings: settings,
		logger:   logger,
	}
	// NewNetworkManager succeeds even when the daemon is not running.
	if _, err := b.IsWirelessEnabled(); err != nil {
		return nil, fmt.Errorf("network manager is not responding: %w", wifi.ErrNotAvailable)
	}
	return b, nil
}

// getWirelessDevice returns the first wireless device, caching it for
// subsequent calls.
func (b *Backend) getWirelessDevice() (gonetworkmanager.DeviceWireless, error) {
	if b.device != nil {
		return b.device, nil
	}
	devices, err := b.NM.GetDevices()
	if err != nil {
		return nil, err
	}
	for _, device := range devices {
		if dev, ok := device.(gonetworkmanager.DeviceWireless); ok {
			b.device = dev
			return dev, nil
		}
	}
	return nil, fmt.Errorf("no wireless device found: %w", wifi.ErrNotFound)
}

// ScanResults returns one record per access point the device can see.
func (b *Backend) ScanResults(shouldScan bool) ([]wifi.ScanResult, error) {
	enabled, err := b.IsWirelessEnabled()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, wifi.ErrWirelessDisabled
	}

	device, err := b.getWirelessDevice()
	if err != nil {
		return nil, err
	}
	if shouldScan {
		if err := device.RequestScan(); err != nil {
			// NetworkManager refuses scans while one is running or right
			// after one finished. The cached list is still useful.
			b.logger.Debug("scan request rejected", "error", err)
		}
	}

	accessPoints, err := device.GetAccessPoints()
	if err != nil {
		return nil, fmt.Errorf("failed to list access points: %w", err)
	}

	var results []wifi.ScanResult
	for _, ap := range accessPoints {
		ssid, err := ap.GetPropertySSID()
		if err != nil {
			continue
		}
		strength, _ := ap.GetPropertyStrength()
		flags, _ := ap.GetPropertyFlags()
		wpaFlags, _ := ap.GetPropertyWPAFlags()
		rsnFlags, _ := ap.GetPropertyRSNFlags()
		bssid, _ := ap.GetPropertyHWAddress()
		results = append(results, wifi.ScanResult{
			SSID:         ssid,
			BSSID:        bssid,
			Capabilities: capabilities(uint32(flags), uint32(wpaFlags), uint32(rsnFlags)),
			Level:        levelFromStrength(strength),
		})
	}
	// Strongest first so the engine keeps the best BSSID per network.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Level > results[j].Level
	})
	return results, nil
}

func (b *Backend) wirelessConnections() ([]gonetworkmanager.Connection, error) {
	connections, err := b.Settings.ListConnections()
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	var out []gonetworkmanager.Connection
	for _, c := range connections {
		s, err := c.GetSettings()
		if err != nil {
			b.logger.Debug("skipping connection without settings", "path", c.GetPath(), "error", err)
			continue
		}
		if t, _ := s["connection"]["type"].(string); t == wirelessType {
			out = append(out, c)
		}
	}
	return out, nil
}

// ConfiguredNetworks returns the saved wireless connection profiles.
func (b *Backend) ConfiguredNetworks() ([]wifi.Configuration, error) {
	connections, err := b.wirelessConnections()
	if err != nil {
		return nil, err
	}
	var configs []wifi.Configuration
	for _, c := range connections {
		id, err := networkID(c.GetPath())
		if err != nil {
			b.logger.Debug("skipping connection", "path", c.GetPath(), "error", err)
			continue
		}
		s, err := c.GetSettings()
		if err != nil {
			b.logger.Debug("skipping connection without settings", "path", c.GetPath(), "error", err)
			continue
		}
		cfg, ok := configFromSettings(id, s)
		if !ok {
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// ConnectionInfo describes the wireless device's current connection.
func (b *Backend) ConnectionInfo() (*wifi.ConnectionInfo, error) {
	device, err := b.getWirelessDevice()
	if err != nil {
		return nil, err
	}
	state, err := device.GetPropertyState()
	if err != nil {
		return nil, fmt.Errorf("failed to read device state: %w", err)
	}
	detailed := detailedState(uint32(state))
	if detailed == wifi.DetailedStateIdle || detailed == wifi.DetailedStateDisconnected {
		return nil, nil
	}

	info := &wifi.ConnectionInfo{
		NetworkID: wifi.InvalidNetworkID,
		State:     detailed,
	}

	active, err := b.activeWirelessConnection()
	if err != nil {
		return nil, err
	}
	if active != nil {
		if conn, err := active.GetPropertyConnection(); err == nil {
			if id, err := networkID(conn.GetPath()); err == nil {
				info.NetworkID = id
			}
			if s, err := conn.GetSettings(); err == nil {
				if ssid, ok := s[wirelessType]["ssid"].([]byte); ok {
					info.SSID = wifi.Quote(string(ssid))
				}
			}
		}
	}
	if ap, err := device.GetPropertyActiveAccessPoint(); err == nil && ap != nil {
		info.BSSID, _ = ap.GetPropertyHWAddress()
		if info.SSID == "" {
			if ssid, err := ap.GetPropertySSID(); err == nil {
				info.SSID = wifi.Quote(ssid)
			}
		}
	}
	if detailed == wifi.DetailedStateConnected {
		info.Validation = b.validation()
	}
	return info, nil
}

func (b *Backend) activeWirelessConnection() (gonetworkmanager.ActiveConnection, error) {
	activeConnections, err := b.NM.GetPropertyActiveConnections()
	if err != nil {
		return nil, fmt.Errorf("failed to list active connections: %w", err)
	}
	for _, active := range activeConnections {
		typ, err := active.GetPropertyType()
		if err != nil {
			continue
		}
		if typ == wirelessType {
			return active, nil
		}
	}
	return nil, nil
}

// validation reads the global connectivity check result.
func (b *Backend) validation() wifi.Validation {
	conn, err := dbus.SystemBus()
	if err != nil {
		return wifi.ValidationUnknown
	}
	v, err := conn.Object(nmDest, nmPath).GetProperty(nmIface + ".Connectivity")
	if err != nil {
		b.logger.Debug("failed to read connectivity", "error", err)
		return wifi.ValidationUnknown
	}
	c, _ := v.Value().(uint32)
	return validationFromConnectivity(c)
}

// AddNetwork creates a connection profile without activating it.
func (b *Backend) AddNetwork(cfg wifi.Configuration) (int, error) {
	device, err := b.getWirelessDevice()
	if err != nil {
		return wifi.InvalidNetworkID, err
	}
	iface, _ := device.GetPropertyInterface()

	conn, err := b.Settings.AddConnection(settingsFromConfig(cfg, iface, uuid.New().String()))
	if err != nil {
		return wifi.InvalidNetworkID, fmt.Errorf("failed to add connection: %w", err)
	}
	id, err := networkID(conn.GetPath())
	if err != nil {
		return wifi.InvalidNetworkID, err
	}
	b.logger.Debug("added connection", "ssid", wifi.Unquote(cfg.SSID), "network_id", id)
	return id, nil
}

func (b *Backend) connectionByID(id int) (gonetworkmanager.Connection, error) {
	connections, err := b.wirelessConnections()
	if err != nil {
		return nil, err
	}
	for _, c := range connections {
		if cid, err := networkID(c.GetPath()); err == nil && cid == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("connection %d: %w", id, wifi.ErrNotFound)
}

// EnableNetwork activates a saved profile on the strongest matching access
// point. It returns once NetworkManager accepted the request; progress is
// reported through Watch.
func (b *Backend) EnableNetwork(id int) error {
	conn, err := b.connectionByID(id)
	if err != nil {
		return err
	}
	s, err := conn.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", wifi.ErrOperationFailed)
	}
	ssidBytes, _ := s[wirelessType]["ssid"].([]byte)
	ssid := string(ssidBytes)

	device, err := b.getWirelessDevice()
	if err != nil {
		return err
	}
	accessPoints, err := device.GetAccessPoints()
	if err != nil {
		return err
	}
	var best gonetworkmanager.AccessPoint
	var bestStrength uint8
	for _, ap := range accessPoints {
		apSSID, err := ap.GetPropertySSID()
		if err != nil || apSSID != ssid {
			continue
		}
		strength, _ := ap.GetPropertyStrength()
		if best == nil || strength > bestStrength {
			best, bestStrength = ap, strength
		}
	}
	if best == nil {
		return fmt.Errorf("access point not found for %s: %w", ssid, wifi.ErrNotFound)
	}

	if _, err := b.NM.ActivateWirelessConnection(conn, device, best); err != nil {
		return fmt.Errorf("failed to activate %s: %w", ssid, err)
	}
	return nil
}

// RemoveNetwork deletes a saved profile.
func (b *Backend) RemoveNetwork(id int) error {
	conn, err := b.connectionByID(id)
	if err != nil {
		return err
	}
	return conn.Delete()
}

func (b *Backend) IsWirelessEnabled() (bool, error) {
	return b.NM.GetPropertyWirelessEnabled()
}

// SetWireless enables or disables the wireless radio.
func (b *Backend) SetWireless(enabled bool) error {
	// Not all versions of NetworkManager support subscribing to signals, so we
	// can't rely on it. We'll just have to assume the change was successful.
	// See: https://github.com/Wifx/gonetworkmanager/pull/14
	return b.NM.SetPropertyWirelessEnabled(enabled)
}
