//go:build darwin

package darwin

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/shazow/wifilist/wifi"
)

// runWithOutput wraps exec.Command to capture stderr and wrap errors.
func runWithOutput(c *exec.Cmd) ([]byte, error) {
	var stderr strings.Builder
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		return out, fmt.Errorf("failed to run command: %s: %w: %s", c.String(), err, stderr.String())
	}
	return out, nil
}

// runOnly wraps exec.Command for commands where we don't care about stdout.
func runOnly(c *exec.Cmd) error {
	var stderr strings.Builder
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to run command: %s: %w: %s", c.String(), err, stderr.String())
	}
	return nil
}

// Backend implements the wifi.Backend interface for macOS.
type Backend struct {
	WifiInterface string
	logger        *slog.Logger

	mu sync.Mutex
	// seen remembers the capabilities of every SSID scanned so far.
	seen map[string]string
	// passwords holds secrets for networks added but not joined yet.
	passwords map[string]string
}

// New creates a new darwin.Backend.
func New(logger *slog.Logger) (wifi.Backend, error) {
	// Find the Wi-Fi interface name (e.g., en0)
	out, err := runWithOutput(exec.Command("networksetup", "-listallhardwareports"))
	if err != nil {
		logger.Debug("listing hardware ports failed", "error", err)
		return nil, fmt.Errorf("failed to list hardware ports: %w", wifi.ErrOperationFailed)
	}
	device, err := findWifiDevice(string(out))
	if err != nil {
		return nil, err
	}
	return &Backend{
		WifiInterface: device,
		logger:        logger,
		seen:          make(map[string]string),
		passwords:     make(map[string]string),
	}, nil
}

func (b *Backend) profile() (profile, error) {
	out, err := runWithOutput(exec.Command("system_profiler", "SPAirPortDataType"))
	if err != nil {
		b.logger.Debug("system_profiler failed", "error", err)
		return profile{}, fmt.Errorf("failed to scan for networks: %w", wifi.ErrOperationFailed)
	}
	p := parseSystemProfilerOutput(string(out))

	b.mu.Lock()
	for _, r := range p.results {
		b.seen[r.SSID] = r.Capabilities
	}
	b.mu.Unlock()
	return p, nil
}

// ScanResults lists nearby networks. system_profiler always scans, so
// shouldScan has no effect.
func (b *Backend) ScanResults(shouldScan bool) ([]wifi.ScanResult, error) {
	enabled, err := b.IsWirelessEnabled()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, wifi.ErrWirelessDisabled
	}
	p, err := b.profile()
	if err != nil {
		return nil, err
	}
	return p.results, nil
}

func (b *Backend) preferred() ([]string, error) {
	out, err := runWithOutput(exec.Command("networksetup", "-listpreferredwirelessnetworks", b.WifiInterface))
	if err != nil {
		return nil, fmt.Errorf("failed to list preferred networks: %w: %s", wifi.ErrOperationFailed, err)
	}
	return parsePreferredNetworks(string(out)), nil
}

// ConfiguredNetworks returns the preferred networks. A network id is its
// position in the preference list.
func (b *Backend) ConfiguredNetworks() ([]wifi.Configuration, error) {
	ssids, err := b.preferred()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	configs := make([]wifi.Configuration, 0, len(ssids))
	for i, ssid := range ssids {
		configs = append(configs, configuration(i, ssid, b.seen[ssid]))
	}
	return configs, nil
}

// ConnectionInfo reports the associated network. macOS offers no
// intermediate states or validation through networksetup.
func (b *Backend) ConnectionInfo() (*wifi.ConnectionInfo, error) {
	out, err := runWithOutput(exec.Command("networksetup", "-getairportnetwork", b.WifiInterface))
	if err != nil {
		return nil, err
	}
	ssid := parseCurrentNetwork(string(out))
	if ssid == "" {
		return nil, nil
	}
	info := &wifi.ConnectionInfo{
		NetworkID: wifi.InvalidNetworkID,
		SSID:      wifi.Quote(ssid),
		State:     wifi.DetailedStateConnected,
	}
	ssids, err := b.preferred()
	if err != nil {
		return nil, err
	}
	for i, s := range ssids {
		if s == ssid {
			info.NetworkID = i
			break
		}
	}
	return info, nil
}

// AddNetwork appends cfg to the preferred networks, replacing an existing
// entry with the same SSID.
func (b *Backend) AddNetwork(cfg wifi.Configuration) (int, error) {
	ssid := wifi.Unquote(cfg.SSID)
	ssids, err := b.preferred()
	if err != nil {
		return wifi.InvalidNetworkID, err
	}
	for _, s := range ssids {
		if s == ssid {
			if err := runOnly(exec.Command("networksetup", "-removepreferredwirelessnetwork", b.WifiInterface, ssid)); err != nil {
				return wifi.InvalidNetworkID, err
			}
			ssids, err = b.preferred()
			if err != nil {
				return wifi.InvalidNetworkID, err
			}
			break
		}
	}

	id := len(ssids)
	security, password := securityType(cfg)
	args := []string{"-addpreferredwirelessnetworkatindex", b.WifiInterface, ssid, strconv.Itoa(id), security}
	if password != "" {
		args = append(args, password)
	}
	if err := runOnly(exec.Command("networksetup", args...)); err != nil {
		return wifi.InvalidNetworkID, err
	}

	b.mu.Lock()
	if password != "" {
		b.passwords[ssid] = password
	} else {
		delete(b.passwords, ssid)
	}
	b.mu.Unlock()
	return id, nil
}

func (b *Backend) ssidFor(id int) (string, error) {
	ssids, err := b.preferred()
	if err != nil {
		return "", err
	}
	if id < 0 || id >= len(ssids) {
		return "", fmt.Errorf("no preferred network %d: %w", id, wifi.ErrNotFound)
	}
	return ssids[id], nil
}

// EnableNetwork joins a preferred network. Networks joined before use the
// password stored in the keychain.
func (b *Backend) EnableNetwork(id int) error {
	ssid, err := b.ssidFor(id)
	if err != nil {
		return err
	}
	args := []string{"-setairportnetwork", b.WifiInterface, ssid}
	b.mu.Lock()
	password, ok := b.passwords[ssid]
	delete(b.passwords, ssid)
	b.mu.Unlock()
	if ok {
		args = append(args, password)
	}
	return runOnly(exec.Command("networksetup", args...))
}

// RemoveNetwork removes a preferred network.
func (b *Backend) RemoveNetwork(id int) error {
	ssid, err := b.ssidFor(id)
	if err != nil {
		return err
	}
	return runOnly(exec.Command("networksetup", "-removepreferredwirelessnetwork", b.WifiInterface, ssid))
}

// IsWirelessEnabled checks if the wireless radio is enabled.
func (b *Backend) IsWirelessEnabled() (bool, error) {
	out, err := runWithOutput(exec.Command("networksetup", "-getairportpower", b.WifiInterface))
	if err != nil {
		return false, err
	}
	return strings.Contains(string(out), ": On"), nil
}

// SetWireless enables or disables the wireless radio.
func (b *Backend) SetWireless(enabled bool) error {
	state := "off"
	if enabled {
		state = "on"
	}
	return runOnly(exec.Command("networksetup", "-setairportpower", b.WifiInterface, state))
}
