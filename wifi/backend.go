package wifi

import "context"

// InvalidNetworkID marks a network that has no persisted configuration.
const InvalidNetworkID = -1

// ScanResult is a single radio observed during a scan.
type ScanResult struct {
	SSID  string
	BSSID string
	// Capabilities uses the bracketed wpa_supplicant notation, for example
	// "[WPA2-PSK-CCMP][ESS]".
	Capabilities string
	Level        int // dBm
}

// KeyMgmt is a set of key management schemes allowed by a configuration.
type KeyMgmt uint8

const (
	KeyMgmtNone KeyMgmt = 1 << iota
	KeyMgmtWPAPSK
	KeyMgmtWPAEAP
	KeyMgmtIEEE8021X
)

// Has reports whether all of the bits in f are set.
func (k KeyMgmt) Has(f KeyMgmt) bool {
	return k&f == f
}

// DisableReason explains why the OS stopped selecting a saved network.
type DisableReason int

const (
	DisableReasonNone DisableReason = iota
	DisableReasonBadLink
	DisableReasonAssociationRejection
	DisableReasonAuthenticationFailure
	DisableReasonDHCPFailure
	DisableReasonDNSFailure
)

// AdminStatus is the network selection status reported for a configuration.
type AdminStatus struct {
	Enabled       bool
	DisableReason DisableReason
}

// Configuration is a network profile persisted by the OS.
type Configuration struct {
	NetworkID int
	// SSID may be wrapped in double quotes, as the OS stores it.
	SSID         string
	BSSID        string
	KeyMgmt      KeyMgmt
	WEPKey0      string
	PreSharedKey string
	// Admin is nil when the backend cannot report a selection status, which
	// is treated as enabled.
	Admin *AdminStatus
}

// Validation is the result of the OS checking the current network for
// internet access.
type Validation int

const (
	ValidationUnknown Validation = iota
	ValidationPassed
	ValidationFailed
)

// ConnectionInfo describes the network the radio is associated or
// associating with.
type ConnectionInfo struct {
	NetworkID  int
	SSID       string // as reported, possibly quoted
	BSSID      string
	State      DetailedState
	Validation Validation
}

// LiveConnection is the live-connection feed handed to the engine: the
// connection itself and, when known, the configuration it was made from.
type LiveConnection struct {
	Info   ConnectionInfo
	Config *Configuration
}

// Backend is the radio subsystem the engine's feeds come from.
type Backend interface {
	// ScanResults returns the latest scan results, requesting a fresh scan
	// first if shouldScan is true.
	ScanResults(shouldScan bool) ([]ScanResult, error)
	// ConfiguredNetworks returns the persisted network configurations.
	ConfiguredNetworks() ([]Configuration, error)
	// ConnectionInfo returns the live connection, or nil when the radio is
	// not associated with anything.
	ConnectionInfo() (*ConnectionInfo, error)
	// AddNetwork persists a configuration and returns its network id.
	AddNetwork(cfg Configuration) (int, error)
	// EnableNetwork asks the radio to associate with a saved network.
	EnableNetwork(networkID int) error
	// RemoveNetwork forgets a saved network.
	RemoveNetwork(networkID int) error

	// IsWirelessEnabled checks if the wireless radio is enabled.
	IsWirelessEnabled() (bool, error)
	// SetWireless enables or disables the wireless radio.
	SetWireless(enabled bool) error
}

// EventKind identifies which feed changed.
type EventKind int

const (
	EventScanResults EventKind = iota
	EventConfiguredNetworks
	EventNetworkState
	EventCapabilities
	EventAuthFailure
)

func (k EventKind) String() string {
	switch k {
	case EventScanResults:
		return "scan-results"
	case EventConfiguredNetworks:
		return "configured-networks"
	case EventNetworkState:
		return "network-state"
	case EventCapabilities:
		return "capabilities"
	case EventAuthFailure:
		return "auth-failure"
	}
	return "unknown"
}

// Event notifies that a feed changed. Consumers re-read the feed from the
// Backend rather than trusting a payload.
type Event struct {
	Kind EventKind
}

// Watcher is implemented by backends that can push feed changes.
type Watcher interface {
	// Watch sends events until ctx is done or the source fails.
	Watch(ctx context.Context, events chan<- Event) error
}
