package wifi

import "strings"

// Security is the security kind of a network.
type Security int

const (
	SecurityNone Security = iota
	SecurityWEP
	SecurityPSK
	SecurityEAP
)

func (s Security) String() string {
	switch s {
	case SecurityWEP:
		return "WEP"
	case SecurityPSK:
		return "PSK"
	case SecurityEAP:
		return "EAP"
	}
	return "NONE"
}

// PSKType narrows down SecurityPSK.
type PSKType int

const (
	PSKUnknown PSKType = iota
	PSKWPA
	PSKWPA2
	PSKWPAWPA2
)

// Key identifies a logical network.
type Key struct {
	SSID     string
	Security Security
}

// AccessPoint is one logical network merged from the scan, configuration and
// live connection feeds.
type AccessPoint struct {
	SSID     string
	BSSID    string
	Security Security
	PSKType  PSKType

	// RSSI is only meaningful when InRange is set.
	RSSI    int
	InRange bool

	NetworkID  int
	Config     *Configuration
	Connection *ConnectionInfo

	RequiresCredentials bool
	// PendingPassword is supplied by the caller before connecting. It is
	// never persisted.
	PendingPassword string

	credentials credentialState
}

// NewAccessPoint builds an access point from a scan result.
func NewAccessPoint(r ScanResult) *AccessPoint {
	ap := &AccessPoint{
		SSID:      r.SSID,
		BSSID:     r.BSSID,
		Security:  securityFromCapabilities(r.Capabilities),
		RSSI:      r.Level,
		InRange:   true,
		NetworkID: InvalidNetworkID,
	}
	if ap.Security == SecurityPSK {
		ap.PSKType = pskTypeFromCapabilities(r.Capabilities)
	}
	ap.RequiresCredentials = ap.Security != SecurityNone
	return ap
}

// NewAccessPointFromConfig builds an access point from a persisted
// configuration. Its signal strength is unknown.
func NewAccessPointFromConfig(cfg Configuration) *AccessPoint {
	c := cfg
	ap := &AccessPoint{
		SSID:      Unquote(cfg.SSID),
		BSSID:     cfg.BSSID,
		Security:  securityFromConfig(cfg),
		NetworkID: cfg.NetworkID,
		Config:    &c,
	}
	ap.RequiresCredentials = ap.Security != SecurityNone
	return ap
}

func securityFromCapabilities(caps string) Security {
	switch {
	case strings.Contains(caps, "WEP"):
		return SecurityWEP
	case strings.Contains(caps, "PSK"):
		return SecurityPSK
	case strings.Contains(caps, "EAP"):
		return SecurityEAP
	}
	return SecurityNone
}

func pskTypeFromCapabilities(caps string) PSKType {
	wpa := strings.Contains(caps, "WPA-PSK")
	wpa2 := strings.Contains(caps, "WPA2-PSK")
	switch {
	case wpa && wpa2:
		return PSKWPAWPA2
	case wpa2:
		return PSKWPA2
	case wpa:
		return PSKWPA
	}
	return PSKUnknown
}

func securityFromConfig(cfg Configuration) Security {
	if cfg.KeyMgmt.Has(KeyMgmtWPAPSK) {
		return SecurityPSK
	}
	if cfg.KeyMgmt.Has(KeyMgmtWPAEAP) || cfg.KeyMgmt.Has(KeyMgmtIEEE8021X) {
		return SecurityEAP
	}
	if cfg.WEPKey0 != "" {
		return SecurityWEP
	}
	return SecurityNone
}

// Unquote strips one pair of surrounding double quotes.
func Unquote(s string) string {
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// Quote wraps s in double quotes.
func Quote(s string) string {
	return `"` + s + `"`
}

// Key returns the identity of the access point.
func (ap AccessPoint) Key() Key {
	return Key{SSID: ap.SSID, Security: ap.Security}
}

// Saved reports whether a persisted configuration is attached.
func (ap AccessPoint) Saved() bool {
	return ap.NetworkID != InvalidNetworkID
}

// Active reports whether this access point holds the live connection and
// the connection is meaningful: either the network is saved or the radio is
// not simply disconnected from it.
func (ap AccessPoint) Active() bool {
	if ap.Connection == nil {
		return false
	}
	return ap.Saved() || ap.Connection.State.State() != StateDisconnected
}

// Connected reports whether this saved access point is fully connected.
func (ap AccessPoint) Connected() bool {
	return ap.Saved() && ap.Connection != nil && ap.Connection.State.State() == StateConnected
}

// CredentialRejected reports whether the last authentication attempt with
// this network's credentials failed and no connection has succeeded since.
func (ap AccessPoint) CredentialRejected() bool {
	return ap.credentials == credentialsRejected
}

// NeedsPassword reports whether connecting requires asking for a password.
func (ap AccessPoint) NeedsPassword() bool {
	return ap.RequiresCredentials && (!ap.Saved() || ap.CredentialRejected())
}

// SecurityString describes the security kind, including the PSK flavour.
func (ap AccessPoint) SecurityString() string {
	if ap.Security == SecurityPSK {
		switch ap.PSKType {
		case PSKWPA:
			return "WPA"
		case PSKWPA2:
			return "WPA2"
		case PSKWPAWPA2:
			return "WPA/WPA2"
		}
	}
	return ap.Security.String()
}

// describedBy reports whether cfg is a profile for this access point's
// SSID and security.
func (ap AccessPoint) describedBy(cfg Configuration) bool {
	return ap.SSID == Unquote(cfg.SSID) && ap.Security == securityFromConfig(cfg)
}

// matchesConfig is describedBy restricted to access points without a
// configuration of their own.
func (ap AccessPoint) matchesConfig(cfg Configuration) bool {
	return ap.Config == nil && ap.describedBy(cfg)
}

// matchesConnection decides whether the live connection belongs to this
// access point.
func (ap AccessPoint) matchesConnection(live LiveConnection) bool {
	if ap.Saved() {
		return ap.NetworkID == live.Info.NetworkID
	}
	if live.Config != nil {
		return ap.matchesConfig(*live.Config)
	}
	return ap.SSID == Unquote(live.Info.SSID)
}
