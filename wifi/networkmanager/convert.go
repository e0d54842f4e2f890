package networkmanager

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifilist/wifi"
)

const (
	wirelessType     = "802-11-wireless"
	wirelessSecurity = "802-11-wireless-security"
)

// Access point flag values from NM80211ApFlags and NM80211ApSecurityFlags.
const (
	apFlagPrivacy = 0x1

	apSecPairWEP40  = 0x1
	apSecPairWEP104 = 0x2
	apSecPairTKIP   = 0x4
	apSecPairCCMP   = 0x8
	apSecKeyMgmtPSK = 0x100
	apSecKeyMgmtEAP = 0x200
	apSecKeyMgmtSAE = 0x400
)

// capabilities renders access point flags in the bracketed form the engine
// parses, for example "[WPA2-PSK-CCMP][ESS]".
func capabilities(flags, wpaFlags, rsnFlags uint32) string {
	var sb strings.Builder
	write := func(proto string, sec uint32) {
		if sec == 0 {
			return
		}
		var mgmt []string
		if sec&(apSecKeyMgmtPSK|apSecKeyMgmtSAE) != 0 {
			mgmt = append(mgmt, "PSK")
		}
		if sec&apSecKeyMgmtEAP != 0 {
			mgmt = append(mgmt, "EAP")
		}
		cipher := ""
		switch {
		case sec&apSecPairCCMP != 0:
			cipher = "-CCMP"
		case sec&apSecPairTKIP != 0:
			cipher = "-TKIP"
		}
		for _, m := range mgmt {
			fmt.Fprintf(&sb, "[%s-%s%s]", proto, m, cipher)
		}
	}
	write("WPA", wpaFlags)
	write("WPA2", rsnFlags)
	if sb.Len() == 0 && (flags&apFlagPrivacy != 0 || (wpaFlags|rsnFlags)&(apSecPairWEP40|apSecPairWEP104) != 0) {
		sb.WriteString("[WEP]")
	}
	sb.WriteString("[ESS]")
	return sb.String()
}

// levelFromStrength converts NetworkManager's 0-100 quality back to dBm.
func levelFromStrength(strength uint8) int {
	return int(strength)/2 - 100
}

// networkID parses the trailing number of a settings connection path, such as
// /org/freedesktop/NetworkManager/Settings/12.
func networkID(p dbus.ObjectPath) (int, error) {
	id, err := strconv.Atoi(path.Base(string(p)))
	if err != nil || id < 0 {
		return wifi.InvalidNetworkID, fmt.Errorf("unexpected connection path %q: %w", p, wifi.ErrOperationFailed)
	}
	return id, nil
}

// NMDeviceState values.
const (
	deviceStateUnavailable  = 20
	deviceStateDisconnected = 30
	deviceStatePrepare      = 40
	deviceStateConfig       = 50
	deviceStateNeedAuth     = 60
	deviceStateIPConfig     = 70
	deviceStateIPCheck      = 80
	deviceStateSecondaries  = 90
	deviceStateActivated    = 100
	deviceStateDeactivating = 110
	deviceStateFailed       = 120
)

func detailedState(state uint32) wifi.DetailedState {
	switch state {
	case deviceStateUnavailable, deviceStateDisconnected:
		return wifi.DetailedStateDisconnected
	case deviceStatePrepare, deviceStateConfig:
		return wifi.DetailedStateConnecting
	case deviceStateNeedAuth:
		return wifi.DetailedStateAuthenticating
	case deviceStateIPConfig, deviceStateSecondaries:
		return wifi.DetailedStateObtainingIPAddr
	case deviceStateIPCheck:
		return wifi.DetailedStateCaptivePortalCheck
	case deviceStateActivated:
		return wifi.DetailedStateConnected
	case deviceStateDeactivating:
		return wifi.DetailedStateDisconnecting
	case deviceStateFailed:
		return wifi.DetailedStateFailed
	}
	return wifi.DetailedStateIdle
}

// NMConnectivityState values.
const (
	connectivityPortal  = 2
	connectivityLimited = 3
	connectivityFull    = 4
)

func validationFromConnectivity(c uint32) wifi.Validation {
	switch c {
	case connectivityFull:
		return wifi.ValidationPassed
	case connectivityPortal, connectivityLimited:
		return wifi.ValidationFailed
	}
	return wifi.ValidationUnknown
}

// configFromSettings converts a connection profile. Secrets are not part of
// the settings, so a WEP profile gets a placeholder key.
func configFromSettings(id int, s map[string]map[string]interface{}) (wifi.Configuration, bool) {
	ssid, ok := s[wirelessType]["ssid"].([]byte)
	if !ok || len(ssid) == 0 {
		return wifi.Configuration{}, false
	}
	cfg := wifi.Configuration{
		NetworkID: id,
		SSID:      wifi.Quote(string(ssid)),
		KeyMgmt:   wifi.KeyMgmtNone,
	}
	if bssid, ok := s[wirelessType]["bssid"].([]byte); ok && len(bssid) == 6 {
		cfg.BSSID = fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", bssid[0], bssid[1], bssid[2], bssid[3], bssid[4], bssid[5])
	}

	sec, ok := s[wirelessSecurity]
	if !ok {
		return cfg, true
	}
	switch mgmt, _ := sec["key-mgmt"].(string); mgmt {
	case "wpa-psk", "sae":
		cfg.KeyMgmt = wifi.KeyMgmtWPAPSK
	case "wpa-eap", "wpa-eap-suite-b-192":
		cfg.KeyMgmt = wifi.KeyMgmtWPAEAP
	case "ieee8021x":
		cfg.KeyMgmt = wifi.KeyMgmtIEEE8021X
	case "none":
		cfg.WEPKey0 = "*"
	}
	return cfg, true
}

// settingsFromConfig builds a new connection profile.
func settingsFromConfig(cfg wifi.Configuration, iface, id string) map[string]map[string]interface{} {
	ssid := wifi.Unquote(cfg.SSID)
	connection := map[string]map[string]interface{}{
		"connection": {
			"id":          ssid,
			"uuid":        id,
			"type":        wirelessType,
			"autoconnect": true,
		},
		wirelessType: {
			"mode": "infrastructure",
			"ssid": []byte(ssid),
		},
		"ipv4": {"method": "auto"},
		"ipv6": {"method": "auto"},
	}
	if iface != "" {
		connection["connection"]["interface-name"] = iface
	}

	switch {
	case cfg.KeyMgmt.Has(wifi.KeyMgmtWPAPSK):
		connection[wirelessType]["security"] = wirelessSecurity
		connection[wirelessSecurity] = map[string]interface{}{
			"key-mgmt": "wpa-psk",
			"psk":      wifi.Unquote(cfg.PreSharedKey),
		}
	case cfg.KeyMgmt.Has(wifi.KeyMgmtWPAEAP), cfg.KeyMgmt.Has(wifi.KeyMgmtIEEE8021X):
		connection[wirelessType]["security"] = wirelessSecurity
		connection[wirelessSecurity] = map[string]interface{}{
			"key-mgmt": "wpa-eap",
		}
	case cfg.WEPKey0 != "":
		connection[wirelessType]["security"] = wirelessSecurity
		connection[wirelessSecurity] = map[string]interface{}{
			"key-mgmt":     "none",
			"wep-key0":     wifi.Unquote(cfg.WEPKey0),
			"wep-key-type": uint32(1),
		}
	}
	return connection
}
