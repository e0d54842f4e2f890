package darwin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifilist/wifi"
)

func TestFindWifiDevice(t *testing.T) {
	mockedOutput := `Hardware Port: Bluetooth PAN
Device: en8
Ethernet Address: a1:b2:c3:d4:e5:f7

Hardware Port: Wi-Fi
Device: en0
Ethernet Address: a1:b2:c3:d4:e5:f6

Hardware Port: Thunderbolt Bridge
Device: bridge0
Ethernet Address: a1:b2:c3:d4:e5:f8`

	device, err := findWifiDevice(mockedOutput)
	require.NoError(t, err)
	assert.Equal(t, "en0", device)

	_, err = findWifiDevice("Hardware Port: Thunderbolt Bridge\nDevice: bridge0")
	assert.ErrorIs(t, err, wifi.ErrNotFound)
}

func TestParseSystemProfilerOutput(t *testing.T) {
	mockedOutput := `Wi-Fi:

      Software Versions:
          CoreWLAN: 16.0 (1657)
      Interfaces:
        en0:
          Card Type: Wi-Fi
          Status: Connected
          Current Network Information:
            MyHomeNetwork:
              PHY Mode: 802.11ac
              BSSID: AA:BB:CC:00:11:22
              Channel: 36 (5GHz, 80MHz)
              Network Type: Infrastructure
              Security: WPA2 Personal
              Signal / Noise: -55 dBm / -95 dBm
              Transmit Rate: 866
          Other Local Wi-Fi Networks:
            MyHomeNetwork:
              PHY Mode: 802.11ac
              Security: WPA2 Personal
            NeighborWiFi:
              PHY Mode: 802.11n
              Channel: 6 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: WPA2 Personal
              Signal / Noise: -75 dBm / -90 dBm
            CorpWiFi:
              Security: WPA2 Enterprise
              Signal / Noise: -68 dBm / -90 dBm
            OpenCafe:
              PHY Mode: 802.11g
              Channel: 11 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: Open
        awdl0:
          MAC Address: 00:11:22:33:44:55
          Current Network Information:
            Ignored:
              Security: Open`

	p := parseSystemProfilerOutput(mockedOutput)
	assert.Equal(t, "MyHomeNetwork", p.current)
	assert.Equal(t, []wifi.ScanResult{
		{SSID: "MyHomeNetwork", BSSID: "aa:bb:cc:00:11:22", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -55},
		{SSID: "NeighborWiFi", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -75},
		{SSID: "CorpWiFi", Capabilities: "[WPA2-EAP-CCMP][ESS]", Level: -68},
		{SSID: "OpenCafe", Capabilities: "[ESS]", Level: noSignal},
	}, p.results)

	ap := wifi.NewAccessPoint(p.results[3])
	assert.Equal(t, 0, ap.SignalLevel(wifi.DefaultSignalLevels))
}

func TestCapabilities(t *testing.T) {
	tests := map[string]wifi.Security{
		"WPA2 Personal":     wifi.SecurityPSK,
		"WPA3 Personal":     wifi.SecurityPSK,
		"WPA/WPA2 Personal": wifi.SecurityPSK,
		"WPA2 Enterprise":   wifi.SecurityEAP,
		"WEP":               wifi.SecurityWEP,
		"Open":              wifi.SecurityNone,
		"":                  wifi.SecurityNone,
	}
	for in, want := range tests {
		ap := wifi.NewAccessPoint(wifi.ScanResult{SSID: "x", Capabilities: capabilities(in)})
		assert.Equal(t, want, ap.Security, in)
	}
}

func TestParsePreferredNetworks(t *testing.T) {
	out := "Preferred networks on en0:\n\tHome\n\tCafe Wi-Fi\n\n"
	assert.Equal(t, []string{"Home", "Cafe Wi-Fi"}, parsePreferredNetworks(out))
	assert.Empty(t, parsePreferredNetworks("Preferred networks on en0:\n"))
}

func TestParseCurrentNetwork(t *testing.T) {
	assert.Equal(t, "Home", parseCurrentNetwork("Current Wi-Fi Network: Home\n"))
	assert.Equal(t, "", parseCurrentNetwork("You are not associated with an AirPort network.\n"))
}

func TestConfigurationMatchesScan(t *testing.T) {
	for _, sec := range []string{"WPA2 Personal", "WPA2 Enterprise", "WEP", "Open"} {
		caps := capabilities(sec)
		scan := wifi.NewAccessPoint(wifi.ScanResult{SSID: "net", Capabilities: caps})
		saved := wifi.NewAccessPointFromConfig(configuration(2, "net", caps))
		assert.Equal(t, scan.Key(), saved.Key(), sec)
		assert.Equal(t, 2, saved.NetworkID)
	}

	// Never scanned: assume a personal network.
	saved := wifi.NewAccessPointFromConfig(configuration(0, "away", ""))
	assert.Equal(t, wifi.SecurityPSK, saved.Security)
}

func TestSecurityType(t *testing.T) {
	tests := []struct {
		cfg      wifi.Configuration
		security string
		password string
	}{
		{wifi.Configuration{KeyMgmt: wifi.KeyMgmtNone}, "OPEN", ""},
		{wifi.Configuration{KeyMgmt: wifi.KeyMgmtWPAPSK, PreSharedKey: `"hunter22"`}, "WPA2", "hunter22"},
		{wifi.Configuration{KeyMgmt: wifi.KeyMgmtNone, WEPKey0: "0123456789"}, "WEP", "0123456789"},
		{wifi.Configuration{KeyMgmt: wifi.KeyMgmtWPAEAP | wifi.KeyMgmtIEEE8021X}, "WPA2E", ""},
	}
	for _, tt := range tests {
		security, password := securityType(tt.cfg)
		assert.Equal(t, tt.security, security)
		assert.Equal(t, tt.password, password)
	}
}
