package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifilist/wifi"
	"github.com/shazow/wifilist/wifi/mock"
	"github.com/shazow/wifilist/wifi/tracker"
)

func newTestTracker(t *testing.T) (*tracker.Tracker, *mock.MockBackend) {
	t.Helper()
	b, err := mock.New()
	require.NoError(t, err)
	m := b.(*mock.MockBackend)
	m.ActionSleep = 0
	return tracker.New(m, tracker.WithMinScanInterval(0)), m
}

func TestRunList(t *testing.T) {
	tr, _ := newTestTracker(t)
	var buf bytes.Buffer

	// Scanning would shuffle the mock's signal levels.
	require.NoError(t, runList(&buf, false, false, tr))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for _, want := range []string{
		"HideYoKidsHideYoWiFi\t-58 dBm, WPA2, saved",
		"Unencrypted_Honeypot\t-64 dBm, open",
		"Dunder MiffLAN\t-80 dBm, WPA/WPA2",
		"Police Surveillance 2\t-77 dBm, WPA2, password-failure",
		"CorpNet\t-69 dBm, EAP",
		"Multi-AP Network\t-60 dBm, WPA2",
	} {
		assert.Contains(t, lines, want)
	}
	assert.NotContains(t, buf.String(), "GET off my LAN")
}

func TestRunListJSON(t *testing.T) {
	tr, _ := newTestTracker(t)
	var buf bytes.Buffer
	require.NoError(t, runList(&buf, true, false, tr))

	var out []accessPointJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.NotEmpty(t, out)

	var found bool
	for _, ap := range out {
		if ap.SSID != "HideYoKidsHideYoWiFi" {
			continue
		}
		found = true
		assert.True(t, ap.Saved)
		assert.False(t, ap.Active)
		assert.Equal(t, "WPA2", ap.Security)
		assert.Equal(t, "saved", ap.Status)
		require.NotNil(t, ap.RSSI)
		assert.Equal(t, -58, *ap.RSSI)
	}
	assert.True(t, found)
}

func TestRunShow(t *testing.T) {
	tr, _ := newTestTracker(t)
	var buf bytes.Buffer

	require.NoError(t, runShow(&buf, false, "Password is password", tr))
	output := buf.String()
	assert.Contains(t, output, "SSID: Password is password\n")
	assert.Contains(t, output, "Security: WPA2\n")
	assert.Contains(t, output, "Signal: -52 dBm")
	assert.Contains(t, output, "Saved: true\n")
	assert.Contains(t, output, "Status: Saved\n")

	buf.Reset()
	err := runShow(&buf, false, "NotFound", tr)
	assert.ErrorIs(t, err, wifi.ErrNotFound)
	assert.Empty(t, buf.String())
}

func TestRunConnect(t *testing.T) {
	tr, m := newTestTracker(t)
	var buf bytes.Buffer

	require.NoError(t, runConnect(&buf, "Unencrypted_Honeypot", "", tr))
	assert.Equal(t, "Unencrypted_Honeypot: Connected\n", buf.String())
	require.NotNil(t, m.Connection)
	assert.Equal(t, `"Unencrypted_Honeypot"`, m.Connection.SSID)

	buf.Reset()
	require.NoError(t, runConnect(&buf, "Password is password", "", tr))
	assert.Equal(t, "Password is password: Connected\n", buf.String())

	err := runConnect(&buf, "Dunder MiffLAN", "", tr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a password")

	err = runConnect(&buf, "Dunder MiffLAN", "short", tr)
	assert.ErrorIs(t, err, wifi.ErrInvalidCredentialFormat)
}

func TestRunForget(t *testing.T) {
	tr, m := newTestTracker(t)
	var buf bytes.Buffer

	require.NoError(t, runForget(&buf, "HideYoKidsHideYoWiFi", tr))
	assert.Equal(t, "Forgot HideYoKidsHideYoWiFi\n", buf.String())
	for _, c := range m.Configs {
		assert.NotEqual(t, `"HideYoKidsHideYoWiFi"`, c.SSID)
	}

	err := runForget(&buf, "Unencrypted_Honeypot", tr)
	assert.ErrorIs(t, err, wifi.ErrNotSaved)
}

func TestFormatAccessPoint(t *testing.T) {
	tests := []struct {
		ap   wifi.AccessPoint
		want string
	}{
		{wifi.AccessPoint{SSID: "a", RSSI: -40, InRange: true, NetworkID: wifi.InvalidNetworkID}, "-40 dBm, open"},
		{wifi.AccessPoint{SSID: "b", Security: wifi.SecurityWEP, NetworkID: 3}, "WEP, saved"},
		{wifi.AccessPoint{SSID: "c", Security: wifi.SecurityPSK, PSKType: wifi.PSKWPA, RSSI: -70, InRange: true, NetworkID: wifi.InvalidNetworkID}, "-70 dBm, WPA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAccessPoint(tt.ap), tt.ap.SSID)
	}
}
