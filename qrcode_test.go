package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifilist/wifi"
)

func TestEscapeWifiString(t *testing.T) {
	tests := map[string]string{
		"plain":      "plain",
		`a;b`:        `a\;b`,
		`a,b:c`:      `a\,b\:c`,
		`say "hi"`:   `say \"hi\"`,
		`back\slash`: `back\\slash`,
	}
	for in, want := range tests {
		assert.Equal(t, want, EscapeWifiString(in), in)
	}
}

func TestWifiPayload(t *testing.T) {
	tr, _ := newTestTracker(t)
	snap, err := tr.Refresh(false)
	require.NoError(t, err)

	tests := []struct {
		ssid     string
		password string
		want     string
		err      error
	}{
		{ssid: "HideYoKidsHideYoWiFi", want: "WIFI:T:WPA;S:HideYoKidsHideYoWiFi;P:hideyokids;;"},
		{ssid: "Unencrypted_Honeypot", want: "WIFI:T:nopass;S:Unencrypted_Honeypot;;"},
		{ssid: "Dunder MiffLAN", password: "dundies!", want: "WIFI:T:WPA;S:Dunder MiffLAN;P:dundies!;;"},
		{ssid: "NeverGonnaGiveYouIP", password: "rick1", want: "WIFI:T:WEP;S:NeverGonnaGiveYouIP;P:rick1;;"},
		{ssid: "Dunder MiffLAN", err: wifi.ErrInvalidCredentialFormat},
		{ssid: "CorpNet", err: wifi.ErrNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.ssid, func(t *testing.T) {
			ap, ok := snap.Find(tt.ssid)
			require.True(t, ok)
			got, err := wifiPayload(ap, tt.password)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWifiPayloadHiddenSecret(t *testing.T) {
	ap := wifi.AccessPoint{
		SSID:      "Cafe; Bar",
		Security:  wifi.SecurityPSK,
		NetworkID: 7,
		Config:    &wifi.Configuration{NetworkID: 7, SSID: `"Cafe; Bar"`, KeyMgmt: wifi.KeyMgmtWPAPSK, PreSharedKey: "*"},
	}
	_, err := wifiPayload(ap, "")
	assert.Error(t, err)

	got, err := wifiPayload(ap, "espresso")
	require.NoError(t, err)
	assert.Equal(t, `WIFI:T:WPA;S:Cafe\; Bar;P:espresso;;`, got)
}

func TestRunShare(t *testing.T) {
	tr, _ := newTestTracker(t)
	var buf bytes.Buffer
	require.NoError(t, runShare(&buf, "HideYoKidsHideYoWiFi", "", tr))
	assert.NotEmpty(t, buf.String())

	assert.ErrorIs(t, runShare(&buf, "Nope", "", tr), wifi.ErrNotFound)
}
