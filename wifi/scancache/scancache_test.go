package scancache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shazow/wifilist/wifi"
)

func ssids(results []wifi.ScanResult) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.SSID)
	}
	return out
}

func TestMergeDisabled(t *testing.T) {
	c := New(0)
	in := []wifi.ScanResult{{SSID: "a", BSSID: "01"}}
	assert.Equal(t, in, c.Merge(in))
	assert.Empty(t, c.Merge(nil))
	assert.Zero(t, c.Len())
}

func TestMergeKeepsMissingResults(t *testing.T) {
	c := New(time.Minute)

	c.Merge([]wifi.ScanResult{
		{SSID: "old", BSSID: "01", Level: -60},
		{SSID: "both", BSSID: "02", Level: -80},
	})
	got := c.Merge([]wifi.ScanResult{
		{SSID: "new", BSSID: "03", Level: -50},
		{SSID: "both", BSSID: "02", Level: -40},
	})

	assert.Equal(t, []string{"new", "both", "old"}, ssids(got))
	assert.Equal(t, -40, got[1].Level, "newest reading wins")
	assert.Equal(t, 3, c.Len())

	c.Flush()
	assert.Zero(t, c.Len())
}

func TestMergeExpires(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Merge([]wifi.ScanResult{{SSID: "gone", BSSID: "01"}})
	time.Sleep(40 * time.Millisecond)

	got := c.Merge([]wifi.ScanResult{{SSID: "here", BSSID: "02"}})
	assert.Equal(t, []string{"here"}, ssids(got))
}

func TestMergeWithoutBSSID(t *testing.T) {
	c := New(time.Minute)
	got := c.Merge([]wifi.ScanResult{
		{SSID: "net", Capabilities: "[ESS]"},
		{SSID: "net", Capabilities: "[WPA2-PSK-CCMP]"},
	})
	assert.Len(t, got, 2)
}
