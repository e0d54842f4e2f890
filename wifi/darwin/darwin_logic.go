package darwin

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shazow/wifilist/wifi"
)

// noSignal is reported for networks listed without a signal reading.
const noSignal = -100

var (
	signalRe         = regexp.MustCompile(`Signal / Noise:\s*(-?\d+)\s*dBm`)
	securityRe       = regexp.MustCompile(`Security:\s*(.+)`)
	bssidRe          = regexp.MustCompile(`BSSID:\s*([0-9a-fA-F:]{17})`)
	currentNetworkRe = regexp.MustCompile(`Current Wi-Fi Network: (.+)`)
)

// profile is what system_profiler SPAirPortDataType reports for the Wi-Fi
// interface.
type profile struct {
	results []wifi.ScanResult
	// current is the SSID listed under "Current Network Information".
	current string
}

// parseSystemProfilerOutput parses the output of `system_profiler SPAirPortDataType`
// to extract visible Wi-Fi networks with their signal strength and security.
func parseSystemProfilerOutput(output string) profile {
	var p profile
	seen := make(map[string]int)

	inCurrent := false
	inOther := false
	var cur *wifi.ScanResult

	flush := func() {
		if cur == nil || cur.SSID == "" {
			return
		}
		if i, ok := seen[cur.SSID]; ok {
			// The current network is listed twice. Keep the entry that has
			// a signal reading.
			if p.results[i].Level == 0 {
				p.results[i].Level = cur.Level
			}
			return
		}
		seen[cur.SSID] = len(p.results)
		p.results = append(p.results, *cur)
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "Current Network Information:") {
			inCurrent, inOther = true, false
			continue
		}
		if strings.Contains(line, "Other Local Wi-Fi Networks:") {
			inCurrent, inOther = false, true
			continue
		}
		// Stop parsing if we hit another interface (like awdl0)
		if strings.HasPrefix(strings.TrimSpace(line), "awdl") {
			break
		}
		if !inCurrent && !inOther {
			continue
		}

		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " "))

		// Network names sit at a 12-space indent under the section headers.
		if indent == 12 && strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, ": ") {
			flush()
			ssid := strings.TrimSuffix(trimmed, ":")
			cur = &wifi.ScanResult{SSID: ssid, Capabilities: capabilities("")}
			if inCurrent {
				p.current = ssid
			}
			continue
		}

		if cur == nil {
			continue
		}
		if m := signalRe.FindStringSubmatch(line); len(m) > 1 {
			cur.Level, _ = strconv.Atoi(m[1])
		}
		if m := securityRe.FindStringSubmatch(line); len(m) > 1 {
			cur.Capabilities = capabilities(strings.TrimSpace(m[1]))
		}
		if m := bssidRe.FindStringSubmatch(line); len(m) > 1 {
			cur.BSSID = strings.ToLower(m[1])
		}
	}
	flush()

	// Networks without a reading are out of range as far as ranking goes.
	for i := range p.results {
		if p.results[i].Level == 0 {
			p.results[i].Level = noSignal
		}
	}
	return p
}

// capabilities renders a system_profiler security description, such as
// "WPA2 Personal", in bracketed notation.
func capabilities(security string) string {
	s := strings.ToLower(security)
	switch {
	case strings.Contains(s, "enterprise"):
		return "[WPA2-EAP-CCMP][ESS]"
	case strings.Contains(s, "wpa"):
		return "[WPA2-PSK-CCMP][ESS]"
	case strings.Contains(s, "wep"):
		return "[WEP][ESS]"
	}
	return "[ESS]"
}

// parsePreferredNetworks parses `networksetup -listpreferredwirelessnetworks`.
// The order is the preference order, which also assigns network ids.
func parsePreferredNetworks(output string) []string {
	var ssids []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "Preferred networks on") {
			continue
		}
		ssids = append(ssids, line)
	}
	return ssids
}

// parseCurrentNetwork parses `networksetup -getairportnetwork`. It returns
// "" when the interface is not associated.
func parseCurrentNetwork(output string) string {
	m := currentNetworkRe.FindStringSubmatch(output)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// configuration builds a saved network. macOS does not report the security
// of preferred networks, so it is taken from the last scan that saw the SSID
// and defaults to WPA2 personal.
func configuration(id int, ssid string, caps string) wifi.Configuration {
	cfg := wifi.Configuration{
		NetworkID: id,
		SSID:      wifi.Quote(ssid),
		KeyMgmt:   wifi.KeyMgmtWPAPSK,
	}
	if caps == "" {
		return cfg
	}
	switch wifi.NewAccessPoint(wifi.ScanResult{SSID: ssid, Capabilities: caps}).Security {
	case wifi.SecurityNone:
		cfg.KeyMgmt = wifi.KeyMgmtNone
	case wifi.SecurityWEP:
		cfg.KeyMgmt = wifi.KeyMgmtNone
		cfg.WEPKey0 = "*"
	case wifi.SecurityEAP:
		cfg.KeyMgmt = wifi.KeyMgmtWPAEAP | wifi.KeyMgmtIEEE8021X
	}
	return cfg
}

// securityType is the security argument of
// `networksetup -addpreferredwirelessnetworkatindex`, plus the password to
// store with it.
func securityType(cfg wifi.Configuration) (string, string) {
	switch {
	case cfg.KeyMgmt.Has(wifi.KeyMgmtWPAEAP), cfg.KeyMgmt.Has(wifi.KeyMgmtIEEE8021X):
		return "WPA2E", ""
	case cfg.KeyMgmt.Has(wifi.KeyMgmtWPAPSK):
		return "WPA2", wifi.Unquote(cfg.PreSharedKey)
	case cfg.WEPKey0 != "":
		return "WEP", wifi.Unquote(cfg.WEPKey0)
	}
	return "OPEN", ""
}

// findWifiDevice parses the output of `networksetup -listallhardwareports` to find the Wi-Fi device.
func findWifiDevice(output string) (string, error) {
	// The output is a series of stanzas, separated by blank lines.
	for _, stanza := range strings.Split(output, "\n\n") {
		var device string
		isWifiPort := false
		for _, line := range strings.Split(stanza, "\n") {
			if port, ok := strings.CutPrefix(line, "Hardware Port: "); ok {
				isWifiPort = strings.Contains(port, "Wi-Fi") || strings.Contains(port, "AirPort")
			}
			if d, ok := strings.CutPrefix(line, "Device: "); ok {
				device = d
			}
		}
		if isWifiPort && device != "" {
			return device, nil
		}
	}
	return "", fmt.Errorf("no Wi-Fi interface found: %w", wifi.ErrNotFound)
}
