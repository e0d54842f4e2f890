package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shazow/wifilist/wifi"
)

// networks is the part of the tracker the subcommands need.
type networks interface {
	Refresh(shouldScan bool) (wifi.Snapshot, error)
	Connect(key wifi.Key, password string) (wifi.Snapshot, error)
	Forget(key wifi.Key) (wifi.Snapshot, error)
}

type accessPointJSON struct {
	SSID      string `json:"ssid"`
	BSSID     string `json:"bssid,omitempty"`
	Security  string `json:"security"`
	RSSI      *int   `json:"rssi,omitempty"`
	Level     int    `json:"level"`
	Saved     bool   `json:"saved"`
	Active    bool   `json:"active"`
	Status    string `json:"status"`
	NetworkID int    `json:"network_id"`
}

func toJSON(ap wifi.AccessPoint, levels int) accessPointJSON {
	out := accessPointJSON{
		SSID:      ap.SSID,
		BSSID:     ap.BSSID,
		Security:  securityName(ap),
		Level:     ap.SignalLevel(levels),
		Saved:     ap.Saved(),
		Active:    ap.Active(),
		Status:    ap.Status().String(),
		NetworkID: ap.NetworkID,
	}
	if ap.InRange {
		rssi := ap.RSSI
		out.RSSI = &rssi
	}
	return out
}

func securityName(ap wifi.AccessPoint) string {
	if ap.Security == wifi.SecurityNone {
		return "open"
	}
	return ap.SecurityString()
}

func formatAccessPoint(ap wifi.AccessPoint) string {
	var parts []string
	if ap.InRange {
		parts = append(parts, fmt.Sprintf("%d dBm", ap.RSSI))
	}
	parts = append(parts, securityName(ap))
	if status := ap.Status(); status != wifi.StatusIdle {
		parts = append(parts, status.String())
	}
	return strings.Join(parts, ", ")
}

func find(snap wifi.Snapshot, ssid string) (wifi.AccessPoint, error) {
	ap, ok := snap.Find(ssid)
	if !ok {
		return wifi.AccessPoint{}, fmt.Errorf("network %q: %w", ssid, wifi.ErrNotFound)
	}
	return ap, nil
}

func runList(w io.Writer, asJSON bool, scan bool, n networks) error {
	snap, err := n.Refresh(scan)
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}

	if asJSON {
		out := make([]accessPointJSON, 0, len(snap.AccessPoints))
		for _, ap := range snap.AccessPoints {
			out = append(out, toJSON(ap, snap.Levels))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, ap := range snap.AccessPoints {
		fmt.Fprintf(w, "%s\t%s\n", ap.SSID, formatAccessPoint(ap))
	}
	return nil
}

func runShow(w io.Writer, asJSON bool, ssid string, n networks) error {
	snap, err := n.Refresh(false)
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	ap, err := find(snap, ssid)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toJSON(ap, snap.Levels))
	}

	fmt.Fprintf(w, "SSID: %s\n", ap.SSID)
	if ap.BSSID != "" {
		fmt.Fprintf(w, "BSSID: %s\n", ap.BSSID)
	}
	fmt.Fprintf(w, "Security: %s\n", securityName(ap))
	if ap.InRange {
		fmt.Fprintf(w, "Signal: %d dBm (%d/%d)\n", ap.RSSI, ap.SignalLevel(snap.Levels), snap.Levels-1)
	} else {
		fmt.Fprintln(w, "Signal: out of range")
	}
	fmt.Fprintf(w, "Saved: %t\n", ap.Saved())
	fmt.Fprintf(w, "Active: %t\n", ap.Active())
	if summary := ap.Status().Summary(); summary != "" {
		fmt.Fprintf(w, "Status: %s\n", summary)
	}
	return nil
}

func runConnect(w io.Writer, ssid, password string, n networks) error {
	snap, err := n.Refresh(false)
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	ap, err := find(snap, ssid)
	if err != nil {
		return err
	}
	// Enterprise credentials are provisioned by the OS.
	if password == "" && ap.NeedsPassword() && ap.Security != wifi.SecurityEAP {
		return fmt.Errorf("network %q requires a password", ssid)
	}

	snap, err = n.Connect(ap.Key(), password)
	if err != nil {
		return err
	}
	if ap, ok := snap.Lookup(ap.Key()); ok {
		fmt.Fprintf(w, "%s: %s\n", ap.SSID, ap.Status().Summary())
	}
	return nil
}

func runForget(w io.Writer, ssid string, n networks) error {
	snap, err := n.Refresh(false)
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	ap, err := find(snap, ssid)
	if err != nil {
		return err
	}
	if _, err := n.Forget(ap.Key()); err != nil {
		return err
	}
	fmt.Fprintf(w, "Forgot %s\n", ap.SSID)
	return nil
}
