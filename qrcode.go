package main

import (
	"fmt"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/shazow/wifilist/wifi"
)

// EscapeWifiString handles the special character escaping for SSID and Password.
func EscapeWifiString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		`:`, `\:`,
		`"`, `\"`,
	)
	return r.Replace(s)
}

// wifiPayload builds the WIFI: string for ap from its saved configuration,
// or from a configuration generated with password when it has none.
func wifiPayload(ap wifi.AccessPoint, password string) (string, error) {
	if ap.Security == wifi.SecurityEAP {
		return "", fmt.Errorf("sharing enterprise network %q: %w", ap.SSID, wifi.ErrNotSupported)
	}
	if password != "" {
		ap.Config = nil
		ap.PendingPassword = password
	}
	cfg, err := ap.NetworkConfig()
	if err != nil {
		return "", fmt.Errorf("network %q: %w", ap.SSID, err)
	}

	var b strings.Builder
	b.WriteString("WIFI:")
	var secret string
	switch ap.Security {
	case wifi.SecurityWEP:
		b.WriteString("T:WEP;")
		secret = wifi.Unquote(cfg.WEPKey0)
	case wifi.SecurityPSK:
		b.WriteString("T:WPA;")
		secret = wifi.Unquote(cfg.PreSharedKey)
	default:
		b.WriteString("T:nopass;")
	}
	b.WriteString("S:")
	b.WriteString(EscapeWifiString(ap.SSID))
	b.WriteString(";")
	if ap.Security != wifi.SecurityNone {
		// Some backends only report that a secret exists.
		if secret == "" || secret == "*" {
			return "", fmt.Errorf("password for %q is not available, pass one with -password", ap.SSID)
		}
		b.WriteString("P:")
		b.WriteString(EscapeWifiString(secret))
		b.WriteString(";")
	}
	b.WriteString(";")
	return b.String(), nil
}

// GenerateWifiQRCode returns the TUI-friendly QR code string for payload.
func GenerateWifiQRCode(payload string) (string, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

func runShare(w io.Writer, ssid, password string, n networks) error {
	snap, err := n.Refresh(false)
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	ap, err := find(snap, ssid)
	if err != nil {
		return err
	}
	payload, err := wifiPayload(ap, password)
	if err != nil {
		return err
	}
	code, err := GenerateWifiQRCode(payload)
	if err != nil {
		return fmt.Errorf("failed to generate qr code: %w", err)
	}
	fmt.Fprint(w, code)
	return nil
}
