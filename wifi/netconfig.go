package wifi

import "fmt"

// NetworkConfig returns the configuration to connect with. A saved access
// point whose credentials were not rejected reuses its configuration,
// otherwise a new one is generated from PendingPassword.
func (ap AccessPoint) NetworkConfig() (Configuration, error) {
	if ap.Config != nil && !ap.CredentialRejected() {
		return *ap.Config, nil
	}
	cfg := Configuration{
		NetworkID: InvalidNetworkID,
		SSID:      Quote(ap.SSID),
	}
	password := ap.PendingPassword
	switch ap.Security {
	case SecurityNone:
		cfg.KeyMgmt = KeyMgmtNone
	case SecurityWEP:
		cfg.KeyMgmt = KeyMgmtNone
		switch {
		case isHex(password) && (len(password) == 10 || len(password) == 26 || len(password) == 58):
			cfg.WEPKey0 = password
		case isASCII(password) && (len(password) == 5 || len(password) == 13 || len(password) == 16):
			cfg.WEPKey0 = Quote(password)
		default:
			return Configuration{}, fmt.Errorf("%w: WEP key must be 5, 13 or 16 characters or 10, 26 or 58 hex digits", ErrInvalidCredentialFormat)
		}
	case SecurityPSK:
		cfg.KeyMgmt = KeyMgmtWPAPSK
		switch {
		case len(password) == 64 && isHex(password):
			cfg.PreSharedKey = password
		case isASCII(password) && len(password) >= 8 && len(password) <= 63:
			cfg.PreSharedKey = Quote(password)
		default:
			return Configuration{}, fmt.Errorf("%w: passphrase must be 8 to 63 characters or 64 hex digits", ErrInvalidCredentialFormat)
		}
	case SecurityEAP:
		// Enterprise credentials are provisioned by the OS.
		cfg.KeyMgmt = KeyMgmtWPAEAP | KeyMgmtIEEE8021X
	}
	return cfg, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// isASCII reports whether s only holds printable ASCII.
func isASCII(s string) bool {
	for _, c := range s {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
