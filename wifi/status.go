package wifi

// DetailedState is the connection lifecycle stage reported by the OS.
type DetailedState int

const (
	DetailedStateIdle DetailedState = iota
	DetailedStateScanning
	DetailedStateConnecting
	DetailedStateAuthenticating
	DetailedStateObtainingIPAddr
	DetailedStateConnected
	DetailedStateSuspended
	DetailedStateDisconnecting
	DetailedStateDisconnected
	DetailedStateFailed
	DetailedStateBlocked
	DetailedStateVerifyingPoorLink
	DetailedStateCaptivePortalCheck
)

func (d DetailedState) String() string {
	switch d {
	case DetailedStateIdle:
		return "idle"
	case DetailedStateScanning:
		return "scanning"
	case DetailedStateConnecting:
		return "connecting"
	case DetailedStateAuthenticating:
		return "authenticating"
	case DetailedStateObtainingIPAddr:
		return "obtaining-ipaddr"
	case DetailedStateConnected:
		return "connected"
	case DetailedStateSuspended:
		return "suspended"
	case DetailedStateDisconnecting:
		return "disconnecting"
	case DetailedStateDisconnected:
		return "disconnected"
	case DetailedStateFailed:
		return "failed"
	case DetailedStateBlocked:
		return "blocked"
	case DetailedStateVerifyingPoorLink:
		return "verifying-poor-link"
	case DetailedStateCaptivePortalCheck:
		return "captive-portal-check"
	}
	return "unknown"
}

// State is the coarse connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateSuspended
	StateDisconnecting
)

// State collapses the detailed state into its coarse state.
func (d DetailedState) State() State {
	switch d {
	case DetailedStateConnecting, DetailedStateAuthenticating, DetailedStateObtainingIPAddr,
		DetailedStateVerifyingPoorLink, DetailedStateCaptivePortalCheck:
		return StateConnecting
	case DetailedStateConnected:
		return StateConnected
	case DetailedStateSuspended:
		return StateSuspended
	case DetailedStateDisconnecting:
		return StateDisconnecting
	}
	return StateDisconnected
}

// Status is the display status of an access point.
type Status int

const (
	StatusIdle Status = iota
	StatusScanning
	StatusConnecting
	StatusAuthenticating
	StatusObtainingAddress
	StatusConnected
	StatusConnectedNoInternet
	StatusSuspended
	StatusDisconnecting
	StatusDisconnected
	StatusFailed
	StatusBlocked
	StatusVerifyingPoorLink
	StatusDisabled
	StatusPasswordFailure
	StatusNetworkFailure
	StatusWifiFailure
	StatusSaved
)

var statusTags = [...]string{
	StatusIdle:                "idle",
	StatusScanning:            "scanning",
	StatusConnecting:          "connecting",
	StatusAuthenticating:      "authenticating",
	StatusObtainingAddress:    "obtaining-address",
	StatusConnected:           "connected",
	StatusConnectedNoInternet: "connected-without-internet",
	StatusSuspended:           "suspended",
	StatusDisconnecting:       "disconnecting",
	StatusDisconnected:        "disconnected",
	StatusFailed:              "failed",
	StatusBlocked:             "blocked",
	StatusVerifyingPoorLink:   "verifying-poor-link",
	StatusDisabled:            "disabled",
	StatusPasswordFailure:     "password-failure",
	StatusNetworkFailure:      "network-failure",
	StatusWifiFailure:         "wifi-failure",
	StatusSaved:               "saved",
}

var statusSummaries = [...]string{
	StatusIdle:                "",
	StatusScanning:            "Scanning...",
	StatusConnecting:          "Connecting...",
	StatusAuthenticating:      "Authenticating...",
	StatusObtainingAddress:    "Obtaining IP address...",
	StatusConnected:           "Connected",
	StatusConnectedNoInternet: "Connected, no internet",
	StatusSuspended:           "Suspended",
	StatusDisconnecting:       "Disconnecting...",
	StatusDisconnected:        "Disconnected",
	StatusFailed:              "Unsuccessful",
	StatusBlocked:             "Temporarily avoiding poor connection",
	StatusVerifyingPoorLink:   "Checking connection quality...",
	StatusDisabled:            "Disabled",
	StatusPasswordFailure:     "Authentication problem",
	StatusNetworkFailure:      "IP configuration failure",
	StatusWifiFailure:         "Wi-Fi connection failure",
	StatusSaved:               "Saved",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusTags) {
		return "unknown"
	}
	return statusTags[s]
}

// Summary is a human readable form of the status.
func (s Status) Summary() string {
	if s < 0 || int(s) >= len(statusSummaries) {
		return ""
	}
	return statusSummaries[s]
}

var detailedStatus = map[DetailedState]Status{
	DetailedStateIdle:              StatusIdle,
	DetailedStateScanning:          StatusScanning,
	DetailedStateConnecting:        StatusConnecting,
	DetailedStateAuthenticating:    StatusAuthenticating,
	DetailedStateObtainingIPAddr:   StatusObtainingAddress,
	DetailedStateConnected:         StatusConnected,
	DetailedStateSuspended:         StatusSuspended,
	DetailedStateDisconnecting:     StatusDisconnecting,
	DetailedStateDisconnected:      StatusDisconnected,
	DetailedStateFailed:            StatusFailed,
	DetailedStateBlocked:           StatusBlocked,
	DetailedStateVerifyingPoorLink: StatusVerifyingPoorLink,
}

var disabledStatus = map[DisableReason]Status{
	DisableReasonAssociationRejection:  StatusDisabled,
	DisableReasonAuthenticationFailure: StatusPasswordFailure,
	DisableReasonDHCPFailure:           StatusNetworkFailure,
	DisableReasonDNSFailure:            StatusNetworkFailure,
}

// Status derives the display status from the live connection and the
// attached configuration.
func (ap AccessPoint) Status() Status {
	switch {
	case ap.Active():
		state := ap.Connection.State
		if state == DetailedStateConnected && ap.Connection.Validation == ValidationFailed {
			return StatusConnectedNoInternet
		}
		if s, ok := detailedStatus[state]; ok {
			return s
		}
		return StatusIdle
	case !ap.networkEnabled():
		if s, ok := disabledStatus[ap.Config.Admin.DisableReason]; ok {
			return s
		}
		return StatusWifiFailure
	case ap.Saved():
		return StatusSaved
	}
	return StatusIdle
}

func (ap AccessPoint) networkEnabled() bool {
	if ap.Config == nil || ap.Config.Admin == nil {
		return true
	}
	return ap.Config.Admin.Enabled
}
