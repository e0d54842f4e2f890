package wifi

type credentialState int

const (
	credentialsUnverified credentialState = iota
	credentialsAccepted
	credentialsRejected
)

type credentialEvent int

const (
	credentialEventConnected credentialEvent = iota
	credentialEventAuthFailure
	credentialEventReset
)

// credentialTransitions is the complete state machine for the sticky
// credential rejection flag.
var credentialTransitions = [...][3]credentialState{
	credentialsUnverified: {
		credentialEventConnected:   credentialsAccepted,
		credentialEventAuthFailure: credentialsRejected,
		credentialEventReset:       credentialsUnverified,
	},
	credentialsAccepted: {
		credentialEventConnected:   credentialsAccepted,
		credentialEventAuthFailure: credentialsRejected,
		credentialEventReset:       credentialsUnverified,
	},
	credentialsRejected: {
		credentialEventConnected:   credentialsAccepted,
		credentialEventAuthFailure: credentialsRejected,
		credentialEventReset:       credentialsUnverified,
	},
}

func (s credentialState) next(e credentialEvent) credentialState {
	return credentialTransitions[s][e]
}
