package wifi

import "errors"

var (
	ErrNotSupported     = errors.New("not supported")
	ErrNotFound         = errors.New("not found")
	ErrNotAvailable     = errors.New("not available")
	ErrOperationFailed  = errors.New("operation failed")
	ErrWirelessDisabled = errors.New("wireless is disabled")
	ErrNotSaved         = errors.New("network is not saved")

	// ErrInvalidCredentialFormat is returned when a password does not fit the
	// length or character rules of the network's security kind.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
)
