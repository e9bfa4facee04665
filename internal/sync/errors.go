package sync

import "errors"

var (
	// ErrNotReady indicates a pull was requested on a network that is not
	// both authorized and enabled.
	ErrNotReady = errors.New("sync: network not authorized and enabled")
)
