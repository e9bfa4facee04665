package reporting

import "errors"

var (
	// ErrNoReporting means the application has no reporting protocol
	// configured, so uplinks for it are dropped.
	ErrNoReporting = errors.New("reporting: application has no reporting protocol")

	// ErrNoEndpoint means the application's reporting protocol needs a
	// destination URL but none is configured.
	ErrNoEndpoint = errors.New("reporting: application has no base URL")

	// ErrUnknownHandler means the reporting protocol names a handler no
	// reporter has been registered for.
	ErrUnknownHandler = errors.New("reporting: unknown reporting handler")

	// ErrDeliveryFailed means the application's endpoint rejected the
	// uplink or was unreachable.
	ErrDeliveryFailed = errors.New("reporting: delivery failed")
)
