package handlers

import "errors"

var (
	// ErrAuth indicates the remote network rejected our credentials or
	// session token. The security coordinator reacts by re-authenticating
	// once, then regressing the network's authorisation status.
	ErrAuth = errors.New("handlers: authentication rejected")

	// ErrRemote indicates the remote network failed for reasons other than
	// authentication (5xx, timeout, malformed response).
	ErrRemote = errors.New("handlers: remote network error")

	// ErrNotFound indicates the addressed remote object does not exist.
	ErrNotFound = errors.New("handlers: remote object not found")

	// ErrConflict indicates the remote network refused a mutation because an
	// equivalent object already exists.
	ErrConflict = errors.New("handlers: remote object conflict")

	// ErrMapping indicates a remote payload could not be translated to the
	// canonical model.
	ErrMapping = errors.New("handlers: cannot map remote object")

	// ErrUnsupported indicates no handler is registered for a network
	// protocol, including after master protocol fallback.
	ErrUnsupported = errors.New("handlers: unsupported network protocol")
)
