// Package session is the security coordinator for remote networks: it
// caches authenticated sessions, collapses concurrent re-logins into a
// single flight, records authorisation state transitions on the network
// record, and redacts securityData for non-admin API callers.
package session
