// Package handlers defines the protocol handler contract between the sync
// engine and vendor network servers, plus the registry that resolves a
// configured network protocol to its handler.
//
// One Handler implementation exists per vendor protocol version (see the
// loraserverv1, loraserverv2, and ttnv2 subpackages). Handlers are
// stateless across calls: per-network state lives in the Network record and
// the Session issued by Login. Adding support for a new vendor means
// implementing Handler and registering it; nothing in the sync engine
// changes.
package handlers
