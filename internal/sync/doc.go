// Package sync is the reconciliation engine between the canonical model
// and remote vendor networks.
//
// Pull imports a network's remote objects into the canonical model,
// correlating repeats through the origins index so a second pull updates
// instead of duplicating. Push mirrors canonical mutations to every
// enabled and authorized network of the matching type, collecting a
// per-network remote access log instead of failing the whole fan-out on
// one bad network.
//
// Sessions and authentication recovery are delegated to the session
// coordinator; vendor specifics are delegated to the protocol handlers.
package sync
