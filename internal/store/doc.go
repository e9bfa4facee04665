// Package store is the SQLite-backed entity store for FleetWAN Core.
//
// It persists the canonical data model (Company, Application, DeviceProfile,
// Device), the network configuration (NetworkType, NetworkProtocol,
// Network), the per-network-type join links carrying opaque vendor settings,
// and the origins index correlating remote objects with local records.
//
// Each entity family exposes the uniform load/list/create/update/remove
// contract. The pull reconciler additionally consumes the origin-aware
// Upsert*ByOrigin operations: a remote object already seen on a network
// resolves to its existing canonical record (updated only where fields
// differ), an unseen one creates a record and registers the origin. Origin
// keys are scoped per network, so concurrent pulls of different networks
// cannot interfere.
//
// The networkSettings blobs on link records are vendor-defined and never
// validated against a shared schema; they round-trip safely only within the
// protocol handler that wrote them.
package store
