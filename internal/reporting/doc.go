// Package reporting delivers device uplink data to application endpoints.
//
// Vendor networks push uplinks into the ingest endpoint; the Dispatcher
// looks up the owning application's reporting protocol and hands the raw
// payload to the matching Reporter:
//
//   - "post": HTTP POST to the application's base URL
//   - "mqtt": publish to fleetwan/uplink/{applicationID}/{devEUI}
//
// Payloads are vendor-shaped and are forwarded untouched; only the device
// EUI is extracted (best effort) for topic routing and logging.
package reporting
