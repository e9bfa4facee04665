// Package loraserverv1 implements the protocol handler for LoRa Server
// version 1 deployments: username/password login issuing a JWT, flat JSON
// entity payloads, and limit/offset pagination. It also serves as the
// master protocol for later LoRa Server versions that have no handler of
// their own.
package loraserverv1
