package mqtt

import "fmt"

// Topic prefixes for the FleetWAN MQTT topic hierarchy.
//
// Uplink topics use the flat scheme: fleetwan/uplink/{applicationID}/{devEUI}
// so application consumers can subscribe per application with a single
// wildcard. Sync and system topics carry operational events.
const (
	// TopicPrefix is the base for all FleetWAN topics.
	TopicPrefix = "fleetwan"

	// TopicPrefixUplink is the base for device uplink delivery.
	TopicPrefixUplink = "fleetwan/uplink"

	// TopicPrefixJoin is the base for device join notifications.
	TopicPrefixJoin = "fleetwan/join"

	// TopicPrefixSync is the base for reconciliation events.
	TopicPrefixSync = "fleetwan/sync"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "fleetwan/system"
)

// Topics provides builders for FleetWAN MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	uplinkTopic := topics.Uplink("app-7", "0080000000000101")
//	// Returns: "fleetwan/uplink/app-7/0080000000000101"
type Topics struct{}

// Uplink returns the topic for uplink data from one device.
//
// Example: fleetwan/uplink/app-7/0080000000000101
func (Topics) Uplink(applicationID, devEUI string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixUplink, applicationID, devEUI)
}

// ApplicationUplinks returns a pattern matching all uplinks for one application.
//
// Pattern: fleetwan/uplink/app-7/+
func (Topics) ApplicationUplinks(applicationID string) string {
	return fmt.Sprintf("%s/%s/+", TopicPrefixUplink, applicationID)
}

// AllUplinks returns a pattern matching every uplink on the broker.
//
// Pattern: fleetwan/uplink/+/+
func (Topics) AllUplinks() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixUplink)
}

// Join returns the topic for join notifications from one device.
//
// Example: fleetwan/join/app-7/0080000000000101
func (Topics) Join(applicationID, devEUI string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixJoin, applicationID, devEUI)
}

// AllJoins returns a pattern matching all join notifications.
//
// Pattern: fleetwan/join/+/+
func (Topics) AllJoins() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixJoin)
}

// SyncPull returns the topic for pull reconciliation results on one network.
//
// Example: fleetwan/sync/net-9/pull
func (Topics) SyncPull(networkID string) string {
	return fmt.Sprintf("%s/%s/pull", TopicPrefixSync, networkID)
}

// SyncPush returns the topic for push fan-out results on one network.
//
// Example: fleetwan/sync/net-9/push
func (Topics) SyncPush(networkID string) string {
	return fmt.Sprintf("%s/%s/push", TopicPrefixSync, networkID)
}

// AllSyncEvents returns a pattern matching all reconciliation events.
//
// Pattern: fleetwan/sync/+/+
func (Topics) AllSyncEvents() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixSync)
}

// SystemStatus returns the system status topic. The server publishes
// online/offline payloads here, including the Last Will message.
//
// Example: fleetwan/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTopics returns a pattern matching all FleetWAN topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: fleetwan/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
