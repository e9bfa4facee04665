// Package mqtt provides MQTT client connectivity for FleetWAN Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// FleetWAN uses MQTT as the outbound delivery bus for device uplinks:
// applications whose reporting protocol is MQTT receive their device data
// on fleetwan/uplink/{applicationID}/{devEUI} instead of an HTTP POST.
// Reconciliation events are published alongside for operational consumers.
//
//	Vendor networks → FleetWAN Core → MQTT Broker → Application consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all uplinks for one application
//	err = client.Subscribe(mqtt.Topics{}.ApplicationUplinks("app-7"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish an uplink
//	topic := mqtt.Topics{}.Uplink("app-7", "0080000000000101")
//	client.Publish(topic, payload, 1, false)
package mqtt
