package sync

import (
	"time"

	"github.com/nerrad567/fleetwan-core/internal/infrastructure/influxdb"
)

// InfluxMetrics records sync measurements to InfluxDB. Writes are batched
// and non-blocking, so recording never slows a reconciliation down.
type InfluxMetrics struct {
	client *influxdb.Client
}

// NewInfluxMetrics wraps a connected InfluxDB client as a Metrics sink.
func NewInfluxMetrics(client *influxdb.Client) *InfluxMetrics {
	return &InfluxMetrics{client: client}
}

// RecordPull writes one sync_pull point per network import.
func (m *InfluxMetrics) RecordPull(networkID string, result *PullResult, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"duration_ms": float64(duration.Milliseconds()),
		"success":     err == nil,
	}
	if result != nil {
		fields["companies"] = result.Companies
		fields["applications"] = result.Applications
		fields["device_profiles"] = result.DeviceProfiles
		fields["devices"] = result.Devices
		fields["created"] = result.Created
		fields["skipped"] = result.Skipped
		fields["failures"] = len(result.Failures)
	}
	m.client.WritePoint("sync_pull", map[string]string{"network_id": networkID}, fields)
}

// RecordPush writes one sync_push point per remote mirror operation.
func (m *InfluxMetrics) RecordPush(networkID, entity, operation string, duration time.Duration, err error) {
	m.client.WritePoint("sync_push",
		map[string]string{
			"network_id": networkID,
			"entity":     entity,
			"operation":  operation,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Milliseconds()),
			"success":     err == nil,
		})
}
