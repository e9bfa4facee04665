package reporting

import (
	"time"

	"github.com/nerrad567/fleetwan-core/internal/infrastructure/influxdb"
)

// InfluxMetrics records ingest throughput to InfluxDB.
type InfluxMetrics struct {
	client *influxdb.Client
}

// NewInfluxMetrics wraps a connected InfluxDB client as a Metrics sink.
func NewInfluxMetrics(client *influxdb.Client) *InfluxMetrics {
	return &InfluxMetrics{client: client}
}

// RecordIngest writes one ingest point per dispatched uplink.
func (m *InfluxMetrics) RecordIngest(applicationID, networkID string, size int, duration time.Duration, err error) {
	m.client.WritePoint("ingest",
		map[string]string{
			"application_id": applicationID,
			"network_id":     networkID,
		},
		map[string]interface{}{
			"bytes":       size,
			"duration_ms": float64(duration.Milliseconds()),
			"success":     err == nil,
		})
}
