// Package influxdb provides InfluxDB connectivity for FleetWAN Core.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched point writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Pull reconciliation measurements (sync_pull)
//   - Push fan-out measurements (sync_push)
//   - Uplink ingest throughput
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "fleetwan",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WritePoint("sync_pull",
//	    map[string]string{"network_id": "net-01"},
//	    map[string]interface{}{"devices": 42})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead during large fleet reconciliations.
package influxdb
