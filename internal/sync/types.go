package sync

import "time"

// Logger defines the logging interface used by the Manager.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Metrics receives sync measurements. The InfluxDB adapter implements it;
// the default is a no-op.
type Metrics interface {
	RecordPull(networkID string, result *PullResult, duration time.Duration, err error)
	RecordPush(networkID, entity, operation string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordPull(string, *PullResult, time.Duration, error)   {}
func (noopMetrics) RecordPush(string, string, string, time.Duration, error) {}

// RemoteAccessLog is the outcome of one remote operation during a push
// fan-out. Mutating API responses return these so a caller can see, per
// network, whether the mirror succeeded.
type RemoteAccessLog struct {
	NetworkID   string    `json:"network_id"`
	NetworkName string    `json:"network_name"`
	Entity      string    `json:"entity"`
	Operation   string    `json:"operation"`
	RemoteID    string    `json:"remote_id,omitempty"`
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	LoggedAt    time.Time `json:"logged_at"`
}

// PullResult summarises one network import.
type PullResult struct {
	NetworkID string `json:"network_id"`

	Companies      int `json:"companies"`
	Applications   int `json:"applications"`
	DeviceProfiles int `json:"device_profiles"`
	Devices        int `json:"devices"`

	// Created counts records seen for the first time; the remainder
	// resolved to existing records through their origins.
	Created int `json:"created"`

	// Skipped counts remote objects dropped with a warning, currently
	// devices naming a profile the pull could not resolve.
	Skipped int `json:"skipped"`

	// Failures records remote reads that could not be completed. The
	// importable remainder is persisted regardless; a pull errors only
	// when a local write fails.
	Failures []PullFailure `json:"failures,omitempty"`
}

// PullFailure is one failed remote read branch of a pull: a stage name
// ("applications", "device_profiles", "devices") and, for the device
// stage, the remote application whose list could not be fetched.
type PullFailure struct {
	Stage    string `json:"stage"`
	RemoteID string `json:"remote_id,omitempty"`
	Message  string `json:"message"`
}

// Push operation and entity labels used in remote access logs and metrics.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"

	EntityApplication   = "application"
	EntityDeviceProfile = "device_profile"
	EntityDevice        = "device"
)
