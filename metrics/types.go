// Package metrics holds the data model of the telemetry stream: the snapshot
// record delivered once per reporting interval, the fixed-capacity sliding
// windows that retain recent samples for charting, and the rate estimator that
// turns cumulative byte counters into per-interval rates.
//
// Nothing in this package is safe for concurrent use. All mutation happens on
// the goroutine that owns the dashboard controller.
package metrics

import (
	"fmt"
	"time"
)

// DefaultWindowCapacity is the number of samples retained per metric. At the
// one-second reporting interval this covers one minute of history.
const DefaultWindowCapacity = 60

// Snapshot is one reporting interval's worth of system metric values.
// The JSON keys match the payload emitted by pulse-agent.
type Snapshot struct {
	// Timestamp is when the source sampled the values.
	Timestamp time.Time `json:"timestamp"`

	// CPUPercent is total CPU usage (0-100).
	CPUPercent float64 `json:"cpu_percent"`

	// MemoryPercent is used memory as a percentage of total (0-100).
	MemoryPercent float64 `json:"memory_percent"`
	// MemoryUsedBytes is used physical memory.
	MemoryUsedBytes uint64 `json:"memory_used"`
	// MemoryTotalBytes is total physical memory.
	MemoryTotalBytes uint64 `json:"memory_total"`

	// TemperatureCelsius is the SoC/CPU temperature, 0 when no sensor exists.
	TemperatureCelsius float64 `json:"temperature"`

	// DiskPercent is root filesystem usage (0-100).
	DiskPercent float64 `json:"disk_percent"`
	// DiskUsedBytes is used space on the root filesystem.
	DiskUsedBytes uint64 `json:"disk_used"`
	// DiskTotalBytes is the size of the root filesystem.
	DiskTotalBytes uint64 `json:"disk_total"`

	// NetworkRxBytes is the cumulative received byte counter.
	NetworkRxBytes uint64 `json:"network_rx"`
	// NetworkTxBytes is the cumulative transmitted byte counter.
	NetworkTxBytes uint64 `json:"network_tx"`

	// UptimeSeconds is host uptime.
	UptimeSeconds uint64 `json:"uptime"`

	// ConcurrencyCount is an opaque integer gauge reported by the source
	// (the agent reports its goroutine count).
	ConcurrencyCount int `json:"goroutines"`

	// LoadAverage is the 1-minute load average.
	LoadAverage float64 `json:"load_avg"`
}

// TimestampMillis returns the sample time as Unix milliseconds, or 0 when the
// timestamp is unset.
func (s Snapshot) TimestampMillis() int64 {
	if s.Timestamp.IsZero() {
		return 0
	}
	return s.Timestamp.UnixMilli()
}

// ConnectionState is the process-wide state of the upstream connection.
// It is advisory: it drives the status indicator and nothing else.
type ConnectionState int

const (
	// StateConnecting means a dial is in progress.
	StateConnecting ConnectionState = iota
	// StateConnected means snapshots are flowing.
	StateConnected
	// StateDisconnected means the connection closed and a retry is pending.
	StateDisconnected
	// StateError means the last dial or read failed with an error.
	StateError
)

// String returns the lowercase state name.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Label returns the text shown next to the status indicator.
func (s ConnectionState) Label() string {
	switch s {
	case StateConnecting:
		return "Connecting..."
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}
