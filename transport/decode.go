package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

// ErrMalformedSnapshot is returned for a message that is not valid JSON or
// is missing a required field. Malformed snapshots are never delivered.
var ErrMalformedSnapshot = errors.New("transport: malformed snapshot")

// wireSnapshot mirrors metrics.Snapshot with pointer fields so an absent key
// can be told apart from a zero value.
type wireSnapshot struct {
	Timestamp        *time.Time `json:"timestamp"`
	CPUPercent       *float64   `json:"cpu_percent" validate:"required,gte=0"`
	MemoryPercent    *float64   `json:"memory_percent" validate:"required,gte=0"`
	MemoryUsed       *uint64    `json:"memory_used" validate:"required"`
	MemoryTotal      *uint64    `json:"memory_total" validate:"required"`
	Temperature      *float64   `json:"temperature" validate:"required,gte=0"`
	DiskPercent      *float64   `json:"disk_percent" validate:"required,gte=0"`
	DiskUsed         *uint64    `json:"disk_used" validate:"required"`
	DiskTotal        *uint64    `json:"disk_total" validate:"required"`
	NetworkRx        *uint64    `json:"network_rx" validate:"required"`
	NetworkTx        *uint64    `json:"network_tx" validate:"required"`
	Uptime           *uint64    `json:"uptime" validate:"required"`
	ConcurrencyCount *int       `json:"goroutines" validate:"required,gte=0"`
	LoadAverage      *float64   `json:"load_avg" validate:"required,gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeSnapshot parses and validates a single JSON snapshot.
func DecodeSnapshot(data []byte) (metrics.Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return metrics.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if err := validate.Struct(&w); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return metrics.Snapshot{}, fmt.Errorf("%w: field %s failed %q",
				ErrMalformedSnapshot, verrs[0].Field(), verrs[0].Tag())
		}
		return metrics.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	s := metrics.Snapshot{
		CPUPercent:         *w.CPUPercent,
		MemoryPercent:      *w.MemoryPercent,
		MemoryUsedBytes:    *w.MemoryUsed,
		MemoryTotalBytes:   *w.MemoryTotal,
		TemperatureCelsius: *w.Temperature,
		DiskPercent:        *w.DiskPercent,
		DiskUsedBytes:      *w.DiskUsed,
		DiskTotalBytes:     *w.DiskTotal,
		NetworkRxBytes:     *w.NetworkRx,
		NetworkTxBytes:     *w.NetworkTx,
		UptimeSeconds:      *w.Uptime,
		ConcurrencyCount:   *w.ConcurrencyCount,
		LoadAverage:        *w.LoadAverage,
	}
	if w.Timestamp != nil {
		s.Timestamp = *w.Timestamp
	}
	return s, nil
}

// DecodeFrame splits a websocket message into newline-separated snapshots.
// The server batches queued messages into one frame, so a frame may carry
// several. Valid snapshots are returned in order; each invalid line adds an
// error wrapping ErrMalformedSnapshot.
func DecodeFrame(frame []byte) ([]metrics.Snapshot, []error) {
	var (
		out  []metrics.Snapshot
		errs []error
	)
	for line := range bytes.SplitSeq(frame, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		s, err := DecodeSnapshot(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, s)
	}
	return out, errs
}
