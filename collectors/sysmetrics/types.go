// Package sysmetrics samples the local host with gopsutil and produces the
// snapshots served by pulse-agent and consumed by pulse-view -local.
package sysmetrics

import "context"

// Reading sources. Each is swappable for tests.
type (
	cpuFunc     func(ctx context.Context) (float64, error)
	memFunc     func(ctx context.Context) (used, total uint64, percent float64, err error)
	diskFunc    func(ctx context.Context, path string) (used, total uint64, percent float64, err error)
	tempFunc    func(ctx context.Context) ([]Sensor, error)
	netFunc     func(ctx context.Context) (rx, tx uint64, err error)
	uptimeFunc  func(ctx context.Context) (uint64, error)
	loadFunc    func(ctx context.Context) (float64, error)
	routineFunc func() int
)

// Sensor is one temperature reading.
type Sensor struct {
	Key     string
	Celsius float64
}

// PreferredSensors are checked in order before falling back to the first
// sensor reported.
var PreferredSensors = []string{"cpu_thermal", "thermal_zone0", "coretemp"}

// PickTemperature chooses the CPU temperature from a sensor list: the first
// preferred key that matches, else the first sensor, else 0.
func PickTemperature(sensors []Sensor) float64 {
	for _, key := range PreferredSensors {
		for _, s := range sensors {
			if s.Key == key {
				return s.Celsius
			}
		}
	}
	// Keys are often suffixed, e.g. "coretemp_package_id_0".
	for _, key := range PreferredSensors {
		for _, s := range sensors {
			if len(s.Key) > len(key) && s.Key[:len(key)] == key {
				return s.Celsius
			}
		}
	}
	if len(sensors) > 0 {
		return sensors[0].Celsius
	}
	return 0
}
