package format

import (
	"fmt"
	"math"
	"strconv"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// Bytes renders a byte count in base-1024 units with at most one decimal:
// "0 B", "512 B", "1.5 KB", "2 MB".
func Bytes(n uint64) string {
	if n < 1024 {
		return strconv.FormatUint(n, 10) + " B"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*10) / 10
	if v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// MiB renders bytes as mebibytes rounded to the nearest whole, e.g.
// "1843 MiB".
func MiB(n uint64) string {
	return fmt.Sprintf("%.0f MiB", math.Round(float64(n)/(1<<20)))
}

// GiB renders bytes as gibibytes with one decimal, e.g. "14.2 GiB".
func GiB(n uint64) string {
	return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
}

// Percent renders a percentage with one decimal, e.g. "42.5%".
func Percent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "--%"
	}
	return fmt.Sprintf("%.1f%%", p)
}
