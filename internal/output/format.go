// Package output renders walk results: du-style human-readable sizes, one
// tab-separated line per root, with optional color.
package output

import "fmt"

// blockSize matches the accounting unit of the scan layer.
const blockSize = 512

// FormatBlocks renders a 512-byte block count the way du -h does: a plain
// byte count under 1 KiB, then K/M/G/T with one decimal unless the value is
// integral.
func FormatBlocks(blocks int64) string {
	bytes := blocks * blockSize

	switch {
	case bytes < 1<<10:
		return fmt.Sprintf("%dB", bytes)
	case bytes < 1<<20:
		return formatUnit(float64(bytes)/(1<<10), "K")
	case bytes < 1<<30:
		return formatUnit(float64(bytes)/(1<<20), "M")
	case bytes < 1<<40:
		return formatUnit(float64(bytes)/(1<<30), "G")
	default:
		return formatUnit(float64(bytes)/(1<<40), "T")
	}
}

func formatUnit(v float64, unit string) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d%s", int64(v), unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}

// BlocksToBytes converts a block count back to bytes for --bytes output.
func BlocksToBytes(blocks int64) int64 { return blocks * blockSize }
