// Package units names the data sizes the storage engine is configured in.
// Sizes are binary, a megabyte is 1 << 20 bytes, as badger counts them.
package units

import "fmt"

const (
	Kilobyte = 1 << 10
	Kb       = Kilobyte
	Megabyte = Kilobyte * Kilobyte
	Mb       = Megabyte
	Gigabyte = Megabyte * Kilobyte
	Gb       = Gigabyte
)

// MB converts a count of megabytes to bytes.
func MB(n int) int64 { return int64(n) * Mb }

// Format renders a byte count with the largest unit it has at least one of.
func Format(n int64) string {
	switch {
	case n >= Gb:
		return fmt.Sprintf("%.1fGb", float64(n)/Gb)
	case n >= Mb:
		return fmt.Sprintf("%.1fMb", float64(n)/Mb)
	case n >= Kb:
		return fmt.Sprintf("%.1fKb", float64(n)/Kb)
	}
	return fmt.Sprintf("%db", n)
}
