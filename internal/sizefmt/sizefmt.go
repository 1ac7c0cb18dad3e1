// Package sizefmt converts byte counts into short human-readable labels.
package sizefmt

import (
	"math"
	"strconv"
)

var units = []string{"BIT", "B", "KB", "MB", "GB", "TB"}

// Zero is the label for empty, missing or invalid sizes.
const Zero = "0 BIT"

// Format renders bytes using binary (1024) steps, starting at B.
// Non-finite and non-positive input yields Zero.
func Format(bytes float64) string {
	if math.IsNaN(bytes) || math.IsInf(bytes, 0) || bytes <= 0 {
		return Zero
	}

	i := 1
	size := bytes
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	if size == math.Trunc(size) {
		return strconv.FormatFloat(size, 'f', -1, 64) + " " + units[i]
	}
	return oneDecimal(size) + " " + units[i]
}

// oneDecimal formats v with one decimal place. Exact ties round up, which
// FormatFloat alone would round to even.
func oneDecimal(v float64) string {
	if f := v - math.Floor(v); f == 0.25 || f == 0.75 {
		v += 0.05
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
