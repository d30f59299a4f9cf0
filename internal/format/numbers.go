package format

import (
	"strconv"
)

// FormatNumber renders x with a K or M suffix above one thousand and one
// million, using the given number of decimal places.
func FormatNumber(x float64, decimals int) string {
	switch {
	case x >= 1_000_000:
		return strconv.FormatFloat(x/1_000_000, 'f', decimals, 64) + "M"
	case x >= 1_000:
		return strconv.FormatFloat(x/1_000, 'f', decimals, 64) + "K"
	default:
		return strconv.FormatFloat(x, 'f', decimals, 64)
	}
}

// TruncateAddress shortens a long address to its first and last 8 characters.
func TruncateAddress(addr string) string {
	if addr == "" {
		return "Unknown"
	}
	if len(addr) < 20 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-8:]
}
