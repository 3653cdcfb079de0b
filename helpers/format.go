package helpers

import "fmt"

// FormatNumber shortens large values for display (1234567 -> "1.23M")
func FormatNumber(num float64) string {
	switch {
	case num >= 1e9:
		return fmt.Sprintf("%.2fB", num/1e9)
	case num >= 1e6:
		return fmt.Sprintf("%.2fM", num/1e6)
	case num >= 1e3:
		return fmt.Sprintf("%.2fK", num/1e3)
	default:
		return fmt.Sprintf("%.2f", num)
	}
}

// FormatPriceChange formats a percentage change with an explicit sign
func FormatPriceChange(change float64) string {
	if change >= 0 {
		return fmt.Sprintf("+%.2f%%", change)
	}
	return fmt.Sprintf("%.2f%%", change)
}
