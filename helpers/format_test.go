package helpers

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0.00"},
		{999, "999.00"},
		{1000, "1.00K"},
		{1234567, "1.23M"},
		{2500000000, "2.50B"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.input); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatPriceChange(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{5.25, "+5.25%"},
		{0, "+0.00%"},
		{-3.1, "-3.10%"},
	}

	for _, tt := range tests {
		if got := FormatPriceChange(tt.input); got != tt.want {
			t.Errorf("FormatPriceChange(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
