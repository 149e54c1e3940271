package utils

import (
	"strings"
	"testing"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "up", in: 2.346, want: 2.35},
		{name: "down", in: 2.344, want: 2.34},
		{name: "negative", in: -2.346, want: -2.35},
		{name: "integer", in: 30000, want: 30000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round2(tt.in); got != tt.want {
				t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatXOF(t *testing.T) {
	got := FormatXOF(30000)
	if !strings.HasSuffix(got, "F CFA") {
		t.Errorf("FormatXOF(30000) = %q, want F CFA suffix", got)
	}
	// French grouping separates thousands; the separator byte depends on
	// the CLDR version, so assert digits only.
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, got)
	if digits != "30000" {
		t.Errorf("FormatXOF(30000) digits = %q, want 30000", digits)
	}
	if strings.Contains(got, ".") || strings.Contains(got, ",") {
		t.Errorf("FormatXOF(30000) = %q, want no decimal places", got)
	}
}
