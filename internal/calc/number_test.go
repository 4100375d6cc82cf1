package calc

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{8, "8"},
		{-3, "-3"},
		{0.25, "0.25"},
		{math.Copysign(0, -1), "0"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789012, "123456789012"},
		{0.000001, "0.000001"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{"12.5", 12.5},
		{".5", 0.5},
		{"5.", 5},
		{"  -4", -4},
		{"1.2.3", 1.2},
		{"3abc", 3},
		{"2e3", 2000},
		{"2e", 2},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", ".", "abc", "-", "NaN"} {
		if got := ParseNumber(bad); !math.IsNaN(got) {
			t.Errorf("ParseNumber(%q) = %v, want NaN", bad, got)
		}
	}
}

func TestFormatParseStable(t *testing.T) {
	for _, v := range []float64{8, 0.1 + 0.2, 1e22, 1.5e-9, -42.125} {
		text := FormatNumber(v)
		if back := ParseNumber(text); back != v {
			t.Errorf("%v -> %q -> %v", v, text, back)
		}
	}
}
