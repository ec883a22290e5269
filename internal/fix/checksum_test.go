package fix

import (
	"strings"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  int
	}{
		{"no parts", nil, 0},
		{"empty string", []string{""}, 0},
		{"single char", []string{"a"}, 97},
		{"wraps at 256", []string{"hello"}, 20},
		{"split parts equal joined", []string{"he", "llo"}, 20},
		{"non-ascii code points", []string{"héllo"}, 152},
		{"order fields", []string{"AAPL", "150.5", "10", "ORD12345", "0", "20241206-12:34:56.789"}, 201},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.parts...); got != tt.want {
				t.Errorf("Checksum(%q) = %d, want %d", tt.parts, got, tt.want)
			}
		})
	}
}

func TestChecksum_Bounded(t *testing.T) {
	inputs := []string{
		strings.Repeat("z", 10000),
		strings.Repeat("\U0010FFFF", 100),
		"|=|=|",
	}
	for _, in := range inputs {
		got := Checksum(in)
		if got < 0 || got > 255 {
			t.Errorf("Checksum out of range: %d", got)
		}
	}
}
