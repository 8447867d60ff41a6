package textfilter

import (
	"testing"
)

func TestNameFilter_Allowed(t *testing.T) {
	filter := NewNameFilter()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"plain name", "Aria", true},
		{"digits", "Rowan42", true},
		{"ordinary names containing short words", "Cassandra", true},
		{"hancock is fine", "Hancock", true},
		{"blocked word", "fuckface", false},
		{"blocked word mixed case", "BigShitLord", false},
		{"blocked word inside", "xxcuntxx", false},
		{"leetspeak", "sh1tlord", false},
		{"leetspeak vowels", "b1tch", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Allowed(tt.input); got != tt.expected {
				t.Errorf("Allowed(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNameFilter_Extra(t *testing.T) {
	filter := NewNameFilter(" Admin ", "")

	if filter.Allowed("TheAdmin") {
		t.Error("expected extra fragment to be blocked")
	}
	if !filter.Allowed("Adam") {
		t.Error("expected unrelated name to be allowed")
	}
}
