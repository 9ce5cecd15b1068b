package util

import "testing"

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.1%", 3.1, true},
		{"250K", 250000, true},
		{"-1.2B", -1.2e9, true},
		{"1,234.5", 1234.5, true},
		{"$0.25", 0.25, true},
		{"−0.3%", -0.3, true},
		{"", 0, false},
		{"-", 0, false},
		{"N/A", 0, false},
		{"abc", 0, false},
		{"1e400", 0, false},
		{"-1e400", 0, false},
		{"9e307K", 0, false},
		{"1e-400", 0, true},
	}
	for _, tt := range tests {
		got, ok := ParseValue(tt.in)
		if ok != tt.ok {
			t.Fatalf("%q: ok=%v want %v", tt.in, ok, tt.ok)
		}
		if ok && (got-tt.want > 1e-9 || tt.want-got > 1e-9) {
			t.Fatalf("%q: got %v want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseValuePtr(t *testing.T) {
	if ParseValuePtr("") != nil {
		t.Fatalf("expected nil for empty cell")
	}
	if v := ParseValuePtr("2"); v == nil || *v != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
}
