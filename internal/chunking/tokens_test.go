package chunking

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty string", "", 0},
		{"single char", "a", 1},
		{"exactly one token", "abcd", 1},
		{"rounds up", "abcde", 2},
		{"two tokens", "abcdefgh", 2},
		{"sentence", "The quick brown fox jumps over the lazy dog", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTokens(tt.text)
			if got != tt.expected {
				t.Errorf("EstimateTokens(%q) = %d, expected %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestEstimateTokens_NeverNegative(t *testing.T) {
	inputs := []string{"", " ", "\n\n", "x"}
	for _, in := range inputs {
		if got := EstimateTokens(in); got < 0 {
			t.Errorf("EstimateTokens(%q) = %d, expected non-negative", in, got)
		}
	}
}
