package medtravel

import "testing"

func TestHashText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "surrounding whitespace is ignored",
			input:    "  Hello World \n",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:  "empty string",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashText(tt.input)
			if tt.expected != "" && result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			if len(result) != 64 {
				t.Errorf("HashText(%q) length = %d, want 64", tt.input, len(result))
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey("fr", "abc123"); got != "fr:abc123" {
		t.Errorf("CacheKey = %q, want %q", got, "fr:abc123")
	}
}

func TestNodeID(t *testing.T) {
	a := NodeID("/html/body/main/p[0]/text()[0]", "Dental implants")
	b := NodeID("/html/body/main/p[0]/text()[0]", "  Dental implants ")
	c := NodeID("/html/body/main/p[1]/text()[0]", "Dental implants")
	d := NodeID("/html/body/main/p[0]/text()[0]", "Hair transplant")

	if a != b {
		t.Error("NodeID should ignore surrounding whitespace")
	}
	if a == c {
		t.Error("NodeID should differ for different paths")
	}
	if a == d {
		t.Error("NodeID should differ for different original text")
	}
	if len(a) != 24 {
		t.Errorf("NodeID length = %d, want 24", len(a))
	}
}
