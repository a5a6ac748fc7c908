package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBarcode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"upc-a gets ean padding", "123456789012", "0123456789012"},
		{"ean-13 unchanged", "0123456789012", "0123456789012"},
		{"punctuation stripped", "1-2345-6789-012", "0123456789012"},
		{"short numeric kept as digits", "12345", "12345"},
		{"alphanumeric upper-cased", "abc-123", "ABC-123"},
		{"inner whitespace collapsed", "  SN  0042  ", "SN 0042"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBarcode(tt.input))
		})
	}
}

func TestBarcodeAliases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{
			// A 12-digit scan must also match items stored in 13-digit form.
			name:     "upc-a scan",
			input:    "123456789012",
			expected: []string{"0123456789012", "123456789012"},
		},
		{
			// And a 13-digit value with a leading zero must match the 12-digit form.
			name:     "ean-13 with leading zero",
			input:    "0123456789012",
			expected: []string{"0123456789012", "123456789012"},
		},
		{
			name:     "punctuated numeric",
			input:    "1-2345-6789-012",
			expected: []string{"0123456789012", "123456789012", "1-2345-6789-012"},
		},
		{
			name:     "alphanumeric",
			input:    "abc-123",
			expected: []string{"ABC-123"},
		},
		{
			name:     "plain numeric",
			input:    "9990001",
			expected: []string{"9990001"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BarcodeAliases(tt.input))
		})
	}
}
