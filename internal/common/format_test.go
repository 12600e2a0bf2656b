package common

import (
	"testing"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, test := range tests {
		result := FormatCount(test.input)
		if result != test.expected {
			t.Errorf("FormatCount(%d) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"short", 50, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer caption that will not fit", 10, "a longe..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."}, // clamped minimum leaves only the ellipsis
	}

	for _, test := range tests {
		result := Truncate(test.input, test.max)
		if result != test.expected {
			t.Errorf("Truncate(%q, %d) = %q, expected %q", test.input, test.max, result, test.expected)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("one\ntwo"); got != "one" {
		t.Errorf("FirstLine = %q, expected %q", got, "one")
	}
	if got := FirstLine("no newline"); got != "no newline" {
		t.Errorf("FirstLine = %q, expected %q", got, "no newline")
	}
}
