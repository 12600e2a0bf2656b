package common

import "strings"

// FormatCount renders an integer with thousands separators (12,345).
func FormatCount(n int) string {
	negative := n < 0
	if negative {
		n = -n
	}

	digits := []byte{}
	for {
		digits = append(digits, byte('0'+n%10))
		n /= 10
		if n == 0 {
			break
		}
	}

	var out strings.Builder
	if negative {
		out.WriteByte('-')
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			out.WriteByte(',')
		}
	}
	return out.String()
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	if max <= 3 {
		max = 3
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// FirstLine returns s up to the first newline. Captions come back from the
// platform with embedded newlines that break table rendering.
func FirstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
