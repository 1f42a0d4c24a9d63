package publisher

import "strings"

// SanitizeBMP strips characters outside the Basic Multilingual Plane.
// ChromeDriver's key injection rejects supplementary-plane runes (emoji and
// rare ideographs), so they are removed before typing. The function is
// idempotent: sanitized text passes through unchanged.
func SanitizeBMP(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0xFFFF {
			b.WriteRune(r)
		}
	}
	return b.String()
}
