package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps free-text input before
// it reaches the services. Truncation happens on rune boundaries so a capped
// itinerary or enquiry message never ends mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen])
}
