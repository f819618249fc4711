package chat

import "strings"

// appointmentKeywords is the fixed vocabulary matched against the latest
// user message only, never the full transcript.
var appointmentKeywords = []string{
	"appointment",
	"schedule",
	"book",
	"meeting",
	"consultation",
	"call",
	"demo",
	"session",
	"available",
	"calendar",
}

// DetectAppointmentIntent reports whether the message signals booking
// intent. Case-insensitive substring match; no persistence.
func DetectAppointmentIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range appointmentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
