package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAppointmentIntent(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"Can I book a consultation?", true},
		{"I'd like to SCHEDULE something", true},
		{"are you available tomorrow", true},
		{"let's set up a demo", true},
		{"What is your return policy?", false},
		{"tell me about pricing", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectAppointmentIntent(tc.message), "message %q", tc.message)
	}
}
