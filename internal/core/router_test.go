package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	r := NewRouter()

	cases := []struct {
		text string
		want ServiceCategory
	}{
		{"Can you send someone to clean my room?", ServiceRoomService},
		{"Where can I get breakfast?", ServiceDining},
		{"I'd love a massage", ServiceWellness},
		{"I need a taxi to the airport", ServiceTransportation},
		{"Any concerts tonight?", ServiceEntertainment},
		{"I need a quiet office for a conference call", ServiceBusiness},
		{"This is an emergency!", ServiceEmergency},
		{"I am so stressed about tomorrow's meeting", ServiceGeneral},
		{"", ServiceGeneral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, r.Route(tc.text), tc.text)
	}
}

func TestRouteFirstMatchWins(t *testing.T) {
	r := NewRouter()

	// Room service is checked before dining and emergency.
	assert.Equal(t, ServiceRoomService, r.Route("Help, my room has no food"))
	// Dining is checked before transportation.
	assert.Equal(t, ServiceDining, r.Route("Book a car to the restaurant"))
}

func TestRouteIsTotal(t *testing.T) {
	r := NewRouter()

	for _, text := range []string{"???", "日本語", "  \n\t"} {
		assert.Contains(t, ServiceCategories, r.Route(text))
	}
}
