package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCountersAcceptValues(t *testing.T) {
	Register()
	assert.NotPanics(t, func() {
		IncHTTP("GET /api/v1/bookings", "200")
		IncTransition("booking_approved")
		IncConflicts(2)
	})
}
