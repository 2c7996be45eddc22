package schedule

import (
	"testing"

	"arenabook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConflictsReportsOverlap(t *testing.T) {
	a := booking(1, 1, 10, 10, 12, models.StatusConfirmed)
	b := booking(2, 1, 10, 11, 13, models.StatusPending)

	conflicts := FindConflicts([]*models.Booking{a, b})
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, int64(1), c.BookingID)
	assert.Equal(t, int64(2), c.WithBookingID)
	assert.Equal(t, int64(1), c.SpaceID)
	assert.Equal(t, 11, c.StartHour)
	assert.Equal(t, 12, c.EndHour)
}

func TestFindConflictsPairOrderIsStable(t *testing.T) {
	a := booking(7, 1, 10, 10, 12, models.StatusPending)
	b := booking(3, 1, 10, 11, 13, models.StatusPending)

	conflicts := FindConflicts([]*models.Booking{a, b})
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(3), conflicts[0].BookingID)
	assert.Equal(t, int64(7), conflicts[0].WithBookingID)
}

func TestFindConflictsSkipsNonBlockingAndDisjoint(t *testing.T) {
	snapshot := []*models.Booking{
		booking(1, 1, 10, 10, 12, models.StatusConfirmed),
		booking(2, 1, 10, 12, 14, models.StatusConfirmed), // adjacent, no overlap
		booking(3, 1, 10, 10, 12, models.StatusRejected),  // freed its slot
		booking(4, 2, 10, 10, 12, models.StatusConfirmed), // other space
		booking(5, 1, 11, 10, 12, models.StatusConfirmed), // other day
	}
	assert.Empty(t, FindConflicts(snapshot))
}

func TestFindConflictsEveryPairSurfaced(t *testing.T) {
	// Three bookings on the same window produce three pairs; none is hidden.
	snapshot := []*models.Booking{
		booking(1, 1, 10, 10, 12, models.StatusConfirmed),
		booking(2, 1, 10, 10, 12, models.StatusPending),
		booking(3, 1, 10, 11, 13, models.StatusPending),
	}
	conflicts := FindConflicts(snapshot)
	assert.Len(t, conflicts, 3)
}

func TestDisplayStatus(t *testing.T) {
	a := booking(1, 1, 10, 10, 12, models.StatusConfirmed)
	b := booking(2, 1, 10, 11, 13, models.StatusPending)
	rejected := booking(3, 1, 10, 10, 12, models.StatusRejected)

	conflicted := ConflictedIDs(FindConflicts([]*models.Booking{a, b, rejected}))

	assert.Equal(t, models.StatusConflict, DisplayStatus(a, conflicted))
	assert.Equal(t, models.StatusConflict, DisplayStatus(b, conflicted))
	// The persisted status is untouched.
	assert.Equal(t, models.StatusConfirmed, a.Status)
	// Non-blocking bookings keep their own status even if listed.
	assert.Equal(t, models.StatusRejected, DisplayStatus(rejected, conflicted))
}

func TestConflictAnnotationDisappearsWhenResolved(t *testing.T) {
	a := booking(1, 1, 10, 10, 12, models.StatusConfirmed)
	b := booking(2, 1, 10, 11, 13, models.StatusPending)

	conflicted := ConflictedIDs(FindConflicts([]*models.Booking{a, b}))
	assert.Equal(t, models.StatusConflict, DisplayStatus(a, conflicted))

	// Rejecting the other booking clears the annotation on the next read.
	b.Status = models.StatusRejected
	conflicted = ConflictedIDs(FindConflicts([]*models.Booking{a, b}))
	assert.Equal(t, models.StatusConfirmed, DisplayStatus(a, conflicted))
}
