package schedule

import (
	"time"

	"arenabook/internal/models"
)

// AllSpaces selects every space when passed as the spaceID filter.
const AllSpaces int64 = 0

// ValidHour reports whether h is a bookable hour within operating range.
// The last bookable hour starts one hour before closing.
func ValidHour(h int) bool {
	return h >= models.OpeningHour && h < models.ClosingHour
}

// SameDay compares two timestamps by calendar day, ignoring time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Occupies reports whether b holds the slot (spaceID, date, hour).
// Rejected and cancelled bookings never occupy.
func Occupies(b *models.Booking, spaceID int64, date time.Time, hour int) bool {
	if b == nil || !b.Blocks() {
		return false
	}
	if spaceID != AllSpaces && b.SpaceID != spaceID {
		return false
	}
	return SameDay(b.Date, date) && b.StartHour <= hour && hour < b.EndHour
}

// FindOccupant returns the booking occupying (spaceID, date, hour) among the
// snapshot, or nil when the slot is free. When more than one booking matches
// the winner is chosen deterministically: confirmed beats pending, then the
// earlier CreatedAt, then the lower ID. The losing bookings are not hidden;
// callers surface them through FindConflicts.
func FindOccupant(bookings []*models.Booking, spaceID int64, date time.Time, hour int) *models.Booking {
	var winner *models.Booking
	for _, b := range bookings {
		if !Occupies(b, spaceID, date, hour) {
			continue
		}
		if winner == nil || outranks(b, winner) {
			winner = b
		}
	}
	return winner
}

func outranks(a, b *models.Booking) bool {
	if a.Status != b.Status {
		return a.Status == models.StatusConfirmed
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// HoursOverlap reports whether the two half-open hour windows intersect.
func HoursOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
