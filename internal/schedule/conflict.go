package schedule

import (
	"sort"
	"time"

	"arenabook/internal/models"
)

// Conflict records an overlap between two blocking bookings on the same
// space and day. It is advisory: detection never throws away either booking.
type Conflict struct {
	BookingID     int64     `json:"booking_id"`
	WithBookingID int64     `json:"with_booking_id"`
	SpaceID       int64     `json:"space_id"`
	Date          time.Time `json:"date"`
	StartHour     int       `json:"start_hour"`
	EndHour       int       `json:"end_hour"`
}

// FindConflicts returns every pairwise overlap among blocking bookings in
// the snapshot, ordered by (date, space, booking ids). Each pair is reported
// once, with BookingID < WithBookingID.
func FindConflicts(bookings []*models.Booking) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(bookings); i++ {
		a := bookings[i]
		if a == nil || !a.Blocks() {
			continue
		}
		for j := i + 1; j < len(bookings); j++ {
			b := bookings[j]
			if b == nil || !b.Blocks() {
				continue
			}
			if a.SpaceID != b.SpaceID || !SameDay(a.Date, b.Date) {
				continue
			}
			if !HoursOverlap(a.StartHour, a.EndHour, b.StartHour, b.EndHour) {
				continue
			}
			first, second := a, b
			if second.ID < first.ID {
				first, second = second, first
			}
			conflicts = append(conflicts, Conflict{
				BookingID:     first.ID,
				WithBookingID: second.ID,
				SpaceID:       a.SpaceID,
				Date:          a.Date,
				StartHour:     max(a.StartHour, b.StartHour),
				EndHour:       min(a.EndHour, b.EndHour),
			})
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		ci, cj := conflicts[i], conflicts[j]
		if !ci.Date.Equal(cj.Date) {
			return ci.Date.Before(cj.Date)
		}
		if ci.SpaceID != cj.SpaceID {
			return ci.SpaceID < cj.SpaceID
		}
		if ci.BookingID != cj.BookingID {
			return ci.BookingID < cj.BookingID
		}
		return ci.WithBookingID < cj.WithBookingID
	})
	return conflicts
}

// ConflictedIDs collects the booking IDs that appear in any conflict.
func ConflictedIDs(conflicts []Conflict) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(conflicts)*2)
	for _, c := range conflicts {
		ids[c.BookingID] = struct{}{}
		ids[c.WithBookingID] = struct{}{}
	}
	return ids
}

// DisplayStatus layers the derived conflict annotation over the persisted
// status. The stored status is never modified, so a conflict disappears on
// its own once the overlapping booking is moved, rejected or deleted.
func DisplayStatus(b *models.Booking, conflicted map[int64]struct{}) string {
	if b.Blocks() {
		if _, ok := conflicted[b.ID]; ok {
			return models.StatusConflict
		}
	}
	return b.Status
}
