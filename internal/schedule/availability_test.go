package schedule

import (
	"testing"
	"time"

	"arenabook/internal/models"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func booking(id, spaceID int64, d, start, end int, status string) *models.Booking {
	return &models.Booking{
		ID:        id,
		SpaceID:   spaceID,
		Date:      day(d),
		StartHour: start,
		EndHour:   end,
		Status:    status,
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
}

func TestValidHour(t *testing.T) {
	assert.False(t, ValidHour(models.OpeningHour-1))
	assert.True(t, ValidHour(models.OpeningHour))
	assert.True(t, ValidHour(models.ClosingHour-1))
	assert.False(t, ValidHour(models.ClosingHour))
}

func TestHoursOverlap(t *testing.T) {
	assert.True(t, HoursOverlap(10, 12, 11, 13))
	assert.True(t, HoursOverlap(10, 12, 10, 12))
	// Back to back windows do not overlap: the end hour is exclusive.
	assert.False(t, HoursOverlap(10, 12, 12, 14))
	assert.False(t, HoursOverlap(12, 14, 10, 12))
}

func TestFindOccupantHourBounds(t *testing.T) {
	b := booking(1, 1, 10, 10, 12, models.StatusConfirmed)
	snapshot := []*models.Booking{b}

	assert.Nil(t, FindOccupant(snapshot, 1, day(10), 9))
	assert.Equal(t, b, FindOccupant(snapshot, 1, day(10), 10))
	assert.Equal(t, b, FindOccupant(snapshot, 1, day(10), 11))
	// End hour is exclusive: a 10-12 booking leaves 12:00 free.
	assert.Nil(t, FindOccupant(snapshot, 1, day(10), 12))
}

func TestFindOccupantFiltersSpaceAndDay(t *testing.T) {
	b := booking(1, 1, 10, 10, 12, models.StatusConfirmed)
	snapshot := []*models.Booking{b}

	assert.Nil(t, FindOccupant(snapshot, 2, day(10), 10))
	assert.Nil(t, FindOccupant(snapshot, 1, day(11), 10))
	// Space 0 matches any space.
	assert.Equal(t, b, FindOccupant(snapshot, AllSpaces, day(10), 10))
}

func TestFindOccupantIgnoresNonBlocking(t *testing.T) {
	snapshot := []*models.Booking{
		booking(1, 1, 10, 10, 12, models.StatusRejected),
		booking(2, 1, 10, 10, 12, models.StatusCancelled),
	}
	assert.Nil(t, FindOccupant(snapshot, 1, day(10), 10))
}

func TestFindOccupantConfirmedBeatsPending(t *testing.T) {
	pending := booking(1, 1, 10, 10, 12, models.StatusPending)
	confirmed := booking(2, 1, 10, 10, 12, models.StatusConfirmed)

	got := FindOccupant([]*models.Booking{pending, confirmed}, 1, day(10), 10)
	assert.Equal(t, confirmed.ID, got.ID)

	// Order of the snapshot does not change the winner.
	got = FindOccupant([]*models.Booking{confirmed, pending}, 1, day(10), 10)
	assert.Equal(t, confirmed.ID, got.ID)
}

func TestFindOccupantTieBreakByCreatedAtThenID(t *testing.T) {
	older := booking(3, 1, 10, 10, 12, models.StatusPending)
	newer := booking(4, 1, 10, 10, 12, models.StatusPending)

	got := FindOccupant([]*models.Booking{newer, older}, 1, day(10), 10)
	assert.Equal(t, older.ID, got.ID)

	same1 := booking(5, 1, 10, 10, 12, models.StatusPending)
	same2 := booking(6, 1, 10, 10, 12, models.StatusPending)
	same2.CreatedAt = same1.CreatedAt

	got = FindOccupant([]*models.Booking{same2, same1}, 1, day(10), 10)
	assert.Equal(t, same1.ID, got.ID)
}
