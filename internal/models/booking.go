package models

import "time"

// Booking is a request to occupy a Space for a window of whole hours on a
// calendar day. SpaceName is denormalized at creation time so listings do
// not join against spaces.
type Booking struct {
	ID                int64     `json:"id"`
	PublicID          string    `json:"public_id"`
	Title             string    `json:"title"`
	Type              string    `json:"type"` // internal, external
	Responsible       string    `json:"responsible"`
	Contact           string    `json:"contact"`
	SpaceID           int64     `json:"space_id"`
	SpaceName         string    `json:"space_name"`
	ProjectID         int64     `json:"project_id,omitempty"`
	Date              time.Time `json:"date"`
	StartHour         int       `json:"start_hour"`
	EndHour           int       `json:"end_hour"`
	Description       string    `json:"description,omitempty"`
	Observations      string    `json:"observations,omitempty"`
	Status            string    `json:"status"`
	RejectionReason   string    `json:"rejection_reason,omitempty"`
	Recurrent         bool      `json:"recurrent"`
	RecurrencePattern string    `json:"recurrence_pattern,omitempty"`
	RecurrenceDays    []string  `json:"recurrence_days,omitempty"` // weekday names, weekly/biweekly only
	RecurrenceEndDate time.Time `json:"recurrence_end_date,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int64     `json:"version"`
}

// Blocks reports whether the booking holds its slot against other requests.
// Rejected and cancelled bookings free their hours immediately.
func (b *Booking) Blocks() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Terminal reports whether no further actor transition is allowed.
func (b *Booking) Terminal() bool {
	return b.Status == StatusRejected || b.Status == StatusCancelled
}
