package booking

import (
	"context"
	"fmt"
	"time"

	"arenabook/internal/database"
	"arenabook/internal/domain"
	"arenabook/internal/events"
	"arenabook/internal/models"
	"arenabook/internal/recurrence"
	"arenabook/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service implements the booking lifecycle: creation with server-side
// overlap enforcement, the approve/reject/cancel state machine, recurrence
// expansion and the per-hour availability view.
type Service struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	reportWorker   domain.ReportWorker
	expander       *recurrence.Expander
	maxAdvanceDays int
	logger         *zerolog.Logger
}

func NewService(repo domain.Repository, eventBus domain.EventPublisher, reportWorker domain.ReportWorker, maxAdvanceDays int, logger *zerolog.Logger) *Service {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = 365
	}
	return &Service{
		repo:           repo,
		eventBus:       eventBus,
		reportWorker:   reportWorker,
		expander:       recurrence.NewExpander(),
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

// Validate checks the booking request fields. Returns a *ValidationError
// describing every offending field, or nil.
func (s *Service) Validate(b *models.Booking) error {
	v := &ValidationError{}

	if b.Title == "" {
		v.add("title", "title is required")
	}
	if b.Responsible == "" {
		v.add("responsible", "responsible person is required")
	}
	if b.SpaceID == 0 {
		v.add("space_id", "space is required")
	}
	if b.Type != models.BookingTypeInternal && b.Type != models.BookingTypeExternal {
		v.add("type", "type must be internal or external")
	}
	if b.Date.IsZero() {
		v.add("date", "date is required")
	} else {
		if b.Date.Before(time.Now().AddDate(0, 0, -1)) {
			v.add("date", "date is in the past")
		}
		if b.Date.After(time.Now().AddDate(0, 0, s.maxAdvanceDays)) {
			v.add("date", fmt.Sprintf("date is more than %d days ahead", s.maxAdvanceDays))
		}
	}

	if b.StartHour < models.OpeningHour || b.StartHour >= models.ClosingHour {
		v.add("start_hour", fmt.Sprintf("start hour must be between %d and %d", models.OpeningHour, models.ClosingHour-1))
	}
	if b.EndHour <= models.OpeningHour || b.EndHour > models.ClosingHour {
		v.add("end_hour", fmt.Sprintf("end hour must be between %d and %d", models.OpeningHour+1, models.ClosingHour))
	}
	if b.StartHour >= b.EndHour {
		v.add("end_hour", "end hour must be after start hour")
	}

	if b.Recurrent {
		switch b.RecurrencePattern {
		case models.PatternWeekly, models.PatternBiweekly, models.PatternMonthly:
		default:
			v.add("recurrence_pattern", "pattern must be weekly, biweekly or monthly")
		}
		if !b.RecurrenceEndDate.IsZero() && b.RecurrenceEndDate.Before(b.Date) {
			v.add("recurrence_end_date", "recurrence end date precedes the start date")
		}
	} else if b.RecurrencePattern != "" {
		v.add("recurrence_pattern", "pattern set on a non-recurring booking")
	}

	if v.hasErrors() {
		return v
	}
	return nil
}

// Create validates and persists a booking request. Requesters start in
// pending; an actor with a moderating role may create directly as confirmed.
// The overlap check runs inside the insert transaction, so two racing
// requests for the same slot cannot both land.
func (s *Service) Create(ctx context.Context, b *models.Booking, actor models.Actor) error {
	if err := s.Validate(b); err != nil {
		return err
	}

	space, err := s.repo.GetSpace(ctx, b.SpaceID)
	if err != nil {
		return err
	}
	if !space.Active {
		return &ValidationError{FieldErrors: map[string]string{"space_id": "space is inactive"}}
	}
	b.SpaceName = space.Name

	if b.Status == models.StatusConfirmed && actor.CanModerate() {
		// authorized creators may bypass approval
	} else {
		b.Status = models.StatusPending
	}
	b.RejectionReason = ""
	b.PublicID = uuid.NewString()

	if err := s.repo.CreateBookingWithLock(ctx, b); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCreated, b, actor, "")
	s.enqueueExport(ctx, b.Date)
	return nil
}

// Approve moves a pending booking to confirmed. Approving a booking in any
// other state, including confirmed, fails with ErrInvalidTransition.
func (s *Service) Approve(ctx context.Context, id int64, actor models.Actor) error {
	if !actor.CanModerate() {
		return ErrUnauthorized
	}

	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != models.StatusPending {
		return ErrInvalidTransition
	}

	// Approval re-checks the slot: another booking may have been confirmed
	// for the same window while this one sat in the queue.
	snapshot, err := s.repo.GetBookingsForDay(ctx, b.SpaceID, b.Date)
	if err != nil {
		return err
	}
	for _, other := range snapshot {
		if other.ID == b.ID || other.Status != models.StatusConfirmed {
			continue
		}
		if schedule.HoursOverlap(b.StartHour, b.EndHour, other.StartHour, other.EndHour) {
			return database.ErrSlotTaken
		}
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, models.StatusConfirmed, ""); err != nil {
		return err
	}

	b.Status = models.StatusConfirmed
	s.publishEvent(events.EventBookingApproved, b, actor, "")
	s.enqueueExport(ctx, b.Date)
	return nil
}

// Reject moves a pending booking to rejected. The reason is mandatory and
// is stored with the booking; the persisted status is untouched when the
// reason is missing.
func (s *Service) Reject(ctx context.Context, id int64, reason string, actor models.Actor) error {
	if !actor.CanModerate() {
		return ErrUnauthorized
	}
	if reason == "" {
		return &ValidationError{FieldErrors: map[string]string{"rejection_reason": "rejection reason is required"}}
	}

	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != models.StatusPending {
		return ErrInvalidTransition
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, models.StatusRejected, reason); err != nil {
		return err
	}

	b.Status = models.StatusRejected
	s.publishEvent(events.EventBookingRejected, b, actor, reason)
	s.enqueueExport(ctx, b.Date)
	return nil
}

// Cancel moves a confirmed booking to cancelled. Pending bookings are
// rejected, not cancelled; terminal bookings stay where they are.
func (s *Service) Cancel(ctx context.Context, id int64, actor models.Actor) error {
	if !actor.CanModerate() {
		return ErrUnauthorized
	}

	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != models.StatusConfirmed {
		return ErrInvalidTransition
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, models.StatusCancelled, ""); err != nil {
		return err
	}

	b.Status = models.StatusCancelled
	s.publishEvent(events.EventBookingCancelled, b, actor, "")
	s.enqueueExport(ctx, b.Date)
	return nil
}

// Delete hard-deletes the booking from any state. Irreversible.
func (s *Service) Delete(ctx context.Context, id int64, actor models.Actor) error {
	if !actor.CanModerate() {
		return ErrUnauthorized
	}

	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingDeleted, b, actor, "")
	s.enqueueExport(ctx, b.Date)
	return nil
}

// Occurrences expands a recurring booking into its dated occurrences. Each
// occurrence is tagged with the parent's status, or with conflict when
// another blocking booking overlaps the window on that date. The statuses
// are computed from the persisted snapshot, never randomized.
func (s *Service) Occurrences(ctx context.Context, id int64) (*models.Booking, []recurrence.Occurrence, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	end := b.RecurrenceEndDate
	if end.IsZero() {
		end = b.Date.AddDate(0, 0, models.DefaultRecurrenceDays)
	}
	snapshot, err := s.repo.GetBookingsByDateRange(ctx, b.SpaceID, b.Date, end)
	if err != nil {
		return nil, nil, err
	}

	status := func(date time.Time) string {
		for _, other := range snapshot {
			if other.ID == b.ID || !other.Blocks() {
				continue
			}
			if schedule.SameDay(other.Date, date) && schedule.HoursOverlap(b.StartHour, b.EndHour, other.StartHour, other.EndHour) {
				return models.StatusConflict
			}
		}
		return b.Status
	}

	occurrences, err := s.expander.Expand(b, status)
	if err != nil {
		return nil, nil, err
	}
	return b, occurrences, nil
}

// HourSlot is one cell of the availability grid.
type HourSlot struct {
	Hour    int             `json:"hour"`
	Status  string          `json:"status"`
	Booking *models.Booking `json:"booking,omitempty"`
}

// SlotFree marks an hour with no occupying booking.
const SlotFree = "free"

// Availability returns the per-hour occupancy of a space on a date.
// Occupants carry their display status, so overlapping bookings show up as
// conflict here without any stored conflict state.
func (s *Service) Availability(ctx context.Context, spaceID int64, date time.Time) ([]HourSlot, error) {
	snapshot, err := s.repo.GetBookingsForDay(ctx, spaceID, date)
	if err != nil {
		return nil, err
	}

	conflicted := schedule.ConflictedIDs(schedule.FindConflicts(snapshot))

	slots := make([]HourSlot, 0, models.ClosingHour-models.OpeningHour)
	for hour := models.OpeningHour; hour < models.ClosingHour; hour++ {
		slot := HourSlot{Hour: hour, Status: SlotFree}
		if occupant := schedule.FindOccupant(snapshot, spaceID, date, hour); occupant != nil {
			slot.Status = schedule.DisplayStatus(occupant, conflicted)
			slot.Booking = occupant
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// Conflicts reports every overlap among blocking bookings in the range.
func (s *Service) Conflicts(ctx context.Context, spaceID int64, start, end time.Time) ([]schedule.Conflict, error) {
	snapshot, err := s.repo.GetBookingsByDateRange(ctx, spaceID, start, end)
	if err != nil {
		return nil, err
	}
	return schedule.FindConflicts(snapshot), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *Service) GetByPublicID(ctx context.Context, publicID string) (*models.Booking, error) {
	return s.repo.GetBookingByPublicID(ctx, publicID)
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]*models.Booking, int, error) {
	return s.repo.ListBookings(ctx, page, perPage)
}

func (s *Service) ByRange(ctx context.Context, spaceID int64, start, end time.Time) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, spaceID, start, end)
}

func (s *Service) publishEvent(eventType string, b *models.Booking, actor models.Actor, reason string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   b.ID,
		PublicID:    b.PublicID,
		Title:       b.Title,
		SpaceID:     b.SpaceID,
		SpaceName:   b.SpaceName,
		Date:        b.Date,
		StartHour:   b.StartHour,
		EndHour:     b.EndHour,
		Status:      b.Status,
		Reason:      reason,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Responsible: b.Responsible,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", b.ID).Msg("publish event error")
	}
}

func (s *Service) enqueueExport(ctx context.Context, date time.Time) {
	if s.reportWorker == nil {
		return
	}

	// Refresh the week the booking lands in.
	weekday := int(date.Weekday())
	start := date.AddDate(0, 0, -weekday)
	end := start.AddDate(0, 0, 6)
	if err := s.reportWorker.EnqueueScheduleExport(ctx, start, end); err != nil {
		s.logger.Error().Err(err).Msg("schedule export enqueue error")
	}
}
