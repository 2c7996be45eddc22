package booking

import (
	"context"
	"testing"
	"time"

	"arenabook/internal/database"
	"arenabook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetSpace(ctx context.Context, id int64) (*models.Space, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Space), args.Error(1)
}

func (m *mockRepo) GetActiveSpaces(ctx context.Context) ([]*models.Space, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Space), args.Error(1)
}

func (m *mockRepo) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) GetBookingByPublicID(ctx context.Context, publicID string) (*models.Booking, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status, reason string) error {
	args := m.Called(ctx, id, fromVersion, status, reason)
	return args.Error(0)
}

func (m *mockRepo) DeleteBooking(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) GetBookingsByDateRange(ctx context.Context, spaceID int64, start, end time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, spaceID, start, end)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockRepo) GetBookingsForDay(ctx context.Context, spaceID int64, date time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, spaceID, date)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockRepo) ListBookings(ctx context.Context, page, perPage int) ([]*models.Booking, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]*models.Booking), args.Int(1), args.Error(2)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueScheduleExport(ctx context.Context, startDate, endDate time.Time) error {
	args := m.Called(ctx, startDate, endDate)
	return args.Error(0)
}

var (
	requester = models.Actor{ID: 10, Name: "Atleta", Role: models.RoleAthlete}
	moderator = models.Actor{ID: 1, Name: "Coordenador", Role: models.RoleCoordinator}
)

func newTestService(repo *mockRepo) (*Service, *mockPublisher, *mockWorker) {
	logger := zerolog.Nop()
	publisher := &mockPublisher{}
	worker := &mockWorker{}
	return NewService(repo, publisher, worker, 365, &logger), publisher, worker
}

func futureDate() time.Time {
	d := time.Now().AddDate(0, 0, 14)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func validBooking() *models.Booking {
	return &models.Booking{
		Title:       "Treino de natação",
		Type:        models.BookingTypeInternal,
		Responsible: "Carla Mendes",
		SpaceID:     1,
		Date:        futureDate(),
		StartHour:   10,
		EndHour:     12,
	}
}

func activeSpace() *models.Space {
	return &models.Space{ID: 1, Name: "Piscina Semiolímpica", Active: true}
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	svc, _, _ := newTestService(&mockRepo{})

	err := svc.Validate(&models.Booking{})
	require.Error(t, err)

	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.FieldErrors, "title")
	assert.Contains(t, v.FieldErrors, "responsible")
	assert.Contains(t, v.FieldErrors, "space_id")
	assert.Contains(t, v.FieldErrors, "type")
	assert.Contains(t, v.FieldErrors, "date")
}

func TestValidateHourBounds(t *testing.T) {
	svc, _, _ := newTestService(&mockRepo{})

	b := validBooking()
	b.StartHour = 7
	b.EndHour = 23

	var v *ValidationError
	require.ErrorAs(t, svc.Validate(b), &v)
	assert.Contains(t, v.FieldErrors, "start_hour")
	assert.Contains(t, v.FieldErrors, "end_hour")
}

func TestValidateStartAfterEnd(t *testing.T) {
	svc, _, _ := newTestService(&mockRepo{})

	b := validBooking()
	b.StartHour = 14
	b.EndHour = 12

	var v *ValidationError
	require.ErrorAs(t, svc.Validate(b), &v)
	assert.Contains(t, v.FieldErrors, "end_hour")
}

func TestValidatePastDate(t *testing.T) {
	svc, _, _ := newTestService(&mockRepo{})

	b := validBooking()
	b.Date = time.Now().AddDate(0, 0, -7)

	var v *ValidationError
	require.ErrorAs(t, svc.Validate(b), &v)
	assert.Contains(t, v.FieldErrors, "date")
}

func TestValidateRecurrence(t *testing.T) {
	svc, _, _ := newTestService(&mockRepo{})

	b := validBooking()
	b.Recurrent = true
	b.RecurrencePattern = "daily"

	var v *ValidationError
	require.ErrorAs(t, svc.Validate(b), &v)
	assert.Contains(t, v.FieldErrors, "recurrence_pattern")

	b = validBooking()
	b.Recurrent = true
	b.RecurrencePattern = models.PatternWeekly
	b.RecurrenceEndDate = b.Date.AddDate(0, 0, -1)
	require.ErrorAs(t, svc.Validate(b), &v)
	assert.Contains(t, v.FieldErrors, "recurrence_end_date")

	// Pattern on a one-off booking is an error too.
	b = validBooking()
	b.RecurrencePattern = models.PatternWeekly
	require.ErrorAs(t, svc.Validate(b), &v)
	assert.Contains(t, v.FieldErrors, "recurrence_pattern")
}

func TestCreateRequesterStartsPending(t *testing.T) {
	repo := &mockRepo{}
	svc, publisher, worker := newTestService(repo)

	b := validBooking()
	b.Status = models.StatusConfirmed // requester tries to skip approval

	repo.On("GetSpace", mock.Anything, int64(1)).Return(activeSpace(), nil)
	repo.On("CreateBookingWithLock", mock.Anything, b).Return(nil)
	publisher.On("PublishJSON", "booking_created", mock.Anything).Return(nil)
	worker.On("EnqueueScheduleExport", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Create(context.Background(), b, requester))

	assert.Equal(t, models.StatusPending, b.Status)
	assert.NotEmpty(t, b.PublicID)
	assert.Equal(t, "Piscina Semiolímpica", b.SpaceName)
	publisher.AssertExpectations(t)
	worker.AssertExpectations(t)
}

func TestCreateModeratorMayConfirmDirectly(t *testing.T) {
	repo := &mockRepo{}
	svc, publisher, worker := newTestService(repo)

	b := validBooking()
	b.Status = models.StatusConfirmed

	repo.On("GetSpace", mock.Anything, int64(1)).Return(activeSpace(), nil)
	repo.On("CreateBookingWithLock", mock.Anything, b).Return(nil)
	publisher.On("PublishJSON", "booking_created", mock.Anything).Return(nil)
	worker.On("EnqueueScheduleExport", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Create(context.Background(), b, moderator))
	assert.Equal(t, models.StatusConfirmed, b.Status)
}

func TestCreateInactiveSpace(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	space := activeSpace()
	space.Active = false
	repo.On("GetSpace", mock.Anything, int64(1)).Return(space, nil)

	var v *ValidationError
	err := svc.Create(context.Background(), validBooking(), requester)
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.FieldErrors, "space_id")
}

func TestCreateSlotTaken(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	repo.On("GetSpace", mock.Anything, int64(1)).Return(activeSpace(), nil)
	repo.On("CreateBookingWithLock", mock.Anything, mock.Anything).Return(database.ErrSlotTaken)

	err := svc.Create(context.Background(), validBooking(), requester)
	assert.ErrorIs(t, err, database.ErrSlotTaken)
}

func TestApprovePendingBooking(t *testing.T) {
	repo := &mockRepo{}
	svc, publisher, worker := newTestService(repo)

	b := validBooking()
	b.ID = 5
	b.Status = models.StatusPending
	b.Version = 2

	repo.On("GetBooking", mock.Anything, int64(5)).Return(b, nil)
	repo.On("GetBookingsForDay", mock.Anything, int64(1), b.Date).Return([]*models.Booking{b}, nil)
	repo.On("UpdateBookingStatusWithVersion", mock.Anything, int64(5), int64(2), models.StatusConfirmed, "").Return(nil)
	publisher.On("PublishJSON", "booking_approved", mock.Anything).Return(nil)
	worker.On("EnqueueScheduleExport", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Approve(context.Background(), 5, moderator))
	repo.AssertExpectations(t)
}

func TestApproveRequiresModerator(t *testing.T) {
	svc, _, _ := newTestService(&mockRepo{})
	err := svc.Approve(context.Background(), 5, requester)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestApproveConfirmedIsInvalidTransition(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	b := validBooking()
	b.ID = 5
	b.Status = models.StatusConfirmed
	repo.On("GetBooking", mock.Anything, int64(5)).Return(b, nil)

	err := svc.Approve(context.Background(), 5, moderator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApproveRechecksOverlap(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	b := validBooking()
	b.ID = 5
	b.Status = models.StatusPending

	other := validBooking()
	other.ID = 6
	other.Status = models.StatusConfirmed
	other.StartHour = 11
	other.EndHour = 13

	repo.On("GetBooking", mock.Anything, int64(5)).Return(b, nil)
	repo.On("GetBookingsForDay", mock.Anything, int64(1), b.Date).Return([]*models.Booking{b, other}, nil)

	err := svc.Approve(context.Background(), 5, moderator)
	assert.ErrorIs(t, err, database.ErrSlotTaken)
	repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectRequiresReason(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	var v *ValidationError
	err := svc.Reject(context.Background(), 5, "", moderator)
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.FieldErrors, "rejection_reason")
	repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectPendingBooking(t *testing.T) {
	repo := &mockRepo{}
	svc, publisher, worker := newTestService(repo)

	b := validBooking()
	b.ID = 5
	b.Status = models.StatusPending
	b.Version = 1

	repo.On("GetBooking", mock.Anything, int64(5)).Return(b, nil)
	repo.On("UpdateBookingStatusWithVersion", mock.Anything, int64(5), int64(1), models.StatusRejected, "espaço em manutenção").Return(nil)
	publisher.On("PublishJSON", "booking_rejected", mock.Anything).Return(nil)
	worker.On("EnqueueScheduleExport", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Reject(context.Background(), 5, "espaço em manutenção", moderator))
}

func TestCancelConfirmedOnly(t *testing.T) {
	repo := &mockRepo{}
	svc, publisher, worker := newTestService(repo)

	b := validBooking()
	b.ID = 5
	b.Status = models.StatusPending
	repo.On("GetBooking", mock.Anything, int64(5)).Return(b, nil)

	err := svc.Cancel(context.Background(), 5, moderator)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	b.Status = models.StatusConfirmed
	b.Version = 3
	repo.On("UpdateBookingStatusWithVersion", mock.Anything, int64(5), int64(3), models.StatusCancelled, "").Return(nil)
	publisher.On("PublishJSON", "booking_cancelled", mock.Anything).Return(nil)
	worker.On("EnqueueScheduleExport", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Cancel(context.Background(), 5, moderator))
}

func TestDeleteFromAnyState(t *testing.T) {
	repo := &mockRepo{}
	svc, publisher, worker := newTestService(repo)

	b := validBooking()
	b.ID = 5
	b.Status = models.StatusRejected
	repo.On("GetBooking", mock.Anything, int64(5)).Return(b, nil)
	repo.On("DeleteBooking", mock.Anything, int64(5)).Return(nil)
	publisher.On("PublishJSON", "booking_deleted", mock.Anything).Return(nil)
	worker.On("EnqueueScheduleExport", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 5, moderator))
}

func TestOccurrencesTagConflicts(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	start := futureDate()
	b := validBooking()
	b.ID = 5
	b.Status = models.StatusConfirmed
	b.Date = start
	b.Recurrent = true
	b.RecurrencePattern = models.PatternWeekly
	b.RecurrenceEndDate = start.AddDate(0, 0, 14)

	// A confirmed booking overlaps the second occurrence date.
	other := validBooking()
	other.ID = 6
	other.Status = models.StatusConfirmed
	other.Date = start.AddDate(0, 0, 7)
	other.StartHour = 11
	other.EndHour = 13

	repo.On("GetBooking", mock.Anything, int64(5)).Return(b, nil)
	repo.On("GetBookingsByDateRange", mock.Anything, int64(1), b.Date, b.RecurrenceEndDate).
		Return([]*models.Booking{b, other}, nil)

	_, occurrences, err := svc.Occurrences(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, occurrences, 3)
	assert.Equal(t, models.StatusConfirmed, occurrences[0].Status)
	assert.Equal(t, models.StatusConflict, occurrences[1].Status)
	assert.Equal(t, models.StatusConfirmed, occurrences[2].Status)
}

func TestAvailabilityGrid(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	date := futureDate()
	occupied := validBooking()
	occupied.ID = 5
	occupied.Status = models.StatusConfirmed
	occupied.Date = date

	repo.On("GetBookingsForDay", mock.Anything, int64(1), date).Return([]*models.Booking{occupied}, nil)

	slots, err := svc.Availability(context.Background(), 1, date)
	require.NoError(t, err)
	require.Len(t, slots, models.ClosingHour-models.OpeningHour)

	for _, slot := range slots {
		if slot.Hour >= occupied.StartHour && slot.Hour < occupied.EndHour {
			assert.Equal(t, models.StatusConfirmed, slot.Status, "hour %d", slot.Hour)
			require.NotNil(t, slot.Booking)
			assert.Equal(t, occupied.ID, slot.Booking.ID)
		} else {
			assert.Equal(t, SlotFree, slot.Status, "hour %d", slot.Hour)
			assert.Nil(t, slot.Booking)
		}
	}
}

func TestAvailabilityMarksOverlapsAsConflict(t *testing.T) {
	repo := &mockRepo{}
	svc, _, _ := newTestService(repo)

	date := futureDate()
	a := validBooking()
	a.ID = 5
	a.Status = models.StatusConfirmed
	a.Date = date

	b := validBooking()
	b.ID = 6
	b.Status = models.StatusPending
	b.Date = date
	b.StartHour = 11
	b.EndHour = 13

	repo.On("GetBookingsForDay", mock.Anything, int64(1), date).Return([]*models.Booking{a, b}, nil)

	slots, err := svc.Availability(context.Background(), 1, date)
	require.NoError(t, err)

	byHour := make(map[int]HourSlot)
	for _, s := range slots {
		byHour[s.Hour] = s
	}
	// The confirmed booking wins the overlapping hour but is displayed as
	// in conflict.
	assert.Equal(t, models.StatusConflict, byHour[11].Status)
	assert.Equal(t, int64(5), byHour[11].Booking.ID)
	// Hour 12 belongs to the pending booking alone, still conflicted.
	assert.Equal(t, models.StatusConflict, byHour[12].Status)
	assert.Equal(t, int64(6), byHour[12].Booking.ID)
}
