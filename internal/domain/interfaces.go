package domain

import (
	"context"
	"time"

	"arenabook/internal/models"
)

// Repository is the storage surface the booking service depends on.
// internal/database implements it; tests substitute a mock.
type Repository interface {
	GetSpace(ctx context.Context, id int64) (*models.Space, error)
	GetActiveSpaces(ctx context.Context) ([]*models.Space, error)

	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByPublicID(ctx context.Context, publicID string) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status, reason string) error
	DeleteBooking(ctx context.Context, id int64) error
	GetBookingsByDateRange(ctx context.Context, spaceID int64, start, end time.Time) ([]*models.Booking, error)
	GetBookingsForDay(ctx context.Context, spaceID int64, date time.Time) ([]*models.Booking, error)
	ListBookings(ctx context.Context, page, perPage int) ([]*models.Booking, int, error)
}

// EventPublisher fans a domain event out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ReportWorker accepts asynchronous schedule-export tasks.
type ReportWorker interface {
	EnqueueScheduleExport(ctx context.Context, startDate, endDate time.Time) error
}

// SessionStore keeps bearer tokens alive for the portal's 30-day cookie.
type SessionStore interface {
	Get(ctx context.Context, token string) (*models.Session, error)
	Set(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
