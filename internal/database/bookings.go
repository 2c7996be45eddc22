package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"arenabook/internal/models"
)

const bookingColumns = `id, public_id, title, type, responsible, contact, space_id, space_name,
	       project_id, date(date), start_hour, end_hour, description, observations,
	       status, rejection_reason, recurrent, recurrence_pattern, recurrence_days,
	       recurrence_end_date, created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var (
		dateStr                            string
		projectID                          sql.NullInt64
		contact, description, observations sql.NullString
		rejectionReason, pattern, days     sql.NullString
		endDate                            sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.PublicID, &b.Title, &b.Type, &b.Responsible, &contact, &b.SpaceID, &b.SpaceName,
		&projectID, &dateStr, &b.StartHour, &b.EndHour, &description, &observations,
		&b.Status, &rejectionReason, &b.Recurrent, &pattern, &days,
		&endDate, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	b.Contact = contact.String
	b.Description = description.String
	b.Observations = observations.String
	b.RejectionReason = rejectionReason.String
	b.RecurrencePattern = pattern.String
	if projectID.Valid {
		b.ProjectID = projectID.Int64
	}
	if days.String != "" {
		b.RecurrenceDays = strings.Split(days.String, ",")
	}

	if b.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	if endDate.Valid && endDate.String != "" {
		if b.RecurrenceEndDate, err = time.Parse(dateLayout, endDate.String[:10]); err != nil {
			return nil, fmt.Errorf("failed to parse recurrence end date %s: %w", endDate.String, err)
		}
	}
	return b, nil
}

func bookingArgs(b *models.Booking, now time.Time) []any {
	var projectID any
	if b.ProjectID != 0 {
		projectID = b.ProjectID
	}
	var endDate any
	if !b.RecurrenceEndDate.IsZero() {
		endDate = b.RecurrenceEndDate.Format(dateLayout)
	}
	return []any{
		b.PublicID, b.Title, b.Type, b.Responsible, b.Contact, b.SpaceID, b.SpaceName,
		projectID, b.Date.Format(dateLayout), b.StartHour, b.EndHour, b.Description, b.Observations,
		b.Status, b.RejectionReason, b.Recurrent, b.RecurrencePattern,
		strings.Join(b.RecurrenceDays, ","), endDate, now, now, 1,
	}
}

const insertBooking = `INSERT INTO bookings (
			public_id, title, type, responsible, contact, space_id, space_name,
			project_id, date, start_hour, end_hour, description, observations,
			status, rejection_reason, recurrent, recurrence_pattern, recurrence_days,
			recurrence_end_date, created_at, updated_at, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateBookingWithLock inserts the booking after verifying, inside the same
// transaction, that no blocking booking overlaps the requested hour window.
// This is the server-side overlap constraint; client-side recomputation is
// advisory only.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var overlapping int
	queryCount := `SELECT COUNT(*) FROM bookings
	               WHERE space_id = ? AND date(date) = date(?)
	                 AND status IN (?, ?)
	                 AND start_hour < ? AND end_hour > ?`
	err = tx.QueryRowContext(ctx, queryCount,
		booking.SpaceID, booking.Date.Format(dateLayout),
		models.StatusPending, models.StatusConfirmed,
		booking.EndHour, booking.StartHour,
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrSlotTaken
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, insertBooking, bookingArgs(booking, now)...)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return tx.Commit()
}

// CreateBooking inserts without the overlap check. Used by fixtures and by
// imports that intentionally carry conflicting history.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, insertBooking, bookingArgs(booking, now)...)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetBookingByPublicID(ctx context.Context, publicID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE public_id = ?`
	return scanBooking(db.QueryRowContext(ctx, query, publicID))
}

// UpdateBookingStatusWithVersion transitions the persisted status guarded by
// the optimistic version counter. The rejection reason travels with the
// status so a reject is a single write.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status, reason string) error {
	query := `UPDATE bookings SET status = ?, rejection_reason = ?, version = version + 1, updated_at = ?
	          WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, reason, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// DeleteBooking hard-deletes the row. Irreversible.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBookingsByDateRange returns bookings between the two dates inclusive,
// optionally filtered by space (0 selects all spaces), ordered by date then
// creation time so conflict reports come out deterministic.
func (db *DB) GetBookingsByDateRange(ctx context.Context, spaceID int64, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE date(date) >= ? AND date(date) <= ?`
	args := []any{startDate.Format(dateLayout), endDate.Format(dateLayout)}
	if spaceID != 0 {
		query += ` AND space_id = ?`
		args = append(args, spaceID)
	}
	query += ` ORDER BY date ASC, created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetBookingsForDay returns the snapshot used by the availability grid.
func (db *DB) GetBookingsForDay(ctx context.Context, spaceID int64, date time.Time) ([]*models.Booking, error) {
	return db.GetBookingsByDateRange(ctx, spaceID, date, date)
}

// ListBookings pages through all bookings, newest date first.
func (db *DB) ListBookings(ctx context.Context, page, perPage int) ([]*models.Booking, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings
	          ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

// GetDailyBookings groups a range by date key for report rendering.
func (db *DB) GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, 0, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		dateKey := b.Date.Format(dateLayout)
		daily[dateKey] = append(daily[dateKey], b)
	}
	return daily, nil
}
