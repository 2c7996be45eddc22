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

const spaceColumns = `id, name, type, capacity, location, description, image_url,
	       active, resources, sort_order, created_at, updated_at`

func scanSpace(row rowScanner) (*models.Space, error) {
	s := &models.Space{}
	var location, description, imageURL, resources sql.NullString
	err := row.Scan(
		&s.ID, &s.Name, &s.Type, &s.Capacity, &location, &description, &imageURL,
		&s.Active, &resources, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan space: %w", err)
	}
	s.Location = location.String
	s.Description = description.String
	s.ImageURL = imageURL.String
	if resources.String != "" {
		s.Resources = strings.Split(resources.String, ",")
	}
	return s, nil
}

func (db *DB) CreateSpace(ctx context.Context, space *models.Space) error {
	query := `INSERT INTO spaces (name, type, capacity, location, description, image_url,
	                              active, resources, sort_order, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		space.Name, space.Type, space.Capacity, space.Location, space.Description, space.ImageURL,
		space.Active, strings.Join(space.Resources, ","), space.SortOrder, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	space.ID = id
	space.CreatedAt = now
	space.UpdatedAt = now
	return nil
}

func (db *DB) GetSpace(ctx context.Context, id int64) (*models.Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM spaces WHERE id = ?`
	return scanSpace(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetActiveSpaces(ctx context.Context) ([]*models.Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM spaces WHERE active = 1 ORDER BY sort_order ASC, id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active spaces: %w", err)
	}
	defer rows.Close()

	var spaces []*models.Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

func (db *DB) ListSpaces(ctx context.Context, page, perPage int) ([]*models.Space, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spaces`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count spaces: %w", err)
	}

	query := `SELECT ` + spaceColumns + ` FROM spaces ORDER BY sort_order ASC, id ASC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list spaces: %w", err)
	}
	defer rows.Close()

	var spaces []*models.Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, 0, err
		}
		spaces = append(spaces, s)
	}
	return spaces, total, rows.Err()
}

func (db *DB) UpdateSpace(ctx context.Context, space *models.Space) error {
	query := `UPDATE spaces SET name = ?, type = ?, capacity = ?, location = ?, description = ?,
	                            image_url = ?, active = ?, resources = ?, sort_order = ?, updated_at = ?
	          WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		space.Name, space.Type, space.Capacity, space.Location, space.Description,
		space.ImageURL, space.Active, strings.Join(space.Resources, ","), space.SortOrder, time.Now(),
		space.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update space: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateSpace hides the space from new bookings without touching history.
func (db *DB) DeactivateSpace(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `UPDATE spaces SET active = 0, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate space: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedSpaces inserts the configured spaces when the table is still empty,
// so a fresh deployment comes up with the facility layout from config.
func (db *DB) SeedSpaces(ctx context.Context, spaces []models.Space) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spaces`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count spaces: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i := range spaces {
		if err := db.CreateSpace(ctx, &spaces[i]); err != nil {
			return err
		}
	}
	return nil
}
