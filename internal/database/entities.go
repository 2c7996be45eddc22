package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"arenabook/internal/models"
)

// CRUD for the supporting entities of the portal: projects, modalities,
// teams and evaluations. They relate to bookings only loosely (a booking may
// carry a project id) so the queries stay independent of the booking tables.

func (db *DB) CreateProject(ctx context.Context, p *models.Project) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO projects (name, description, coordinator, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Coordinator, p.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.ID, _ = result.LastInsertId()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *DB) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	var description, coordinator sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, coordinator, status, created_at, updated_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &description, &coordinator, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.Description = description.String
	p.Coordinator = coordinator.String
	return p, nil
}

func (db *DB) ListProjects(ctx context.Context, page, perPage int) ([]*models.Project, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, coordinator, status, created_at, updated_at
		 FROM projects ORDER BY name ASC LIMIT ? OFFSET ?`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p := &models.Project{}
		var description, coordinator sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &coordinator, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		p.Description = description.String
		p.Coordinator = coordinator.String
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

func (db *DB) UpdateProject(ctx context.Context, p *models.Project) error {
	result, err := db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, coordinator = ?, status = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.Coordinator, p.Status, time.Now(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "projects", id)
}

func (db *DB) CreateModality(ctx context.Context, m *models.Modality) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO modalities (name, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		m.Name, m.Description, m.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create modality: %w", err)
	}
	m.ID, _ = result.LastInsertId()
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

func (db *DB) GetModality(ctx context.Context, id int64) (*models.Modality, error) {
	m := &models.Modality{}
	var description sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM modalities WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &description, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get modality: %w", err)
	}
	m.Description = description.String
	return m, nil
}

func (db *DB) ListModalities(ctx context.Context, page, perPage int) ([]*models.Modality, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM modalities`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count modalities: %w", err)
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, status, created_at, updated_at
		 FROM modalities ORDER BY name ASC LIMIT ? OFFSET ?`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list modalities: %w", err)
	}
	defer rows.Close()

	var modalities []*models.Modality
	for rows.Next() {
		m := &models.Modality{}
		var description sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &description, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan modality: %w", err)
		}
		m.Description = description.String
		modalities = append(modalities, m)
	}
	return modalities, total, rows.Err()
}

func (db *DB) UpdateModality(ctx context.Context, m *models.Modality) error {
	result, err := db.ExecContext(ctx,
		`UPDATE modalities SET name = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		m.Name, m.Description, m.Status, time.Now(), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update modality: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteModality(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "modalities", id)
}

func (db *DB) CreateTeam(ctx context.Context, t *models.Team) error {
	now := time.Now()
	var modalityID any
	if t.ModalityID != 0 {
		modalityID = t.ModalityID
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO teams (name, modality_id, instructor, description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Name, modalityID, t.Instructor, t.Description, t.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	t.ID, _ = result.LastInsertId()
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (db *DB) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	t := &models.Team{}
	var modalityID sql.NullInt64
	var instructor, description sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, modality_id, instructor, description, status, created_at, updated_at
		 FROM teams WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &modalityID, &instructor, &description, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	t.ModalityID = modalityID.Int64
	t.Instructor = instructor.String
	t.Description = description.String
	return t, nil
}

func (db *DB) ListTeams(ctx context.Context, page, perPage int) ([]*models.Team, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, modality_id, instructor, description, status, created_at, updated_at
		 FROM teams ORDER BY name ASC LIMIT ? OFFSET ?`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		t := &models.Team{}
		var modalityID sql.NullInt64
		var instructor, description sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &modalityID, &instructor, &description, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan team: %w", err)
		}
		t.ModalityID = modalityID.Int64
		t.Instructor = instructor.String
		t.Description = description.String
		teams = append(teams, t)
	}
	return teams, total, rows.Err()
}

func (db *DB) UpdateTeam(ctx context.Context, t *models.Team) error {
	var modalityID any
	if t.ModalityID != 0 {
		modalityID = t.ModalityID
	}
	result, err := db.ExecContext(ctx,
		`UPDATE teams SET name = ?, modality_id = ?, instructor = ?, description = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, modalityID, t.Instructor, t.Description, t.Status, time.Now(), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteTeam(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "teams", id)
}

func (db *DB) CreateEvaluation(ctx context.Context, e *models.Evaluation) error {
	now := time.Now()
	var teamID any
	if e.TeamID != 0 {
		teamID = e.TeamID
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO evaluations (athlete_name, team_id, date, notes, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.AthleteName, teamID, e.Date.Format(dateLayout), e.Notes, e.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	e.ID, _ = result.LastInsertId()
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

func (db *DB) GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error) {
	e := &models.Evaluation{}
	var teamID sql.NullInt64
	var notes sql.NullString
	var dateStr string
	err := db.QueryRowContext(ctx,
		`SELECT id, athlete_name, team_id, date(date), notes, status, created_at, updated_at
		 FROM evaluations WHERE id = ?`, id).
		Scan(&e.ID, &e.AthleteName, &teamID, &dateStr, &notes, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	e.TeamID = teamID.Int64
	e.Notes = notes.String
	if e.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation date %s: %w", dateStr, err)
	}
	return e, nil
}

func (db *DB) ListEvaluations(ctx context.Context, page, perPage int) ([]*models.Evaluation, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, athlete_name, team_id, date(date), notes, status, created_at, updated_at
		 FROM evaluations ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*models.Evaluation
	for rows.Next() {
		e := &models.Evaluation{}
		var teamID sql.NullInt64
		var notes sql.NullString
		var dateStr string
		if err := rows.Scan(&e.ID, &e.AthleteName, &teamID, &dateStr, &notes, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		e.TeamID = teamID.Int64
		e.Notes = notes.String
		if e.Date, err = time.Parse(dateLayout, dateStr); err != nil {
			return nil, 0, fmt.Errorf("failed to parse evaluation date %s: %w", dateStr, err)
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, total, rows.Err()
}

func (db *DB) UpdateEvaluation(ctx context.Context, e *models.Evaluation) error {
	var teamID any
	if e.TeamID != 0 {
		teamID = e.TeamID
	}
	result, err := db.ExecContext(ctx,
		`UPDATE evaluations SET athlete_name = ?, team_id = ?, date = ?, notes = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		e.AthleteName, teamID, e.Date.Format(dateLayout), e.Notes, e.Status, time.Now(), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update evaluation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteEvaluation(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "evaluations", id)
}

func (db *DB) deleteByID(ctx context.Context, table string, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
