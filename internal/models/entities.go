package models

import "time"

// Project groups activities of the training center. Bookings may reference
// one by ID; nothing else in the booking flow depends on it.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Coordinator string    `json:"coordinator,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Modality is a sports modality offered by the center.
type Modality struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Team is a training group tied to a modality.
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ModalityID  int64     `json:"modality_id,omitempty"`
	Instructor  string    `json:"instructor,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Evaluation is a physical evaluation record for an athlete.
type Evaluation struct {
	ID          int64     `json:"id"`
	AthleteName string    `json:"athlete_name"`
	TeamID      int64     `json:"team_id,omitempty"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
