package models

import "time"

// Space is a bookable facility unit: a court, pool or room. Bookings hold a
// weak reference to it by ID.
type Space struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Type        string    `json:"type" yaml:"type"`
	Capacity    int64     `json:"capacity" yaml:"capacity"`
	Location    string    `json:"location,omitempty" yaml:"location"`
	Description string    `json:"description,omitempty" yaml:"description"`
	ImageURL    string    `json:"image_url,omitempty" yaml:"image_url"`
	Active      bool      `json:"active" yaml:"active"`
	Resources   []string  `json:"resources,omitempty" yaml:"resources"`
	SortOrder   int64     `json:"sort_order" yaml:"sort_order"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}
