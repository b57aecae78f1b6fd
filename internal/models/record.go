package models

import "time"

// DefaultCategory is used when a record is saved without a category.
const DefaultCategory = "General"

// Record is one logged training activity.
type Record struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	TrainingName string    `json:"training_name"`
	Category     string    `json:"category"`
	Hours        float64   `json:"hours"`
	Link         string    `json:"link"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// RecordFilter narrows a record listing. Zero values mean unbounded.
// Start and End are inclusive bounds on CreatedAt.
type RecordFilter struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// CategoryHours is one row of the per-category aggregate.
type CategoryHours struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
}
