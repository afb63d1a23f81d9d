// internal/domain/workout.go
package domain

import "time"

// Workout is the root of the workout → exercises → sets tree.
type Workout struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"not null;index"` // Owner; never client-writable
	Date      time.Time  `gorm:"type:date;not null;index"`
	Name      string     `gorm:"size:100;not null"`
	Notes     string     `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Exercises []Exercise `gorm:"constraint:OnDelete:CASCADE"` // Insertion order (by ID)
}

// DateLayout is the wire and storage format of Workout.Date.
const DateLayout = "2006-01-02"

// WorkoutPatch carries the workout fields present in a write payload.
// A nil field is left untouched.
type WorkoutPatch struct {
	Date  *time.Time
	Name  *string
	Notes *string
}

// Apply copies the present fields onto w.
func (p WorkoutPatch) Apply(w *Workout) {
	if p.Date != nil {
		w.Date = *p.Date
	}
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
}
