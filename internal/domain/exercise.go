// internal/domain/exercise.go
package domain

import "time"

// Exercise belongs to exactly one Workout.
type Exercise struct {
	ID        uint      `gorm:"primaryKey"`
	WorkoutID uint      `gorm:"not null;index"`
	Name      string    `gorm:"size:100;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Sets      []Set `gorm:"constraint:OnDelete:CASCADE"`

	// Workout is only loaded when ownership has to be resolved.
	Workout *Workout `gorm:"foreignKey:WorkoutID"`
}

// ExercisePatch carries the exercise fields present in a write payload.
type ExercisePatch struct {
	WorkoutID *uint
	Name      *string
}

// Apply copies the present fields onto e. The parent link is only moved
// when WorkoutID is set, which the reconciler never does.
func (p ExercisePatch) Apply(e *Exercise) {
	if p.WorkoutID != nil {
		e.WorkoutID = *p.WorkoutID
	}
	if p.Name != nil {
		e.Name = *p.Name
	}
}
