// internal/domain/set.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Set is one logged set of an Exercise.
type Set struct {
	ID         uint            `gorm:"primaryKey"`
	ExerciseID uint            `gorm:"not null;index"`
	SetNumber  int             `gorm:"not null"`
	Reps       int             `gorm:"not null"`
	Weight     decimal.Decimal `gorm:"type:numeric(5,2);not null"` // 5 digits, 2 after the point
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Exercise *Exercise `gorm:"foreignKey:ExerciseID"`
}

// SetPatch carries the set fields present in a write payload.
type SetPatch struct {
	ExerciseID *uint
	SetNumber  *int
	Reps       *int
	Weight     *decimal.Decimal
}

// Apply copies the present fields onto s.
func (p SetPatch) Apply(s *Set) {
	if p.ExerciseID != nil {
		s.ExerciseID = *p.ExerciseID
	}
	if p.SetNumber != nil {
		s.SetNumber = *p.SetNumber
	}
	if p.Reps != nil {
		s.Reps = *p.Reps
	}
	if p.Weight != nil {
		s.Weight = *p.Weight
	}
}
