package repository

import (
	"context"
	"time"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/reconcile"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Page selects a window of a listing.
type Page struct {
	Offset int
	Limit  int
}

// WorkoutFilter narrows a workout listing. UserID is always applied.
type WorkoutFilter struct {
	UserID uint
	Date   *time.Time
	Name   *string
	// Ordering is a column name, optionally prefixed with '-' for
	// descending order. Empty means newest date first.
	Ordering string
}

// ExerciseFilter narrows an exercise listing to the caller's tree.
type ExerciseFilter struct {
	UserID    uint
	WorkoutID *uint
}

// SetFilter narrows a set listing to the caller's tree.
type SetFilter struct {
	UserID     uint
	ExerciseID *uint
}

// ExercisePlan and SetPlan are the reconciliation outcomes the repositories apply.
type (
	ExercisePlan = reconcile.Plan[domain.Exercise, domain.ExercisePatch]
	SetPlan      = reconcile.Plan[domain.Set, domain.SetPatch]
)

// ReconcileWorkoutFunc patches a freshly loaded workout in place and returns
// the exercise plan to apply with it, or nil to leave the exercises alone.
// It runs inside the write transaction and must not touch the store.
type ReconcileWorkoutFunc func(w *domain.Workout) (*ExercisePlan, error)

// ReconcileExerciseFunc is the ReconcileWorkoutFunc counterpart for an
// exercise and its sets.
type ReconcileExerciseFunc func(e *domain.Exercise) (*SetPlan, error)

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error // ErrDuplicate on a taken username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
// Methods taking a userID never return rows owned by someone else.
type WorkoutRepository interface {
	// Create inserts w together with any exercises (and their sets) attached to it.
	Create(ctx context.Context, w *domain.Workout) error
	GetByID(ctx context.Context, id uint) (*domain.Workout, error)
	GetForUser(ctx context.Context, id, userID uint) (*domain.Workout, error)
	// GetTree loads a workout with its exercises and their sets.
	GetTree(ctx context.Context, id, userID uint) (*domain.Workout, error)
	List(ctx context.Context, filter WorkoutFilter, page Page) ([]domain.Workout, int64, error)
	// Update saves w's own fields and applies plan, if any, in one
	// transaction. ErrNotFound means w or a planned child has gone.
	Update(ctx context.Context, w *domain.Workout, plan *ExercisePlan) error
	// Reconcile loads the caller's workout with its exercises, runs fn on it
	// and writes the result, all in one transaction. An error from fn is
	// returned as is and nothing is written.
	Reconcile(ctx context.Context, id, userID uint, fn ReconcileWorkoutFunc) error
	// Delete removes w, its exercises and their sets.
	Delete(ctx context.Context, w *domain.Workout) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, e *domain.Exercise) error
	// GetByID loads an exercise with its parent workout.
	GetByID(ctx context.Context, id uint) (*domain.Exercise, error)
	// GetForUser loads an exercise with its parent workout and its sets.
	GetForUser(ctx context.Context, id, userID uint) (*domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter, page Page) ([]domain.Exercise, int64, error)
	Update(ctx context.Context, e *domain.Exercise, plan *SetPlan) error
	// Reconcile is WorkoutRepository.Reconcile for an exercise and its sets.
	Reconcile(ctx context.Context, id, userID uint, fn ReconcileExerciseFunc) error
	Delete(ctx context.Context, e *domain.Exercise) error
}

// SetRepository defines the interface for interacting with set data.
type SetRepository interface {
	Create(ctx context.Context, s *domain.Set) error
	GetForUser(ctx context.Context, id, userID uint) (*domain.Set, error)
	List(ctx context.Context, filter SetFilter, page Page) ([]domain.Set, int64, error)
	Update(ctx context.Context, s *domain.Set) error
	Delete(ctx context.Context, s *domain.Set) error
}

// RevokedTokenRepository stores the refresh tokens blacklisted on logout.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, token *domain.RevokedToken) error // revoking twice is not an error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
