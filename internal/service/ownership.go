package service

import (
	"context"
	"errors"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

// Parent references in a write payload are resolved without the owner
// scope: a reference to nothing is a field error on the referencing field,
// while a reference to someone else's row is ErrPermissionDenied.
// Field errors win, so callers report ErrPermissionDenied only once the
// rest of the body is valid; see firstFailure.

// guardWorkout resolves the workout a write wants to attach to. It returns
// (nil, nil) after recording a field error in errs.
func guardWorkout(ctx context.Context, repo repository.WorkoutRepository, field string, id, userID uint, errs validation.Errors) (*domain.Workout, error) {
	w, err := repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		validation.DoesNotExist(errs, field, id)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !domain.WorkoutOwnedBy(w, userID) {
		return nil, ErrPermissionDenied
	}
	return w, nil
}

// guardExercise resolves the exercise a write wants to attach to.
func guardExercise(ctx context.Context, repo repository.ExerciseRepository, field string, id, userID uint, errs validation.Errors) (*domain.Exercise, error) {
	e, err := repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		validation.DoesNotExist(errs, field, id)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !domain.ExerciseOwnedBy(e, userID) {
		return nil, ErrPermissionDenied
	}
	return e, nil
}

// firstFailure picks the error a write reports: infrastructure errors
// first, then field errors, then a denied parent reference.
func firstFailure(errs validation.Errors, guardErr error) error {
	if guardErr != nil && !errors.Is(guardErr, ErrPermissionDenied) {
		return guardErr
	}
	if err := errs.Err(); err != nil {
		return err
	}
	return guardErr
}
