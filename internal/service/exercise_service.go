package service

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/reconcile"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

// ExerciseService manages exercises and, through the nested sets list,
// the sets under them.
type ExerciseService interface {
	CreateExercise(ctx context.Context, userID uint, p validation.ExercisePayload) (*domain.Exercise, error)
	GetExercise(ctx context.Context, userID, exerciseID uint) (*domain.Exercise, error)
	ListExercises(ctx context.Context, filter repository.ExerciseFilter, page repository.Page) ([]domain.Exercise, int64, error)
	UpdateExercise(ctx context.Context, userID, exerciseID uint, p validation.ExercisePayload, partial bool) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID uint) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	workoutRepo  repository.WorkoutRepository
	logger       hclog.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, workoutRepo repository.WorkoutRepository, logger hclog.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		workoutRepo:  workoutRepo,
		logger:       logger.Named("exercises"),
	}
}

func setID(s domain.Set) uint { return s.ID }

func (s *exerciseService) CreateExercise(ctx context.Context, userID uint, p validation.ExercisePayload) (*domain.Exercise, error) {
	in, errs := validation.ValidateExercise(p, false)

	var guardErr error
	if in.Patch.WorkoutID != nil {
		_, guardErr = guardWorkout(ctx, s.workoutRepo, "workout", *in.Patch.WorkoutID, userID, errs)
	}

	plan := reconcile.Diff(nil, setID, in.Sets)
	validation.RequireSetCreates(errs, plan.Creates)
	if err := firstFailure(errs, guardErr); err != nil {
		return nil, err
	}

	e := &domain.Exercise{}
	in.Patch.Apply(e)
	for _, c := range plan.Creates {
		var set domain.Set
		c.Patch.Apply(&set)
		e.Sets = append(e.Sets, set)
	}

	if err := s.exerciseRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Debug("exercise created", "exercise_id", e.ID, "workout_id", e.WorkoutID, "sets", len(e.Sets))
	return e, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, userID, exerciseID uint) (*domain.Exercise, error) {
	e, err := s.exerciseRepo.GetForUser(ctx, exerciseID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, filter repository.ExerciseFilter, page repository.Page) ([]domain.Exercise, int64, error) {
	return s.exerciseRepo.List(ctx, filter, page)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, userID, exerciseID uint, p validation.ExercisePayload, partial bool) (*domain.Exercise, error) {
	current, err := s.exerciseRepo.GetForUser(ctx, exerciseID, userID)
	if err != nil {
		return nil, notFound(err)
	}

	in, errs := validation.ValidateExercise(p, partial)

	var guardErr error
	if in.Patch.WorkoutID != nil && *in.Patch.WorkoutID != current.WorkoutID {
		_, guardErr = guardWorkout(ctx, s.workoutRepo, "workout", *in.Patch.WorkoutID, userID, errs)
	}

	// The guard needs its own reads, so it runs first; the sets are diffed
	// against the rows as they are inside the write transaction.
	var plan *repository.SetPlan
	err = s.exerciseRepo.Reconcile(ctx, exerciseID, userID, func(fresh *domain.Exercise) (*repository.SetPlan, error) {
		if in.HasSets {
			diff := reconcile.Diff(fresh.Sets, setID, in.Sets)
			validation.RequireSetCreates(errs, diff.Creates)
			plan = &diff
		}
		if err := firstFailure(errs, guardErr); err != nil {
			return nil, err
		}
		in.Patch.Apply(fresh)
		return plan, nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	if plan != nil {
		s.logger.Debug("sets reconciled", "exercise_id", exerciseID,
			"created", len(plan.Creates), "updated", len(plan.Updates), "deleted", len(plan.Deletes))
	}

	return s.GetExercise(ctx, userID, exerciseID)
}

func (s *exerciseService) DeleteExercise(ctx context.Context, userID, exerciseID uint) error {
	e, err := s.exerciseRepo.GetForUser(ctx, exerciseID, userID)
	if err != nil {
		return notFound(err)
	}
	return s.exerciseRepo.Delete(ctx, e)
}
