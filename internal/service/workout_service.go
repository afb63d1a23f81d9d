package service

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/reconcile"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

// WorkoutService manages a user's workouts and, through the nested
// exercises list, the exercises under them.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID uint, p validation.WorkoutPayload) (*domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID uint) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, filter repository.WorkoutFilter, page repository.Page) ([]domain.Workout, int64, error)
	// UpdateWorkout applies a PUT (partial unset) or PATCH body.
	UpdateWorkout(ctx context.Context, userID, workoutID uint, p validation.WorkoutPayload, partial bool) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID uint) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	logger      hclog.Logger
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, logger hclog.Logger) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		logger:      logger.Named("workouts"),
	}
}

func exerciseID(e domain.Exercise) uint { return e.ID }

func (s *workoutService) CreateWorkout(ctx context.Context, userID uint, p validation.WorkoutPayload) (*domain.Workout, error) {
	in, errs := validation.ValidateWorkout(p, false)

	// Nothing exists yet, so every nested item is a create and any ids
	// it carries are dropped.
	plan := reconcile.Diff(nil, exerciseID, in.Exercises)
	validation.RequireExerciseCreates(errs, plan.Creates)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	w := &domain.Workout{UserID: userID}
	in.Patch.Apply(w)
	for _, c := range plan.Creates {
		var e domain.Exercise
		c.Patch.Apply(&e)
		w.Exercises = append(w.Exercises, e)
	}

	if err := s.workoutRepo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Debug("workout created", "workout_id", w.ID, "user_id", userID, "exercises", len(w.Exercises))
	return w, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID uint) (*domain.Workout, error) {
	w, err := s.workoutRepo.GetForUser(ctx, workoutID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return w, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, filter repository.WorkoutFilter, page repository.Page) ([]domain.Workout, int64, error) {
	return s.workoutRepo.List(ctx, filter, page)
}

func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID uint, p validation.WorkoutPayload, partial bool) (*domain.Workout, error) {
	in, errs := validation.ValidateWorkout(p, partial)

	// The diff runs against the rows as they are inside the write
	// transaction, so a concurrent delete or move is never undone.
	var plan *repository.ExercisePlan
	err := s.workoutRepo.Reconcile(ctx, workoutID, userID, func(current *domain.Workout) (*repository.ExercisePlan, error) {
		// An absent exercises key leaves the children alone; a present one,
		// even empty, is the complete new list.
		if in.HasExercises {
			diff := reconcile.Diff(current.Exercises, exerciseID, in.Exercises)
			validation.RequireExerciseCreates(errs, diff.Creates)
			plan = &diff
		}
		if err := errs.Err(); err != nil {
			return nil, err
		}
		in.Patch.Apply(current)
		return plan, nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	if plan != nil {
		s.logger.Debug("exercises reconciled", "workout_id", workoutID,
			"created", len(plan.Creates), "updated", len(plan.Updates), "deleted", len(plan.Deletes))
	}

	return s.GetWorkout(ctx, userID, workoutID)
}

func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID uint) error {
	w, err := s.workoutRepo.GetForUser(ctx, workoutID, userID)
	if err != nil {
		return notFound(err)
	}
	return s.workoutRepo.Delete(ctx, w)
}
