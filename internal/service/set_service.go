package service

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

// SetService manages individual sets.
type SetService interface {
	CreateSet(ctx context.Context, userID uint, p validation.SetPayload) (*domain.Set, error)
	GetSet(ctx context.Context, userID, setID uint) (*domain.Set, error)
	ListSets(ctx context.Context, filter repository.SetFilter, page repository.Page) ([]domain.Set, int64, error)
	UpdateSet(ctx context.Context, userID, setID uint, p validation.SetPayload, partial bool) (*domain.Set, error)
	DeleteSet(ctx context.Context, userID, setID uint) error
}

// setService implements the SetService interface.
type setService struct {
	setRepo      repository.SetRepository
	exerciseRepo repository.ExerciseRepository
	logger       hclog.Logger
}

// NewSetService creates a new instance of setService.
func NewSetService(setRepo repository.SetRepository, exerciseRepo repository.ExerciseRepository, logger hclog.Logger) SetService {
	return &setService{
		setRepo:      setRepo,
		exerciseRepo: exerciseRepo,
		logger:       logger.Named("sets"),
	}
}

func (s *setService) CreateSet(ctx context.Context, userID uint, p validation.SetPayload) (*domain.Set, error) {
	patch, errs := validation.ValidateSet(p, false)

	var guardErr error
	if patch.ExerciseID != nil {
		_, guardErr = guardExercise(ctx, s.exerciseRepo, "exercise", *patch.ExerciseID, userID, errs)
	}
	if err := firstFailure(errs, guardErr); err != nil {
		return nil, err
	}

	set := &domain.Set{}
	patch.Apply(set)
	if err := s.setRepo.Create(ctx, set); err != nil {
		return nil, err
	}
	s.logger.Debug("set created", "set_id", set.ID, "exercise_id", set.ExerciseID, "user_id", userID)
	return set, nil
}

// GetSet loads a set through the caller's ownership chain.
func (s *setService) GetSet(ctx context.Context, userID, setID uint) (*domain.Set, error) {
	set, err := s.setRepo.GetForUser(ctx, setID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if !domain.SetOwnedBy(set, userID) {
		return nil, ErrNotFound
	}
	return set, nil
}

func (s *setService) ListSets(ctx context.Context, filter repository.SetFilter, page repository.Page) ([]domain.Set, int64, error) {
	return s.setRepo.List(ctx, filter, page)
}

func (s *setService) UpdateSet(ctx context.Context, userID, setID uint, p validation.SetPayload, partial bool) (*domain.Set, error) {
	current, err := s.GetSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	patch, errs := validation.ValidateSet(p, partial)

	var guardErr error
	if patch.ExerciseID != nil && *patch.ExerciseID != current.ExerciseID {
		_, guardErr = guardExercise(ctx, s.exerciseRepo, "exercise", *patch.ExerciseID, userID, errs)
	}
	if err := firstFailure(errs, guardErr); err != nil {
		return nil, err
	}

	patch.Apply(current)
	current.Exercise = nil
	if err := s.setRepo.Update(ctx, current); err != nil {
		return nil, notFound(err)
	}
	s.logger.Debug("set updated", "set_id", setID, "exercise_id", current.ExerciseID, "user_id", userID)
	return current, nil
}

func (s *setService) DeleteSet(ctx context.Context, userID, setID uint) error {
	set, err := s.GetSet(ctx, userID, setID)
	if err != nil {
		return err
	}
	if err := s.setRepo.Delete(ctx, set); err != nil {
		return err
	}
	s.logger.Debug("set deleted", "set_id", setID, "user_id", userID)
	return nil
}
