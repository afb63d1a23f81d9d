package gormrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
)

type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository creates a new instance of ExerciseRepository.
func NewExerciseRepository(db *gorm.DB) repository.ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) Create(ctx context.Context, e *domain.Exercise) error {
	return translate(r.db.WithContext(ctx).Omit("Workout").Create(e).Error)
}

func (r *exerciseRepository) GetByID(ctx context.Context, id uint) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := r.db.WithContext(ctx).Preload("Workout").First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *exerciseRepository) GetForUser(ctx context.Context, id, userID uint) (*domain.Exercise, error) {
	var e domain.Exercise
	err := r.db.WithContext(ctx).
		Scopes(ownedExercises(userID)).
		Preload("Workout").
		Preload("Sets", orderByID("sets")).
		First(&e, "exercises.id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *exerciseRepository) List(ctx context.Context, filter repository.ExerciseFilter, page repository.Page) ([]domain.Exercise, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Exercise{}).Scopes(ownedExercises(filter.UserID))
	if filter.WorkoutID != nil {
		q = q.Where("exercises.workout_id = ?", *filter.WorkoutID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var exercises []domain.Exercise
	err := q.Scopes(orderByID("exercises"), paginate(page)).
		Preload("Sets", orderByID("sets")).
		Find(&exercises).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return exercises, total, nil
}

var setColumns = []string{"exercise_id", "set_number", "reps", "weight", "updated_at"}

func (r *exerciseRepository) Update(ctx context.Context, e *domain.Exercise, plan *repository.SetPlan) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writeExercise(tx, e, plan)
	}))
}

func (r *exerciseRepository) Reconcile(ctx context.Context, id, userID uint, fn repository.ReconcileExerciseFunc) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e domain.Exercise
		err := tx.Scopes(ownedExercises(userID), lockForUpdate).
			Preload("Workout").
			Preload("Sets", orderByID("sets")).
			First(&e, "exercises.id = ?", id).Error
		if err != nil {
			return err
		}
		plan, err := fn(&e)
		if err != nil {
			return err
		}
		return writeExercise(tx, &e, plan)
	}))
}

// writeExercise saves e by id alone, since a move to another workout
// changes the parent column itself.
func writeExercise(tx *gorm.DB, e *domain.Exercise, plan *repository.SetPlan) error {
	if err := updateRow(tx, e, exerciseColumns, "id = ?", e.ID); err != nil {
		return err
	}
	if plan == nil {
		return nil
	}
	return applySetPlan(tx, e.ID, plan)
}

func (r *exerciseRepository) Delete(ctx context.Context, e *domain.Exercise) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteExercises(tx, []uint{e.ID})
	}))
}

// applySetPlan writes one reconciliation pass over an exercise's sets.
func applySetPlan(tx *gorm.DB, exerciseID uint, plan *repository.SetPlan) error {
	working := make(map[uint]*domain.Set, len(plan.Updates))
	for _, u := range plan.Updates {
		s, ok := working[u.Child.ID]
		if !ok {
			child := u.Child
			child.Exercise = nil
			s = &child
			working[child.ID] = s
		}
		u.Patch.Apply(s)
		s.ExerciseID = exerciseID
		if err := updateRow(tx, s, setColumns, "id = ? AND exercise_id = ?", s.ID, exerciseID); err != nil {
			return err
		}
	}

	for _, c := range plan.Creates {
		var s domain.Set
		c.Patch.Apply(&s)
		s.ExerciseID = exerciseID
		if err := tx.Omit(clause.Associations).Create(&s).Error; err != nil {
			return err
		}
	}

	if len(plan.Deletes) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(plan.Deletes))
	for _, s := range plan.Deletes {
		ids = append(ids, s.ID)
	}
	return tx.Where("id IN ? AND exercise_id = ?", ids, exerciseID).Delete(&domain.Set{}).Error
}
