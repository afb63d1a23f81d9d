package gormrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
)

type workoutRepository struct {
	db *gorm.DB
}

// NewWorkoutRepository creates a new instance of WorkoutRepository.
func NewWorkoutRepository(db *gorm.DB) repository.WorkoutRepository {
	return &workoutRepository{db: db}
}

// Create inserts the workout and every exercise and set hanging off it in
// slice order, so children get ascending ids.
func (r *workoutRepository) Create(ctx context.Context, w *domain.Workout) error {
	return translate(r.db.WithContext(ctx).Create(w).Error)
}

func (r *workoutRepository) GetByID(ctx context.Context, id uint) (*domain.Workout, error) {
	var w domain.Workout
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *workoutRepository) GetForUser(ctx context.Context, id, userID uint) (*domain.Workout, error) {
	var w domain.Workout
	err := r.db.WithContext(ctx).
		Scopes(ownedWorkouts(userID)).
		Preload("Exercises", orderByID("exercises")).
		First(&w, "workouts.id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *workoutRepository) GetTree(ctx context.Context, id, userID uint) (*domain.Workout, error) {
	var w domain.Workout
	err := r.db.WithContext(ctx).
		Scopes(ownedWorkouts(userID)).
		Preload("Exercises", orderByID("exercises")).
		Preload("Exercises.Sets", orderByID("sets")).
		First(&w, "workouts.id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *workoutRepository) List(ctx context.Context, filter repository.WorkoutFilter, page repository.Page) ([]domain.Workout, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Workout{}).Scopes(ownedWorkouts(filter.UserID))
	if filter.Date != nil {
		q = q.Where("workouts.date = ?", *filter.Date)
	}
	if filter.Name != nil {
		q = q.Where("workouts.name = ?", *filter.Name)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var workouts []domain.Workout
	err := q.Order(workoutOrder(filter.Ordering)).
		Scopes(paginate(page)).
		Preload("Exercises", orderByID("exercises")).
		Find(&workouts).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return workouts, total, nil
}

var (
	workoutColumns  = []string{"date", "name", "notes", "updated_at"}
	exerciseColumns = []string{"workout_id", "name", "updated_at"}
)

func (r *workoutRepository) Update(ctx context.Context, w *domain.Workout, plan *repository.ExercisePlan) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writeWorkout(tx, w, plan)
	}))
}

func (r *workoutRepository) Reconcile(ctx context.Context, id, userID uint, fn repository.ReconcileWorkoutFunc) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w domain.Workout
		err := tx.Scopes(ownedWorkouts(userID), lockForUpdate).
			Preload("Exercises", orderByID("exercises")).
			First(&w, "workouts.id = ?", id).Error
		if err != nil {
			return err
		}
		plan, err := fn(&w)
		if err != nil {
			return err
		}
		return writeWorkout(tx, &w, plan)
	}))
}

func writeWorkout(tx *gorm.DB, w *domain.Workout, plan *repository.ExercisePlan) error {
	if err := updateRow(tx, w, workoutColumns, "id = ? AND user_id = ?", w.ID, w.UserID); err != nil {
		return err
	}
	if plan == nil {
		return nil
	}
	return applyExercisePlan(tx, w.ID, plan)
}

func (r *workoutRepository) Delete(ctx context.Context, w *domain.Workout) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exerciseIDs []uint
		if err := tx.Model(&domain.Exercise{}).Where("workout_id = ?", w.ID).Pluck("id", &exerciseIDs).Error; err != nil {
			return err
		}
		if err := deleteExercises(tx, exerciseIDs); err != nil {
			return err
		}
		return tx.Delete(&domain.Workout{}, w.ID).Error
	}))
}

// applyExercisePlan writes one reconciliation pass over a workout's
// exercises. Patches for the same exercise accumulate in order.
func applyExercisePlan(tx *gorm.DB, workoutID uint, plan *repository.ExercisePlan) error {
	working := make(map[uint]*domain.Exercise, len(plan.Updates))
	for _, u := range plan.Updates {
		e, ok := working[u.Child.ID]
		if !ok {
			child := u.Child
			child.Sets, child.Workout = nil, nil
			e = &child
			working[child.ID] = e
		}
		u.Patch.Apply(e)
		if err := updateRow(tx, e, exerciseColumns, "id = ? AND workout_id = ?", e.ID, workoutID); err != nil {
			return err
		}
	}

	for _, c := range plan.Creates {
		e := domain.Exercise{WorkoutID: workoutID}
		c.Patch.Apply(&e)
		e.WorkoutID = workoutID
		if err := tx.Omit(clause.Associations).Create(&e).Error; err != nil {
			return err
		}
	}

	ids := make([]uint, 0, len(plan.Deletes))
	for _, e := range plan.Deletes {
		ids = append(ids, e.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	// Only children still under this workout are removed.
	var owned []uint
	if err := tx.Model(&domain.Exercise{}).Where("id IN ? AND workout_id = ?", ids, workoutID).Pluck("id", &owned).Error; err != nil {
		return err
	}
	return deleteExercises(tx, owned)
}

// deleteExercises removes exercises and their sets.
func deleteExercises(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("exercise_id IN ?", ids).Delete(&domain.Set{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&domain.Exercise{}).Error
}
