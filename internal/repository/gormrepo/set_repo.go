package gormrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
)

type setRepository struct {
	db *gorm.DB
}

// NewSetRepository creates a new instance of SetRepository.
func NewSetRepository(db *gorm.DB) repository.SetRepository {
	return &setRepository{db: db}
}

func (r *setRepository) Create(ctx context.Context, s *domain.Set) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *setRepository) GetForUser(ctx context.Context, id, userID uint) (*domain.Set, error) {
	var s domain.Set
	err := r.db.WithContext(ctx).
		Scopes(ownedSets(userID)).
		Preload("Exercise.Workout").
		First(&s, "sets.id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *setRepository) List(ctx context.Context, filter repository.SetFilter, page repository.Page) ([]domain.Set, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Set{}).Scopes(ownedSets(filter.UserID))
	if filter.ExerciseID != nil {
		q = q.Where("sets.exercise_id = ?", *filter.ExerciseID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var sets []domain.Set
	if err := q.Scopes(orderByID("sets"), paginate(page)).Find(&sets).Error; err != nil {
		return nil, 0, translate(err)
	}
	return sets, total, nil
}

// Update reports ErrNotFound once the set is gone.
func (r *setRepository) Update(ctx context.Context, s *domain.Set) error {
	return translate(updateRow(r.db.WithContext(ctx), s, setColumns, "id = ?", s.ID))
}

func (r *setRepository) Delete(ctx context.Context, s *domain.Set) error {
	return translate(r.db.WithContext(ctx).Delete(&domain.Set{}, s.ID).Error)
}
