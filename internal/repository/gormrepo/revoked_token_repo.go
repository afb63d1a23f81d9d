package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
)

type revokedTokenRepository struct {
	db *gorm.DB
}

// NewRevokedTokenRepository keeps the refresh-token blacklist in the main
// database.
func NewRevokedTokenRepository(db *gorm.DB) repository.RevokedTokenRepository {
	return &revokedTokenRepository{db: db}
}

func (r *revokedTokenRepository) Revoke(ctx context.Context, token *domain.RevokedToken) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(token).Error)
}

func (r *revokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// PruneExpired deletes blacklist rows whose token has expired anyway.
func PruneExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.RevokedToken{})
	return res.RowsAffected, translate(res.Error)
}
