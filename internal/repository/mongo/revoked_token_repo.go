package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
)

const revokedTokenCollectionName = "revoked_tokens"

// mongoRevokedTokenRepository implements repository.RevokedTokenRepository.
// Documents are keyed by the token's jti.
type mongoRevokedTokenRepository struct {
	collection *mongo.Collection
}

// NewMongoRevokedTokenRepository creates a new instance of mongoRevokedTokenRepository.
func NewMongoRevokedTokenRepository(db *mongo.Database) repository.RevokedTokenRepository {
	return &mongoRevokedTokenRepository{
		collection: db.Collection(revokedTokenCollectionName),
	}
}

// Revoke upserts the token so revoking it twice keeps one document.
func (r *mongoRevokedTokenRepository) Revoke(ctx context.Context, token *domain.RevokedToken) error {
	filter := bson.M{"_id": token.JTI}
	update := bson.M{"$setOnInsert": bson.M{
		"userId":    token.UserID,
		"expiresAt": token.ExpiresAt,
		"revokedAt": token.RevokedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost a race with a concurrent upsert of the same jti.
			return nil
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *mongoRevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": jti}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return count > 0, nil
}

// EnsureRevokedTokenIndexes creates the TTL index that expires blacklist
// entries at the token's own expiry.
func EnsureRevokedTokenIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("revoked_token_ttl"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := db.Collection(revokedTokenCollectionName).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", revokedTokenCollectionName, err)
	}
	return nil
}
