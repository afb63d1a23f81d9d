package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czarnick89/workout-tracker/internal/domain"
)

func TestRevokedTokenRepository(t *testing.T) {
	uri := os.Getenv("WORKOUTS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WORKOUTS_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, Config{
		URI:      uri,
		Database: "workouts_test_" + uuid.NewString()[:8],
		Timeout:  10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = Close(db, 5*time.Second)
	})

	require.NoError(t, EnsureRevokedTokenIndexes(ctx, db))
	repo := NewMongoRevokedTokenRepository(db)

	now := time.Now().UTC()
	tok := &domain.RevokedToken{JTI: uuid.NewString(), UserID: 7, ExpiresAt: now.Add(time.Hour), RevokedAt: now}
	require.NoError(t, repo.Revoke(ctx, tok))
	require.NoError(t, repo.Revoke(ctx, tok))

	revoked, err := repo.IsRevoked(ctx, tok.JTI)
	require.NoError(t, err)
	assert.True(t, revoked)

	count, err := db.Collection(revokedTokenCollectionName).CountDocuments(ctx, map[string]any{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	revoked, err = repo.IsRevoked(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestConnect_Unreachable(t *testing.T) {
	start := time.Now()
	_, err := Connect(context.Background(), Config{
		URI:      "mongodb://127.0.0.1:1/?directConnection=true",
		Database: "workouts",
		Timeout:  300 * time.Millisecond,
	})
	assert.ErrorContains(t, err, "ping mongodb")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConnect_BadURI(t *testing.T) {
	_, err := Connect(context.Background(), Config{URI: "not-a-uri", Timeout: time.Second})
	assert.ErrorContains(t, err, "connect to mongodb")
}
