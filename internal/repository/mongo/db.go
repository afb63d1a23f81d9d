// Package mongo keeps the refresh-token blacklist in MongoDB, where a TTL
// index drops entries once the token they block has expired.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config locates the blacklist database.
type Config struct {
	URI      string
	Database string
	// Timeout bounds each of dialing, the startup ping and Close.
	Timeout time.Duration
}

// Connect opens the blacklist database and pings the primary, so a wrong
// URI fails at startup instead of on the first logout.
func Connect(ctx context.Context, cfg Config) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	client, err := mongo.Connect(dialCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		db := client.Database(cfg.Database)
		_ = Close(db, cfg.Timeout)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client.Database(cfg.Database), nil
}

// Close disconnects the client behind db.
func Close(db *mongo.Database, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return db.Client().Disconnect(ctx)
}
