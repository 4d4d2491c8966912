package bookshelf

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	dbMu     sync.RWMutex
	globalDB *mongo.Database
)

// Connect establishes a connection to MongoDB and returns the database handle.
// The handle is also stored globally so operations can omit the DB option.
func Connect(ctx context.Context, uri string, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("bookshelf: failed to connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("bookshelf: failed to ping: %w", err)
	}

	db := client.Database(dbName)

	dbMu.Lock()
	globalDB = db
	dbMu.Unlock()

	return db, nil
}

// Disconnect closes the client behind db and clears the global handle if it
// points at db. A nil db is a no-op.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}

	dbMu.Lock()
	if globalDB == db {
		globalDB = nil
	}
	dbMu.Unlock()

	if err := db.Client().Disconnect(ctx); err != nil {
		return fmt.Errorf("bookshelf: failed to disconnect: %w", err)
	}
	return nil
}

// DB returns the globally stored database reference.
// Returns nil if Connect has not been called.
func DB() *mongo.Database {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return globalDB
}
