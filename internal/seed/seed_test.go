package seed

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dwoolworth/bookshelf"
	"github.com/dwoolworth/bookshelf/models"
)

func TestBooks_Valid(t *testing.T) {
	require.NoError(t, models.Register(models.DefaultCollection))
	schema, ok := bookshelf.Get("Book")
	require.True(t, ok)

	titles := map[string]bool{}
	for _, b := range Books() {
		assert.Empty(t, bookshelf.Validate(&b, schema), b.Title)
		assert.False(t, titles[b.Title], "duplicate title %s", b.Title)
		titles[b.Title] = true
	}

	for _, want := range []string{"Animal Farm", "The Great Gatsby", "Project Hail Mary"} {
		assert.True(t, titles[want], want)
	}
}

func TestBooks_FreshCopy(t *testing.T) {
	a := Books()
	a[0].Title = "changed"
	assert.NotEqual(t, "changed", Books()[0].Title)
}

func TestSeed_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerSelectionTimeout(2 * time.Second))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	db := client.Database(fmt.Sprintf("bookshelf_seed_test_%d", time.Now().UnixNano()))
	defer func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	}()

	require.NoError(t, models.Register("inventory"))
	defer func() { _ = models.Register(models.DefaultCollection) }()

	n, err := Seed(ctx, Options{DB: db})
	require.NoError(t, err)
	assert.Equal(t, len(Books()), n)

	// Drop makes seeding repeatable.
	n, err = Seed(ctx, Options{DB: db, Drop: true})
	require.NoError(t, err)
	assert.Equal(t, len(Books()), n)

	count, err := bookshelf.Count(ctx, bson.D{}, &models.Book{}, bookshelf.FindOptions{DB: db})
	require.NoError(t, err)
	assert.Equal(t, int64(len(Books())), count)
}
