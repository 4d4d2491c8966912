package bookshelf

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// --- test models ---

type testBook struct {
	Model         `bson:",inline"`
	Title         string  `bson:"title"          bookshelf:"required,index"`
	Author        string  `bson:"author"         bookshelf:"required"`
	Genre         string  `bson:"genre"          bookshelf:"enum=Fiction|Fantasy|Romance"`
	PublishedYear int     `bson:"published_year" bookshelf:"min=0,max=2100"`
	Price         float64 `bson:"price"          bookshelf:"min=0"`
	InStock       bool    `bson:"in_stock"`
}

func (b *testBook) Indexes() []CompoundIndex {
	return []CompoundIndex{
		NewIndex(Asc("author"), Desc("published_year")),
	}
}

type testISBN struct {
	Model `bson:",inline"`
	ISBN  string `bson:"isbn" bookshelf:"unique,required"`
}

var fixtureBooks = []testBook{
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937, Price: 14.99, InStock: true},
	{Title: "The Silmarillion", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1977, Price: 16.50, InStock: false},
	{Title: "Emma", Author: "Jane Austen", Genre: "Romance", PublishedYear: 1815, Price: 8.99, InStock: true},
	{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance", PublishedYear: 1813, Price: 7.99, InStock: true},
	{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Genre: "Fiction", PublishedYear: 1925, Price: 9.99, InStock: true},
}

// --- test DB setup ---

func setupTestDB(t *testing.T) (context.Context, *mongo.Database, func()) {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerSelectionTimeout(2 * time.Second))
	if err != nil {
		cancel()
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		cancel()
		t.Skipf("MongoDB not available: %v", err)
	}

	db := client.Database(fmt.Sprintf("bookshelf_test_%d", time.Now().UnixNano()))

	probe := db.Collection("_bookshelf_auth_check")
	if _, err := probe.InsertOne(ctx, bson.D{{Key: "test", Value: true}}); err != nil {
		_ = db.Drop(ctx)
		cancel()
		t.Skipf("MongoDB not writable (auth required?): %v", err)
	}
	_ = probe.Drop(ctx)

	dbMu.Lock()
	globalDB = db
	dbMu.Unlock()

	registerTestModels()

	cleanup := func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
		dbMu.Lock()
		globalDB = nil
		dbMu.Unlock()
		unregisterTestModels()
		ClearMiddleware()
		cancel()
	}

	return ctx, db, cleanup
}

// seedBooks inserts a fresh copy of fixtureBooks.
func seedBooks(t *testing.T, ctx context.Context) []testBook {
	t.Helper()
	books := append([]testBook(nil), fixtureBooks...)
	if _, err := CreateMany(ctx, books); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return books
}

func registerTestModels() {
	unregisterTestModels()
	_ = Register(&testBook{}, "test_books")
	_ = Register(&testISBN{}, "test_isbns")
}

func unregisterTestModels() {
	Unregister("testBook")
	Unregister("testISBN")
}

func floatPtr(f float64) *float64 { return &f }
