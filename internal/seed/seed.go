// Package seed holds the sample bookstore inventory the query catalog is
// written against.
package seed

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dwoolworth/bookshelf"
	"github.com/dwoolworth/bookshelf/models"
)

// Books returns a fresh copy of the sample inventory.
func Books() []models.Book {
	return []models.Book{
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", Genre: "Fiction", PublishedYear: 1960, Price: 12.99, InStock: true, Pages: 336, Publisher: "J. B. Lippincott & Co."},
		{Title: "1984", Author: "George Orwell", Genre: "Dystopian", PublishedYear: 1949, Price: 10.99, InStock: true, Pages: 328, Publisher: "Secker & Warburg"},
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Genre: "Fiction", PublishedYear: 1925, Price: 9.99, InStock: true, Pages: 180, Publisher: "Charles Scribner's Sons"},
		{Title: "Brave New World", Author: "Aldous Huxley", Genre: "Dystopian", PublishedYear: 1932, Price: 11.50, InStock: false, Pages: 311, Publisher: "Chatto & Windus"},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937, Price: 14.99, InStock: true, Pages: 310, Publisher: "George Allen & Unwin"},
		{Title: "The Catcher in the Rye", Author: "J.D. Salinger", Genre: "Fiction", PublishedYear: 1951, Price: 8.99, InStock: true, Pages: 224, Publisher: "Little, Brown and Company"},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance", PublishedYear: 1813, Price: 7.99, InStock: true, Pages: 432, Publisher: "T. Egerton, Whitehall"},
		{Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1954, Price: 19.99, InStock: true, Pages: 1178, Publisher: "Allen & Unwin"},
		{Title: "Animal Farm", Author: "George Orwell", Genre: "Political Satire", PublishedYear: 1945, Price: 8.50, InStock: false, Pages: 112, Publisher: "Secker & Warburg"},
		{Title: "The Alchemist", Author: "Paulo Coelho", Genre: "Fiction", PublishedYear: 1988, Price: 10.99, InStock: true, Pages: 197, Publisher: "HarperOne"},
		{Title: "Moby Dick", Author: "Herman Melville", Genre: "Adventure", PublishedYear: 1851, Price: 12.50, InStock: false, Pages: 635, Publisher: "Harper & Brothers"},
		{Title: "Wuthering Heights", Author: "Emily Brontë", Genre: "Gothic Fiction", PublishedYear: 1847, Price: 9.99, InStock: true, Pages: 342, Publisher: "Thomas Cautley Newby"},
		{Title: "Emma", Author: "Jane Austen", Genre: "Romance", PublishedYear: 1815, Price: 8.99, InStock: true, Pages: 474, Publisher: "John Murray"},
		{Title: "Project Hail Mary", Author: "Andy Weir", Genre: "Science Fiction", PublishedYear: 2021, Price: 18.99, InStock: true, Pages: 496, Publisher: "Ballantine Books"},
		{Title: "The Night Circus", Author: "Erin Morgenstern", Genre: "Fantasy", PublishedYear: 2011, Price: 13.99, InStock: false, Pages: 387, Publisher: "Doubleday"},
	}
}

// Options configures Seed.
type Options struct {
	DB *mongo.Database
	// Drop empties the collection first so the inventory is loaded exactly once.
	Drop bool
}

// Seed inserts the sample inventory and returns how many books were written.
func Seed(ctx context.Context, opts Options) (int, error) {
	if opts.Drop {
		if err := bookshelf.DropCollection(ctx, &models.Book{}, bookshelf.WriteOptions{DB: opts.DB}); err != nil {
			return 0, fmt.Errorf("seed: %w", err)
		}
	}

	n, err := bookshelf.CreateMany(ctx, Books(), bookshelf.CreateOptions{DB: opts.DB})
	if err != nil {
		return n, fmt.Errorf("seed: %w", err)
	}
	return n, nil
}
