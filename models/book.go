// Package models holds the document types stored in and read from the
// bookstore collection.
package models

import (
	"github.com/dwoolworth/bookshelf"
)

// DefaultCollection is the collection books live in unless configured otherwise.
const DefaultCollection = "books"

// Book is a document in the books collection.
type Book struct {
	bookshelf.Model `bson:",inline"`
	Title           string  `bson:"title"          bookshelf:"required,index"`
	Author          string  `bson:"author"         bookshelf:"required"`
	Genre           string  `bson:"genre"          bookshelf:"required"`
	PublishedYear   int     `bson:"published_year" bookshelf:"min=0"`
	Price           float64 `bson:"price"          bookshelf:"min=0"`
	InStock         bool    `bson:"in_stock"`
	Pages           int     `bson:"pages,omitempty"     bookshelf:"min=0"`
	Publisher       string  `bson:"publisher,omitempty"`
}

// Indexes declares the author/year compound index used by author queries
// sorted newest first.
func (b *Book) Indexes() []bookshelf.CompoundIndex {
	return []bookshelf.CompoundIndex{
		bookshelf.NewIndex(bookshelf.Asc("author"), bookshelf.Desc("published_year")),
	}
}

// GenreAverage is one output document of the average-price-by-genre pipeline.
type GenreAverage struct {
	Genre    string  `bson:"_id"`
	AvgPrice float64 `bson:"avgPrice"`
}

// AuthorCount is one output document of the books-per-author pipeline.
type AuthorCount struct {
	Author    string `bson:"_id"`
	BookCount int    `bson:"bookCount"`
}

// DecadeCount is one output document of the books-per-decade pipeline.
// Decade is the first year of the decade, e.g. 1940.
type DecadeCount struct {
	Decade int `bson:"_id"`
	Count  int `bson:"count"`
}

// Register registers Book against collection, replacing any earlier
// registration so the CLI can point the model at a configured collection.
func Register(collection string) error {
	if collection == "" {
		collection = DefaultCollection
	}
	bookshelf.Unregister("Book")
	return bookshelf.Register(&Book{}, collection)
}
