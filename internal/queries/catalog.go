package queries

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dwoolworth/bookshelf"
	"github.com/dwoolworth/bookshelf/models"
)

// Step is one entry of the catalog.
type Step struct {
	Name        string
	Kind        Kind
	Description string
	Run         func(ctx context.Context, db *mongo.Database) (Outcome, error)
}

// Params are the values the catalog reads from configuration.
type Params struct {
	Page          int
	PageSize      int
	ExplainAuthor string
}

// DefaultParams returns page 1 of 5 books and explains the Jane Austen query.
func DefaultParams() Params {
	return Params{Page: 1, PageSize: 5, ExplainAuthor: "Jane Austen"}
}

// TitleIndex is the single-field index the catalog creates on title.
var TitleIndex = bookshelf.NewIndex(bookshelf.Asc("title"))

// AuthorYearIndex is the compound index the catalog creates for author
// lookups sorted by newest publication first.
var AuthorYearIndex = bookshelf.NewIndex(bookshelf.Asc("author"), bookshelf.Desc("published_year"))

// Catalog returns the bookstore queries in execution order.
func Catalog(p Params) []Step {
	if p.PageSize == 0 {
		p.PageSize = DefaultParams().PageSize
	}
	if p.ExplainAuthor == "" {
		p.ExplainAuthor = DefaultParams().ExplainAuthor
	}

	byPrice := func(dir int) bookshelf.FindOptions {
		return bookshelf.FindOptions{Sort: bson.D{{Key: "price", Value: dir}}}
	}

	return []Step{
		findBooks("fiction_books", "Fiction books",
			bson.D{{Key: "genre", Value: "Fiction"}}, bookshelf.FindOptions{}),
		findBooks("published_after_1950", "Books published after 1950",
			bson.D{{Key: "published_year", Value: bson.D{{Key: "$gt", Value: 1950}}}}, bookshelf.FindOptions{}),
		findBooks("books_by_tolkien", "Books by J.R.R. Tolkien",
			bson.D{{Key: "author", Value: "J.R.R. Tolkien"}}, bookshelf.FindOptions{}),
		updatePrice("update_animal_farm_price", "Animal Farm", 11.90),
		deleteByTitle("delete_great_gatsby", "The Great Gatsby"),

		findBooks("in_stock_after_2010", "In-stock books published after 2010",
			bson.D{
				{Key: "in_stock", Value: true},
				{Key: "published_year", Value: bson.D{{Key: "$gt", Value: 2010}}},
			}, bookshelf.FindOptions{}),
		projectBooks("title_author_price", "Books with only title, author and price fields",
			bson.D{{Key: "title", Value: 1}, {Key: "author", Value: 1}, {Key: "price", Value: 1}, {Key: "_id", Value: 0}}),
		findBooks("price_ascending", "Books sorted by price in ascending order", bson.D{}, byPrice(1)),
		findBooks("price_descending", "Books sorted by price in descending order", bson.D{}, byPrice(-1)),
		pageOfBooks("page", p.Page, p.PageSize),

		aggregate("avg_price_by_genre", "Average price of books by genre", func() interface{} { return &[]models.GenreAverage{} },
			func(pl *bookshelf.Pipeline) {
				pl.Group(bson.D{
					{Key: "_id", Value: "$genre"},
					{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
				})
			}),
		aggregate("top_author", "Author with the most books", func() interface{} { return &[]models.AuthorCount{} },
			func(pl *bookshelf.Pipeline) {
				pl.Group(bson.D{
					{Key: "_id", Value: "$author"},
					{Key: "bookCount", Value: bson.D{{Key: "$sum", Value: 1}}},
				}).
					Sort(bson.D{{Key: "bookCount", Value: -1}}).
					Limit(1)
			}),
		aggregate("books_by_decade", "Books grouped by publication decade", func() interface{} { return &[]models.DecadeCount{} },
			func(pl *bookshelf.Pipeline) {
				decade := bson.D{{Key: "$subtract", Value: bson.A{
					"$published_year",
					bson.D{{Key: "$mod", Value: bson.A{"$published_year", 10}}},
				}}}
				pl.Group(bson.D{
					{Key: "_id", Value: decade},
					{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				}).
					Sort(bson.D{{Key: "_id", Value: 1}})
			}),

		createIndex("index_title", "Index created on title field", TitleIndex),
		createIndex("index_author_year", "Compound index created on author and published_year fields", AuthorYearIndex),
		explainAuthor("explain_author", p.ExplainAuthor),
	}
}

// Only returns the steps named in names, keeping catalog order. An empty
// names list returns steps unchanged.
func Only(steps []Step, names ...string) ([]Step, error) {
	if len(names) == 0 {
		return steps, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []Step
	for _, s := range steps {
		if want[s.Name] {
			out = append(out, s)
			delete(want, s.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("queries: unknown step %q", n)
	}
	return out, nil
}

func findBooks(name, desc string, filter bson.D, opt bookshelf.FindOptions) Step {
	return Step{
		Name: name, Kind: KindFind, Description: desc,
		Run: func(ctx context.Context, db *mongo.Database) (Outcome, error) {
			docs, err := findDocuments(ctx, db, filter, opt)
			return Outcome{Message: desc, Documents: docs}, err
		},
	}
}

func projectBooks(name, desc string, projection bson.D) Step {
	return findBooks(name, desc, bson.D{}, bookshelf.FindOptions{Projection: projection})
}

func pageOfBooks(name string, page, pageSize int) Step {
	if page < 1 {
		page = 1
	}
	desc := fmt.Sprintf("Books on page %d", page)
	return Step{
		Name: name, Kind: KindFind, Description: desc,
		Run: func(ctx context.Context, db *mongo.Database) (Outcome, error) {
			opt, err := bookshelf.Paginate(page, pageSize)
			if err != nil {
				return Outcome{}, err
			}
			docs, err := findDocuments(ctx, db, bson.D{}, opt)
			return Outcome{Message: desc, Documents: docs}, err
		},
	}
}

// findDocuments returns matching books exactly as stored, without a round
// trip through models.Book.
func findDocuments(ctx context.Context, db *mongo.Database, filter bson.D, opt bookshelf.FindOptions) ([]bson.D, error) {
	opt.DB = db
	opt.Model = &models.Book{}
	var docs []bson.D
	if err := bookshelf.Find(ctx, filter, &docs, opt); err != nil {
		return nil, err
	}
	return docs, nil
}

func updatePrice(name, title string, price float64) Step {
	desc := fmt.Sprintf("Price of %s has been updated", title)
	return Step{
		Name: name, Kind: KindUpdate, Description: desc,
		Run: func(ctx context.Context, db *mongo.Database) (Outcome, error) {
			res, err := bookshelf.UpdateOne(ctx,
				bson.D{{Key: "title", Value: title}},
				bson.D{{Key: "$set", Value: bson.D{{Key: "price", Value: price}}}},
				&models.Book{}, bookshelf.WriteOptions{DB: db})
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{
				Message: desc,
				Documents: []bson.D{{
					{Key: "matched", Value: res.Matched},
					{Key: "modified", Value: res.Modified},
				}},
			}, nil
		},
	}
}

func deleteByTitle(name, title string) Step {
	desc := fmt.Sprintf("%s has been deleted", title)
	return Step{
		Name: name, Kind: KindDelete, Description: desc,
		Run: func(ctx context.Context, db *mongo.Database) (Outcome, error) {
			res, err := bookshelf.DeleteOne(ctx, bson.D{{Key: "title", Value: title}},
				&models.Book{}, bookshelf.WriteOptions{DB: db})
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{
				Message:   desc,
				Documents: []bson.D{{{Key: "deleted", Value: res.Deleted}}},
			}, nil
		},
	}
}

func aggregate(name, desc string, newResults func() interface{}, build func(*bookshelf.Pipeline)) Step {
	return Step{
		Name: name, Kind: KindAggregate, Description: desc,
		Run: func(ctx context.Context, db *mongo.Database) (Outcome, error) {
			pl := bookshelf.NewPipeline(&models.Book{}, bookshelf.PipelineOptions{DB: db})
			build(pl)
			results := newResults()
			if err := pl.Execute(ctx, results); err != nil {
				return Outcome{}, err
			}
			docs, err := toDocuments(results)
			return Outcome{Message: desc, Documents: docs}, err
		},
	}
}

func createIndex(name, desc string, index bookshelf.CompoundIndex) Step {
	return Step{
		Name: name, Kind: KindIndex, Description: desc,
		Run: func(ctx context.Context, db *mongo.Database) (Outcome, error) {
			created, err := bookshelf.CreateIndex(ctx, &models.Book{}, index, bookshelf.IndexOptions{DB: db})
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{
				Message:   desc,
				Documents: []bson.D{{{Key: "index", Value: created}, {Key: "keys", Value: index.Document()}}},
			}, nil
		},
	}
}

func explainAuthor(name, author string) Step {
	return Step{
		Name: name, Kind: KindExplain, Description: "Explain output for query with index",
		Run: func(ctx context.Context, db *mongo.Database) (Outcome, error) {
			res, err := ExplainByAuthor(ctx, db, author)
			if err != nil {
				return Outcome{}, err
			}
			var detail bson.D
			if err := bson.Unmarshal(res.Raw, &detail); err != nil {
				return Outcome{}, fmt.Errorf("queries: decode explain: %w", err)
			}
			return Outcome{
				Message:   "Explain output for query with index",
				Documents: []bson.D{SummaryDocument(res.Summary)},
				Detail:    detail,
			}, nil
		},
	}
}

// ExplainByAuthor explains the books-by-author query sorted newest first,
// the query the author/published_year index serves.
func ExplainByAuthor(ctx context.Context, db *mongo.Database, author string) (bookshelf.ExplainResult, error) {
	return bookshelf.Explain(ctx, bson.D{{Key: "author", Value: author}}, &models.Book{}, bookshelf.ExplainOptions{
		DB:        db,
		Sort:      bson.D{{Key: "published_year", Value: -1}},
		Verbosity: bookshelf.VerbosityExecutionStats,
	})
}

// SummaryDocument renders an explain summary as an ordered document.
func SummaryDocument(s bookshelf.ExplainSummary) bson.D {
	return bson.D{
		{Key: "stage", Value: s.Stage},
		{Key: "index", Value: s.IndexName},
		{Key: "nReturned", Value: s.Returned},
		{Key: "totalKeysExamined", Value: s.KeysExamined},
		{Key: "totalDocsExamined", Value: s.DocsExamined},
		{Key: "executionTimeMillis", Value: s.ExecutionTimeMS},
	}
}
