// Package data provides the data models and database interaction logic
// for the library catalog.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/aoideee/library-catalog/internal/validator"
)

const (
	// MinPublicationYear is the earliest accepted publication year.
	MinPublicationYear = -1000

	logMsgListQuery  = "executed sql for: list books"
	logAttrQuery     = "query"
	logAttrUserID    = "user_id"
	logAttrBookID    = "book_id"
	logAttrOutcome   = "outcome"
	logAttrBookCount = "book_count"
)

// Book represents a single catalog record. It maps directly to a row in the "books" table.
type Book struct {
	ID              int64  `json:"book_id" db:"book_id"`
	ISBN            string `json:"isbn" db:"isbn"`
	Authors         string `json:"authors" db:"authors"`
	Title           string `json:"title" db:"title"`
	PublicationYear int    `json:"publication_year" db:"publication_year"`
	Language        string `json:"language" db:"language"`
}

func (b Book) String() string {
	return fmt.Sprintf("%s by %s (%d)", b.Title, b.Authors, b.PublicationYear)
}

// BookListing is a book as it appears in a listing: with its copy counters and,
// for an authenticated requester, the per-user flags.
type BookListing struct {
	Book
	TotalCopies     int  `json:"total_copies" db:"total_copies"`
	AvailableCopies int  `json:"available_copies" db:"available_copies"`
	IsWishlisted    bool `json:"is_wishlisted" db:"-"`
	IsBorrowed      bool `json:"is_borrowed" db:"-"`
}

// MaxPublicationYear is the latest accepted publication year: next year.
func MaxPublicationYear() int {
	return time.Now().Year() + 1
}

// ValidateBook records every field-level problem with book in v.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.ID > 0, "book_id", "must be a positive integer")

	v.Check(book.ISBN != "", "isbn", "must be provided")
	v.Check(validator.MaxChars(book.ISBN, 13), "isbn", "must not be more than 13 characters long")

	v.Check(book.Title != "", "title", "must be provided")
	v.Check(validator.MaxChars(book.Title, 255), "title", "must not be more than 255 characters long")

	v.Check(book.Authors != "", "authors", "must be provided")
	v.Check(validator.MaxChars(book.Authors, 255), "authors", "must not be more than 255 characters long")

	v.Check(book.Language != "", "language", "must be provided")
	v.Check(validator.MaxChars(book.Language, 50), "language", "must not be more than 50 characters long")

	maxYear := MaxPublicationYear()
	v.Check(validator.Between(book.PublicationYear, MinPublicationYear, maxYear), "publication_year",
		fmt.Sprintf("must be between %d and %d", MinPublicationYear, maxYear))
}

func insertBook(ctx context.Context, tx *sqlx.Tx, book *Book) error {
	query := `
		INSERT INTO books (book_id, isbn, authors, publication_year, title, language)
		VALUES (:book_id, :isbn, :authors, :publication_year, :title, :language)`

	_, err := tx.NamedExecContext(ctx, query, book)
	if err != nil {
		if isUniqueViolation(err, constraintBooksISBN) {
			return ErrDuplicateISBN
		}
		return errors.Join(ErrTxFailed, err)
	}

	return nil
}

// BookModel wraps the connection pool and provides read access to books.
type BookModel struct {
	DB     *sqlx.DB
	logger Logger
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT book_id, isbn, authors, publication_year, title, language
		FROM books
		WHERE book_id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var book Book
	err := m.DB.GetContext(ctx, &book, query, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, errors.Join(ErrQueryFailed, err)
		}
	}

	return &book, nil
}

type bookListingRow struct {
	TotalRecords int `db:"total_records"`
	BookListing
}

// GetAll retrieves one page of books matching criteria, together with their copy counters.
// It uses a COUNT(*) OVER() window function so only one round-trip is needed.
func (m BookModel) GetAll(ctx context.Context, criteria SearchCriteria, filters Filters) ([]*BookListing, Metadata, error) {
	query, args, err := buildListQuery(criteria, filters)
	if err != nil {
		return nil, Metadata{}, errors.Join(ErrQueryFailed, err)
	}
	m.logger.Debug(logMsgListQuery, logAttrQuery, query)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []bookListingRow
	if err := m.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, Metadata{}, errors.Join(ErrQueryFailed, err)
	}

	totalRecords := 0
	books := make([]*BookListing, 0, len(rows))
	for i := range rows {
		totalRecords = rows[i].TotalRecords
		listing := rows[i].BookListing
		books = append(books, &listing)
	}

	return books, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

func buildListQuery(criteria SearchCriteria, filters Filters) (string, []any, error) {
	order := goqu.I("b." + filters.sortColumn()).Asc()
	if filters.sortDescending() {
		order = goqu.I("b." + filters.sortColumn()).Desc()
	}

	ds := dialect().
		From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("availability").As("a"), goqu.On(goqu.I("a.book_id").Eq(goqu.I("b.book_id")))).
		Select(
			goqu.L("count(*) OVER()").As("total_records"),
			goqu.I("b.book_id"),
			goqu.I("b.isbn"),
			goqu.I("b.authors"),
			goqu.I("b.publication_year"),
			goqu.I("b.title"),
			goqu.I("b.language"),
			goqu.COALESCE(goqu.I("a.total_copies"), goqu.L("0")).As("total_copies"),
			goqu.COALESCE(goqu.I("a.available_copies"), goqu.L("0")).As("available_copies"),
		).
		Order(order, goqu.I("b.book_id").Asc()).
		Limit(filters.limit()).
		Offset(filters.offset()).
		Prepared(true)

	if predicate := criteria.Predicate(); !predicate.IsEmpty() {
		ds = ds.Where(predicate)
	}

	return ds.ToSQL()
}

// Annotate sets IsWishlisted and IsBorrowed on every listing for user.
// For the anonymous user nothing is queried and all flags stay false.
func (m BookModel) Annotate(ctx context.Context, user *User, books []*BookListing) error {
	if user == nil || user.IsAnonymous() || len(books) == 0 {
		return nil
	}

	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}

	wishlisted, err := m.bookIDSet(ctx, dialect().
		From("wishlists").
		Select("book_id").
		Where(goqu.C("user_id").Eq(user.ID), goqu.C("book_id").In(ids)))
	if err != nil {
		return err
	}

	borrowed, err := m.bookIDSet(ctx, dialect().
		From("borrows").
		Select("book_id").
		Where(goqu.C("user_id").Eq(user.ID), goqu.C("book_id").In(ids), goqu.C("returned").IsNull()))
	if err != nil {
		return err
	}

	for _, b := range books {
		_, b.IsWishlisted = wishlisted[b.ID]
		_, b.IsBorrowed = borrowed[b.ID]
	}

	m.logger.Debug("annotated listing", logAttrUserID, user.ID, logAttrBookCount, len(books))

	return nil
}

func (m BookModel) bookIDSet(ctx context.Context, ds *goqu.SelectDataset) (map[int64]struct{}, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var ids []int64
	if err := m.DB.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
