// internal/data/models.go
package data

import (
	"context"
	_ "embed"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aoideee/library-catalog/internal/validator"
)

const (
	queryTimeout    = 3 * time.Second
	dialectPostgres = "postgres"

	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	constraintBooksISBN        = "books_isbn_key"
)

var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateISBN is returned when a book is inserted with an ISBN that already exists.
	ErrDuplicateISBN = errors.New("duplicate isbn")

	// ErrFailedValidation wraps field-level validation failures raised while writing entities.
	ErrFailedValidation = errors.New("failed validation")

	// ErrQueryFailed wraps driver errors from read queries.
	ErrQueryFailed = errors.New("query failed")

	// ErrTxFailed wraps driver errors from transactional writes.
	ErrTxFailed = errors.New("transaction failed")
)

// schema holds the DDL for every table the catalog owns.
//
//go:embed schema.sql
var schema string

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books        BookModel
	Availability AvailabilityModel
	Wishlists    WishlistModel
	Borrows      BorrowModel
	AmazonLinks  AmazonLinkModel
	Users        UserModel
	Stats        StatsModel
}

// NewModels constructs a Models value wired up to the given connection pool.
// A nil logger discards everything.
func NewModels(db *sqlx.DB, logger Logger) Models {
	if logger == nil {
		logger = discardLogger{}
	}

	return Models{
		Books:        BookModel{DB: db, logger: logger},
		Availability: AvailabilityModel{DB: db},
		Wishlists:    WishlistModel{DB: db, logger: logger},
		Borrows:      BorrowModel{DB: db, logger: logger},
		AmazonLinks:  AmazonLinkModel{DB: db},
		Users:        UserModel{DB: db},
		Stats:        StatsModel{DB: db},
	}
}

// InsertBook validates and stores a book together with its availability row.
// Both rows are written in one transaction so a book never exists without availability.
func (m Models) InsertBook(ctx context.Context, book *Book, availability *Availability) error {
	v := validator.New()
	ValidateBook(v, book)
	availability.BookID = book.ID
	ValidateAvailability(v, availability)
	if !v.Valid() {
		return &ValidationError{Errors: v.Errors}
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.Books.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Join(ErrTxFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertBook(ctx, tx, book); err != nil {
		return err
	}
	if err := insertAvailability(ctx, tx, availability); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Join(ErrTxFailed, err)
	}

	return nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ValidationError carries the field errors collected by a validator.Validator.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field, msg := range e.Errors {
		fields = append(fields, field+": "+msg)
	}
	return "failed validation: " + strings.Join(fields, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrFailedValidation }

// Filters holds pagination and sorting parameters extracted from URL query strings.
type Filters struct {
	Page         int      // Current page number (1-indexed)
	PageSize     int      // Number of records per page
	Sort         string   // Column name to sort by (prefix with "-" for DESC)
	SortSafeList []string // Allowed sort values
}

// ValidateFilters checks the page bounds and that Sort is on the safe list.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.PageSize > 0, "page_size", "must be greater than zero")
	v.Check(f.PageSize <= 100, "page_size", "must be a maximum of 100")
	v.Check(validator.In(f.Sort, f.SortSafeList...), "sort", "invalid sort value")
}

// sortColumn returns the validated column name for ORDER BY, defaulting to title.
func (f Filters) sortColumn() string {
	for _, safe := range f.SortSafeList {
		if f.Sort == safe {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	return "title"
}

func (f Filters) sortDescending() bool {
	return strings.HasPrefix(f.Sort, "-")
}

func (f Filters) limit() uint { return uint(f.PageSize) }

func (f Filters) offset() uint { return uint((f.Page - 1) * f.PageSize) }

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and filter values.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}

func dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// pgErrorCode extracts the SQLSTATE from either driver's error type.
func pgErrorCode(err error) (code string, constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}

	return "", "", false
}

func isUniqueViolation(err error, constraint string) bool {
	code, name, ok := pgErrorCode(err)
	return ok && code == pgCodeUniqueViolation && (constraint == "" || name == constraint)
}
