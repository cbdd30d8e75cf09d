package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/aoideee/library-catalog/internal/validator"
)

// Availability tracks the total and currently lendable copies of one book.
type Availability struct {
	BookID          int64 `json:"-" db:"book_id"`
	TotalCopies     int   `json:"total_copies" db:"total_copies"`
	AvailableCopies int   `json:"available_copies" db:"available_copies"`
}

// ValidateAvailability enforces 0 <= available_copies <= total_copies.
func ValidateAvailability(v *validator.Validator, a *Availability) {
	v.Check(a.TotalCopies >= 0, "total_copies", "must not be negative")
	v.Check(a.AvailableCopies >= 0, "available_copies", "must not be negative")
	v.Check(a.AvailableCopies <= a.TotalCopies, "available_copies", "cannot be more than total copies")
}

func insertAvailability(ctx context.Context, tx *sqlx.Tx, a *Availability) error {
	query := `
		INSERT INTO availability (book_id, total_copies, available_copies)
		VALUES (:book_id, :total_copies, :available_copies)`

	if _, err := tx.NamedExecContext(ctx, query, a); err != nil {
		return errors.Join(ErrTxFailed, err)
	}
	return nil
}

// AvailabilityModel reads availability counters.
type AvailabilityModel struct {
	DB *sqlx.DB
}

// Get returns the counters of one book, or ErrRecordNotFound.
func (m AvailabilityModel) Get(ctx context.Context, bookID int64) (*Availability, error) {
	query := `
		SELECT book_id, total_copies, available_copies
		FROM availability
		WHERE book_id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var a Availability
	if err := m.DB.GetContext(ctx, &a, query, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return &a, nil
}

// lockAvailability reads the counters of one book and holds a row lock until tx ends.
func lockAvailability(ctx context.Context, tx *sqlx.Tx, bookID int64) (*Availability, error) {
	query := `
		SELECT book_id, total_copies, available_copies
		FROM availability
		WHERE book_id = $1
		FOR UPDATE`

	var a Availability
	if err := tx.GetContext(ctx, &a, query, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &a, nil
}
