package data

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	logMsgBorrowDecided = "borrow decided"
	logMsgReturnDecided = "return decided"
)

// Borrow is one loan of a book to a user. Returned is nil while the loan is active.
type Borrow struct {
	ID       int64      `json:"id" db:"id"`
	UserID   int64      `json:"user_id" db:"user_id"`
	BookID   int64      `json:"book_id" db:"book_id"`
	Created  time.Time  `json:"created" db:"created"`
	Returned *time.Time `json:"returned,omitempty" db:"returned"`
}

// IsActive reports whether the book is still out on this loan.
func (b Borrow) IsActive() bool {
	return b.Returned == nil
}

// BorrowOutcome is the result of a borrow attempt on an existing book.
type BorrowOutcome int

const (
	BorrowSucceeded BorrowOutcome = iota
	BorrowNoCopiesAvailable
	BorrowAlreadyActive
)

func (o BorrowOutcome) String() string {
	switch o {
	case BorrowSucceeded:
		return "success"
	case BorrowNoCopiesAvailable:
		return "no_copies_available"
	case BorrowAlreadyActive:
		return "already_borrowed"
	default:
		return "unknown"
	}
}

// BorrowState is what a borrow decision depends on, read under the availability row lock.
type BorrowState struct {
	AvailableCopies int
	HasActiveBorrow bool
}

// DecideBorrow applies the borrow guards in order: copies first, then the duplicate loan.
func DecideBorrow(s BorrowState) BorrowOutcome {
	if s.AvailableCopies <= 0 {
		return BorrowNoCopiesAvailable
	}
	if s.HasActiveBorrow {
		return BorrowAlreadyActive
	}
	return BorrowSucceeded
}

// ReturnOutcome is the result of a return attempt on an existing book.
type ReturnOutcome int

const (
	ReturnSucceeded ReturnOutcome = iota
	ReturnNoActiveBorrow
)

func (o ReturnOutcome) String() string {
	switch o {
	case ReturnSucceeded:
		return "success"
	case ReturnNoActiveBorrow:
		return "no_active_borrow"
	default:
		return "unknown"
	}
}

// BorrowModel runs the borrow and return transitions.
type BorrowModel struct {
	DB           *sqlx.DB
	logger       Logger
	retryOptions []RetryOption
}

// WithRetryOptions returns a copy of m that retries transactions with opts.
func (m BorrowModel) WithRetryOptions(opts ...RetryOption) BorrowModel {
	m.retryOptions = opts
	return m
}

// Borrow lends one copy of bookID to userID. Guard failures are reported as outcomes and
// leave the database untouched. Returns ErrRecordNotFound for an unknown book.
func (m BorrowModel) Borrow(ctx context.Context, userID, bookID int64) (BorrowOutcome, error) {
	var outcome BorrowOutcome

	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = m.borrowOnce(ctx, userID, bookID)
		return err
	}, m.retryOptions...)
	if err != nil {
		return outcome, err
	}

	m.logger.Info(logMsgBorrowDecided, logAttrUserID, userID, logAttrBookID, bookID, logAttrOutcome, outcome.String())

	return outcome, nil
}

func (m BorrowModel) borrowOnce(ctx context.Context, userID, bookID int64) (BorrowOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Join(ErrTxFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := requireBook(ctx, tx, bookID); err != nil {
		return 0, err
	}

	availability, err := lockAvailability(ctx, tx, bookID)
	if err != nil {
		return 0, wrapTxErr(err)
	}

	active, err := hasActiveBorrow(ctx, tx, userID, bookID)
	if err != nil {
		return 0, wrapTxErr(err)
	}

	outcome := DecideBorrow(BorrowState{
		AvailableCopies: availability.AvailableCopies,
		HasActiveBorrow: active,
	})
	if outcome != BorrowSucceeded {
		return outcome, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE availability
		SET available_copies = available_copies - 1
		WHERE book_id = $1`, bookID)
	if err != nil {
		return 0, wrapTxErr(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO borrows (user_id, book_id, created)
		VALUES ($1, $2, now())`, userID, bookID)
	if err != nil {
		return 0, wrapTxErr(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapTxErr(err)
	}

	return BorrowSucceeded, nil
}

// Return closes the active loan of bookID by userID and puts the copy back.
// Returns ErrRecordNotFound for an unknown book.
func (m BorrowModel) Return(ctx context.Context, userID, bookID int64) (ReturnOutcome, error) {
	var outcome ReturnOutcome

	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = m.returnOnce(ctx, userID, bookID)
		return err
	}, m.retryOptions...)
	if err != nil {
		return outcome, err
	}

	m.logger.Info(logMsgReturnDecided, logAttrUserID, userID, logAttrBookID, bookID, logAttrOutcome, outcome.String())

	return outcome, nil
}

func (m BorrowModel) returnOnce(ctx context.Context, userID, bookID int64) (ReturnOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Join(ErrTxFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := requireBook(ctx, tx, bookID); err != nil {
		return 0, err
	}

	if _, err := lockAvailability(ctx, tx, bookID); err != nil {
		return 0, wrapTxErr(err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE borrows
		SET returned = now()
		WHERE user_id = $1 AND book_id = $2 AND returned IS NULL`, userID, bookID)
	if err != nil {
		return 0, wrapTxErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrapTxErr(err)
	}
	if rowsAffected == 0 {
		return ReturnNoActiveBorrow, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE availability
		SET available_copies = LEAST(available_copies + 1, total_copies)
		WHERE book_id = $1`, bookID)
	if err != nil {
		return 0, wrapTxErr(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapTxErr(err)
	}

	return ReturnSucceeded, nil
}

// GetAllForUser lists the loans of one user, newest first.
func (m BorrowModel) GetAllForUser(ctx context.Context, userID int64) ([]Borrow, error) {
	query := `
		SELECT id, user_id, book_id, created, returned
		FROM borrows
		WHERE user_id = $1
		ORDER BY created DESC, id DESC`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	borrows := []Borrow{}
	if err := m.DB.SelectContext(ctx, &borrows, query, userID); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return borrows, nil
}

func requireBook(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	if bookID < 1 {
		return ErrRecordNotFound
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM books WHERE book_id = $1)`, bookID); err != nil {
		return wrapTxErr(err)
	}
	if !exists {
		return ErrRecordNotFound
	}
	return nil
}

func hasActiveBorrow(ctx context.Context, tx *sqlx.Tx, userID, bookID int64) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM borrows
			WHERE user_id = $1 AND book_id = $2 AND returned IS NULL
		)`, userID, bookID)
	return exists, err
}

// wrapTxErr joins driver errors with ErrTxFailed; sentinels pass through unchanged.
func wrapTxErr(err error) error {
	if errors.Is(err, ErrRecordNotFound) {
		return err
	}
	return errors.Join(ErrTxFailed, err)
}
