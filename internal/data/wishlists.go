package data

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

const logMsgWishlistToggled = "wishlist toggled"

// WishlistState is the membership of one book in one user's wishlist.
type WishlistState int

const (
	WishlistAbsent WishlistState = iota
	WishlistPresent
)

// Toggled is the state a toggle moves to from s.
func (s WishlistState) Toggled() WishlistState {
	if s == WishlistPresent {
		return WishlistAbsent
	}
	return WishlistPresent
}

func (s WishlistState) String() string {
	if s == WishlistPresent {
		return "present"
	}
	return "absent"
}

// WishlistModel runs the wishlist toggle.
type WishlistModel struct {
	DB     *sqlx.DB
	logger Logger
}

// Toggle flips the membership of bookID in userID's wishlist and returns the new state.
// Returns ErrRecordNotFound for an unknown book.
func (m WishlistModel) Toggle(ctx context.Context, userID, bookID int64) (WishlistState, error) {
	if bookID < 1 {
		return WishlistAbsent, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	if err := m.DB.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM books WHERE book_id = $1)`, bookID); err != nil {
		return WishlistAbsent, errors.Join(ErrQueryFailed, err)
	}
	if !exists {
		return WishlistAbsent, ErrRecordNotFound
	}

	// Deleting first tells us the current state without a separate read.
	deleteQuery, deleteArgs, err := dialect().
		Delete("wishlists").
		Where(goqu.C("user_id").Eq(userID), goqu.C("book_id").Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return WishlistAbsent, errors.Join(ErrQueryFailed, err)
	}

	result, err := m.DB.ExecContext(ctx, deleteQuery, deleteArgs...)
	if err != nil {
		return WishlistAbsent, errors.Join(ErrQueryFailed, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return WishlistAbsent, errors.Join(ErrQueryFailed, err)
	}

	current := WishlistAbsent
	if deleted > 0 {
		current = WishlistPresent
	}

	next := current.Toggled()
	if next == WishlistPresent {
		if err := m.insert(ctx, userID, bookID); err != nil {
			return current, err
		}
	}

	m.logger.Info(logMsgWishlistToggled, logAttrUserID, userID, logAttrBookID, bookID, logAttrOutcome, next.String())

	return next, nil
}

// insert adds the pair; a concurrent insert of the same pair is a no-op.
func (m WishlistModel) insert(ctx context.Context, userID, bookID int64) error {
	query, args, err := dialect().
		Insert("wishlists").
		Cols("user_id", "book_id").
		Vals(goqu.Vals{userID, bookID}).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return errors.Join(ErrQueryFailed, err)
	}

	if _, err := m.DB.ExecContext(ctx, query, args...); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

// GetBookIDsForUser returns the wishlisted book ids of one user.
func (m WishlistModel) GetBookIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ids := []int64{}
	err := m.DB.SelectContext(ctx, &ids, `SELECT book_id FROM wishlists WHERE user_id = $1 ORDER BY book_id`, userID)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return ids, nil
}
