package data

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// User mirrors an identity authenticated upstream.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// AnonymousUser represents a requester without an identity.
var AnonymousUser = &User{}

// IsAnonymous reports whether u is the AnonymousUser.
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// UserModel stores the local mirror of upstream identities.
type UserModel struct {
	DB *sqlx.DB
}

// Upsert returns the user with the given username, creating the row on first sight.
func (m UserModel) Upsert(ctx context.Context, username string) (*User, error) {
	query := `
		INSERT INTO users (username)
		VALUES ($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, created_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user User
	if err := m.DB.GetContext(ctx, &user, query, username); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return &user, nil
}
