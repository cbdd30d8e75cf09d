package data

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// AmazonLink is a store page for a book. Read-only metadata.
type AmazonLink struct {
	BookID int64  `json:"-" db:"book_id"`
	URL    string `json:"url" db:"url"`
}

// AmazonLinkModel reads amazon_links.
type AmazonLinkModel struct {
	DB *sqlx.DB
}

// GetAllForBook returns the links of one book ordered by url.
func (m AmazonLinkModel) GetAllForBook(ctx context.Context, bookID int64) ([]AmazonLink, error) {
	query := `
		SELECT book_id, url
		FROM amazon_links
		WHERE book_id = $1
		ORDER BY url`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	links := []AmazonLink{}
	if err := m.DB.SelectContext(ctx, &links, query, bookID); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return links, nil
}
