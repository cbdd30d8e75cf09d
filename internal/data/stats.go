package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
)

// NotAvailable is reported as the average lending time before any loan has been returned.
const NotAvailable = "N/A"

// Stats are the catalog totals shown on the landing page.
type Stats struct {
	NumBooks          int    `json:"num_books" db:"num_books"`
	AllBooks          int    `json:"all_books" db:"all_books"`
	TotalAvailable    int    `json:"total_available" db:"total_available"`
	TotalWithCustomer int    `json:"total_with_customer" db:"total_with_customer"`
	AverageLending    string `json:"average_lending" db:"-"`
}

type statsRow struct {
	Stats
	AverageSeconds sql.NullFloat64 `db:"average_seconds"`
}

// StatsModel computes the landing page aggregates.
type StatsModel struct {
	DB *sqlx.DB
}

// Get computes all aggregates in one round-trip.
func (m StatsModel) Get(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM books) AS num_books,
			(SELECT COALESCE(SUM(total_copies), 0) FROM availability) AS all_books,
			(SELECT COALESCE(SUM(available_copies), 0) FROM availability) AS total_available,
			(SELECT count(*) FROM borrows) AS total_with_customer,
			(SELECT EXTRACT(EPOCH FROM AVG(returned - created))::float8
				FROM borrows
				WHERE returned IS NOT NULL) AS average_seconds`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var row statsRow
	if err := m.DB.GetContext(ctx, &row, query); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	stats := row.Stats
	stats.AverageLending = averageLending(row.AverageSeconds)

	return &stats, nil
}

// averageLending formats the mean loan length in seconds. NULL means no loan
// has been returned yet.
func averageLending(seconds sql.NullFloat64) string {
	if !seconds.Valid {
		return NotAvailable
	}
	return FormatLendingDuration(time.Duration(seconds.Float64 * float64(time.Second)))
}

// FormatLendingDuration renders d as "<days> days, <hours> hours, <minutes> minutes".
// Seconds below a minute are dropped.
func FormatLendingDuration(d time.Duration) string {
	totalSeconds := math.Floor(d.Seconds())

	days := int64(math.Floor(totalSeconds / 86400))
	hours := int64(math.Floor(totalSeconds/3600)) % 24
	minutes := int64(math.Floor(totalSeconds/60)) % 60

	return fmt.Sprintf("%d days, %d hours, %d minutes", days, hours, minutes)
}
