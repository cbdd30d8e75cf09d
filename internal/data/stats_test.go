package data

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_FormatLendingDuration(t *testing.T) {
	testCases := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"zero", 0, "0 days, 0 hours, 0 minutes"},
		{"exactly one day", 24 * time.Hour, "1 days, 0 hours, 0 minutes"},
		{"seconds are dropped", 59 * time.Second, "0 days, 0 hours, 0 minutes"},
		{"hours and minutes", 3*time.Hour + 25*time.Minute + 10*time.Second, "0 days, 3 hours, 25 minutes"},
		{"mean of two and five days", (2*24*time.Hour + 5*24*time.Hour) / 2, "3 days, 12 hours, 0 minutes"},
		{"hours wrap at a day", 49*time.Hour + 61*time.Minute, "2 days, 2 hours, 1 minutes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatLendingDuration(tc.in))
		})
	}
}

func Test_AverageLending(t *testing.T) {
	testCases := []struct {
		name    string
		seconds sql.NullFloat64
		want    string
	}{
		{"no returned loans", sql.NullFloat64{}, NotAvailable},
		{"null ignores stale value", sql.NullFloat64{Float64: 86400}, "N/A"},
		{"one day loan", sql.NullFloat64{Float64: 86400, Valid: true}, "1 days, 0 hours, 0 minutes"},
		{"fractional seconds", sql.NullFloat64{Float64: 90061.75, Valid: true}, "1 days, 1 hours, 1 minutes"},
		{"zero length loan", sql.NullFloat64{Float64: 0, Valid: true}, "0 days, 0 hours, 0 minutes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, averageLending(tc.seconds))
		})
	}
}
