package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_DecideBorrow(t *testing.T) {
	testCases := []struct {
		name  string
		state BorrowState
		want  BorrowOutcome
	}{
		{"copy available and no loan", BorrowState{AvailableCopies: 1}, BorrowSucceeded},
		{"several copies available", BorrowState{AvailableCopies: 3}, BorrowSucceeded},
		{"no copies left", BorrowState{AvailableCopies: 0}, BorrowNoCopiesAvailable},
		{"negative counter is treated as empty", BorrowState{AvailableCopies: -1}, BorrowNoCopiesAvailable},
		{"reader already holds the book", BorrowState{AvailableCopies: 2, HasActiveBorrow: true}, BorrowAlreadyActive},
		{"copies are checked before the duplicate loan", BorrowState{AvailableCopies: 0, HasActiveBorrow: true}, BorrowNoCopiesAvailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecideBorrow(tc.state))
		})
	}
}

func Test_BorrowOutcome_String(t *testing.T) {
	assert.Equal(t, "success", BorrowSucceeded.String())
	assert.Equal(t, "no_copies_available", BorrowNoCopiesAvailable.String())
	assert.Equal(t, "already_borrowed", BorrowAlreadyActive.String())
	assert.Equal(t, "unknown", BorrowOutcome(42).String())
}

func Test_ReturnOutcome_String(t *testing.T) {
	assert.Equal(t, "success", ReturnSucceeded.String())
	assert.Equal(t, "no_active_borrow", ReturnNoActiveBorrow.String())
}

func Test_Borrow_IsActive(t *testing.T) {
	returned := time.Now()

	assert.True(t, Borrow{Created: time.Now()}.IsActive())
	assert.False(t, Borrow{Created: time.Now().Add(-time.Hour), Returned: &returned}.IsActive())
}

func Test_WishlistState_ToggleTwiceRestoresState(t *testing.T) {
	assert.Equal(t, WishlistPresent, WishlistAbsent.Toggled())
	assert.Equal(t, WishlistAbsent, WishlistPresent.Toggled())
	assert.Equal(t, WishlistAbsent, WishlistAbsent.Toggled().Toggled())
	assert.Equal(t, "present", WishlistPresent.String())
	assert.Equal(t, "absent", WishlistAbsent.String())
}
