package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aoideee/library-catalog/internal/validator"
)

func fixtureBook() *Book {
	return &Book{
		ID:              1,
		ISBN:            "9780321765723",
		Authors:         "Eric Matthes",
		Title:           "Python Crash Course",
		PublicationYear: 2019,
		Language:        "English",
	}
}

func Test_ValidateBook_AcceptsPublicationYearsInRange(t *testing.T) {
	years := []int{MinPublicationYear, -1, 0, 1925, MaxPublicationYear() - 1, MaxPublicationYear()}

	for _, year := range years {
		book := fixtureBook()
		book.PublicationYear = year

		v := validator.New()
		ValidateBook(v, book)

		assert.True(t, v.Valid(), "year %d should be valid, got %v", year, v.Errors)
	}
}

func Test_ValidateBook_RejectsPublicationYearsOutOfRange(t *testing.T) {
	years := []int{MinPublicationYear - 1, -5000, MaxPublicationYear() + 1, MaxPublicationYear() + 100}

	for _, year := range years {
		book := fixtureBook()
		book.PublicationYear = year

		v := validator.New()
		ValidateBook(v, book)

		assert.Contains(t, v.Errors, "publication_year", "year %d should be rejected", year)
	}
}

func Test_ValidateBook_RequiredFields(t *testing.T) {
	v := validator.New()
	ValidateBook(v, &Book{PublicationYear: 2000})

	for _, field := range []string{"book_id", "isbn", "title", "authors", "language"} {
		assert.Contains(t, v.Errors, field)
	}
}

func Test_ValidateBook_RejectsLongISBN(t *testing.T) {
	book := fixtureBook()
	book.ISBN = "97803217657231"

	v := validator.New()
	ValidateBook(v, book)

	assert.Equal(t, "must not be more than 13 characters long", v.Errors["isbn"])
}

func Test_ValidateAvailability(t *testing.T) {
	testCases := []struct {
		name      string
		total     int
		available int
		valid     bool
	}{
		{"all copies available", 5, 5, true},
		{"some copies lent", 5, 3, true},
		{"nothing in stock", 0, 0, true},
		{"more available than total", 2, 3, false},
		{"negative available", 2, -1, false},
		{"negative total", -1, -1, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := validator.New()
			ValidateAvailability(v, &Availability{TotalCopies: tc.total, AvailableCopies: tc.available})

			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func Test_Book_String(t *testing.T) {
	assert.Equal(t, "Python Crash Course by Eric Matthes (2019)", fixtureBook().String())
}

func Test_Annotate_SkipsAnonymousUser(t *testing.T) {
	// arrange: no database behind the model, any query would panic
	m := BookModel{}
	books := []*BookListing{
		{Book: Book{ID: 1, Title: "Python Crash Course"}},
		{Book: Book{ID: 2, Title: "The Great Gatsby"}},
	}

	// act
	err := m.Annotate(context.Background(), AnonymousUser, books)

	// assert
	assert.NoError(t, err)
	for _, b := range books {
		assert.False(t, b.IsWishlisted)
		assert.False(t, b.IsBorrowed)
	}
}

func Test_Annotate_SkipsEmptyPage(t *testing.T) {
	m := BookModel{}

	err := m.Annotate(context.Background(), &User{ID: 7, Username: "reader"}, nil)

	assert.NoError(t, err)
}
