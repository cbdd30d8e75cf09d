// Package validator collects field-level problems so that every invalid
// field of an entity can be reported at once.
package validator

import (
	"slices"
	"unicode/utf8"
)

// Validator maps field names to the first problem found with them.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid reports whether no problem has been recorded.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records message for key unless key already failed.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check records message for key when ok is false.
//
//	v.Check(book.Title != "", "title", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// In reports whether value is one of list.
func In[T comparable](value T, list ...T) bool {
	return slices.Contains(list, value)
}

// Between reports whether lo <= value <= hi.
func Between(value, lo, hi int) bool {
	return value >= lo && value <= hi
}

// MaxChars reports whether s has at most n characters. Postgres varchar
// limits count characters, not bytes.
func MaxChars(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}
