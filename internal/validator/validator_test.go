package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aoideee/library-catalog/internal/validator"
)

func Test_Validator_KeepsFirstErrorPerField(t *testing.T) {
	v := validator.New()

	v.Check(false, "title", "must be provided")
	v.Check(false, "title", "must not be more than 255 characters long")
	v.Check(true, "isbn", "must be provided")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"title": "must be provided"}, v.Errors)
}

func Test_Validator_IsValidWithoutErrors(t *testing.T) {
	v := validator.New()

	v.Check(true, "title", "must be provided")

	assert.True(t, v.Valid())
}

func Test_In(t *testing.T) {
	assert.True(t, validator.In("title", "title", "-title"))
	assert.False(t, validator.In("isbn", "title", "-title"))
	assert.False(t, validator.In("title"))
}

func Test_Between(t *testing.T) {
	assert.True(t, validator.Between(-1000, -1000, 2027))
	assert.True(t, validator.Between(2027, -1000, 2027))
	assert.False(t, validator.Between(-1001, -1000, 2027))
	assert.False(t, validator.Between(2028, -1000, 2027))
}

func Test_MaxChars_CountsCharactersNotBytes(t *testing.T) {
	assert.True(t, validator.MaxChars("Ελληνικά", 8))
	assert.False(t, validator.MaxChars("Ελληνικά!", 8))
	assert.True(t, validator.MaxChars("", 0))
}
