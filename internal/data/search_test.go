package data

import (
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultFilters() Filters {
	return Filters{Page: 1, PageSize: 20, Sort: "title", SortSafeList: []string{"title", "-title"}}
}

func whereClause(t *testing.T, query string) string {
	t.Helper()

	idx := strings.Index(query, " WHERE ")
	if idx < 0 {
		return ""
	}
	end := strings.Index(query, " ORDER BY ")
	require.Greater(t, end, idx)

	return query[idx:end]
}

func Test_ParseSearchMode(t *testing.T) {
	testCases := []struct {
		in   string
		want SearchMode
	}{
		{"1", SearchAnd},
		{"0", SearchOr},
		{"", SearchAnd},
		{"2", SearchAnd},
		{"or", SearchAnd},
		{" 0 ", SearchOr},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseSearchMode(tc.in), "input %q", tc.in)
	}
}

func Test_SearchMode_String_RoundTrips(t *testing.T) {
	assert.Equal(t, SearchAnd, ParseSearchMode(SearchAnd.String()))
	assert.Equal(t, SearchOr, ParseSearchMode(SearchOr.String()))
}

func Test_Predicate_IsEmptyWithoutTerms(t *testing.T) {
	assert.True(t, SearchCriteria{Mode: SearchAnd}.Predicate().IsEmpty())
	assert.True(t, SearchCriteria{Mode: SearchOr}.Predicate().IsEmpty())
}

func Test_BuildListQuery_WithoutTermsHasNoWhereClause(t *testing.T) {
	query, _, err := buildListQuery(SearchCriteria{}, defaultFilters())

	require.NoError(t, err)
	assert.Empty(t, whereClause(t, query))
	assert.Contains(t, query, `ORDER BY "b"."title" ASC, "b"."book_id" ASC`)
}

func Test_BuildListQuery_TitleOnly(t *testing.T) {
	query, args, err := buildListQuery(SearchCriteria{Title: "Python", Mode: SearchAnd}, defaultFilters())

	require.NoError(t, err)
	where := whereClause(t, query)
	assert.Contains(t, where, `"b"."title" LIKE $`)
	assert.NotContains(t, where, `"b"."authors"`)
	assert.Contains(t, args, "%Python%")
}

func Test_BuildListQuery_CombinesTermsPerMode(t *testing.T) {
	testCases := []struct {
		name     string
		mode     SearchMode
		operator string
		absent   string
	}{
		{"and", SearchAnd, " AND ", " OR "},
		{"or", SearchOr, " OR ", " AND "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			criteria := SearchCriteria{Title: "Python", Author: "Harper Lee", Mode: tc.mode}

			query, args, err := buildListQuery(criteria, defaultFilters())

			require.NoError(t, err)
			where := whereClause(t, query)
			assert.Contains(t, where, `"b"."title" LIKE $`)
			assert.Contains(t, where, `"b"."authors" LIKE $`)
			assert.Contains(t, where, tc.operator)
			assert.NotContains(t, where, tc.absent)
			assert.Contains(t, args, "%Python%")
			assert.Contains(t, args, "%Harper Lee%")
		})
	}
}

func Test_BuildListQuery_SortsDescending(t *testing.T) {
	filters := defaultFilters()
	filters.Sort = "-title"

	query, _, err := buildListQuery(SearchCriteria{}, filters)

	require.NoError(t, err)
	assert.Contains(t, query, `ORDER BY "b"."title" DESC`)
}

func Test_BuildListQuery_IgnoresUnsafeSort(t *testing.T) {
	filters := defaultFilters()
	filters.Sort = "isbn; DROP TABLE books"

	query, _, err := buildListQuery(SearchCriteria{}, filters)

	require.NoError(t, err)
	assert.NotContains(t, query, "DROP")
	assert.Contains(t, query, `ORDER BY "b"."title" ASC`)
}

func Test_ContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%snake\_case%`, containsPattern("snake_case"))
	assert.Equal(t, `%C:\\books%`, containsPattern(`C:\books`))
}

func Test_BuildListQuery_KeepsRandomTermsOutOfSQL(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for i := 0; i < 200; i++ {
		var criteria SearchCriteria
		f.Fuzz(&criteria.Title)
		f.Fuzz(&criteria.Author)
		criteria.Mode = SearchMode(i % 2)

		query, args, err := buildListQuery(criteria, defaultFilters())

		require.NoError(t, err)
		if criteria.Title != "" {
			assert.Contains(t, args, containsPattern(criteria.Title))
		}
		if criteria.Author != "" {
			assert.Contains(t, args, containsPattern(criteria.Author))
		}
		assert.True(t, strings.HasPrefix(query, "SELECT "))
	}
}
