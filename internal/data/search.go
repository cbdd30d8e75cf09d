package data

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// SearchMode decides how title and author terms are combined.
type SearchMode int

const (
	SearchOr  SearchMode = 0
	SearchAnd SearchMode = 1
)

// ParseSearchMode maps the search_type query value to a SearchMode.
// Only "0" selects OR; absent or malformed values fall back to AND.
func ParseSearchMode(s string) SearchMode {
	if strings.TrimSpace(s) == "0" {
		return SearchOr
	}
	return SearchAnd
}

func (m SearchMode) String() string {
	if m == SearchOr {
		return "0"
	}
	return "1"
}

// SearchCriteria holds the optional substring terms of a catalog search.
type SearchCriteria struct {
	Title  string
	Author string
	Mode   SearchMode
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Predicate builds the WHERE expression for the criteria. Matching is a case-sensitive
// substring match. The returned list is empty when no term is set, which matches every book.
func (c SearchCriteria) Predicate() exp.ExpressionList {
	terms := make([]exp.Expression, 0, 2)

	if c.Title != "" {
		terms = append(terms, goqu.I("b.title").Like(containsPattern(c.Title)))
	}
	if c.Author != "" {
		terms = append(terms, goqu.I("b.authors").Like(containsPattern(c.Author)))
	}

	if c.Mode == SearchOr {
		return goqu.Or(terms...)
	}
	return goqu.And(terms...)
}
