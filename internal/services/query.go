package services

import (
	"strings"

	"gorm.io/gorm"
)

// applyFilters adds exact-match WHERE clauses for the whitelisted
// columns present in the query.
func applyFilters(q *gorm.DB, filters map[string]string, allowed map[string]bool) *gorm.DB {
	for column, value := range filters {
		if allowed[column] && value != "" {
			q = q.Where(column+" = ?", value)
		}
	}
	return q
}

// applyOrder parses an order spec of the form "col.desc,col2" and adds
// ORDER BY terms for whitelisted columns, falling back when no valid
// term survives.
func applyOrder(q *gorm.DB, order string, allowed map[string]bool, fallback string) *gorm.DB {
	applied := false
	for _, term := range strings.Split(order, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		column := term
		desc := false
		if strings.HasSuffix(term, ".desc") {
			column = strings.TrimSuffix(term, ".desc")
			desc = true
		} else {
			column = strings.TrimSuffix(term, ".asc")
		}
		if !allowed[column] {
			continue
		}
		clause := column
		if desc {
			clause += " DESC"
		}
		q = q.Order(clause)
		applied = true
	}
	if !applied && fallback != "" {
		q = q.Order(fallback)
	}
	return q
}
