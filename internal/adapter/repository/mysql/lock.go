package mysql

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds SELECT ... FOR UPDATE on MySQL. SQLite (tests) has no row
// locks; its single-writer model serializes transactions on its own, so the
// clause is skipped there rather than producing a syntax error.
func forUpdate(q *gorm.DB) *gorm.DB {
	if q.Dialector.Name() == "mysql" {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}
