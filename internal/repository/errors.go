package repository

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
)

// mapConstraintErr remaps sqlite unique-constraint violations to
// Conflict with the offending column name; everything else passes
// through untouched for the boundary to wrap as internal.
func mapConstraintErr(err error, entityName string) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return apperr.Conflict(constraintField(sqliteErr.Error()), entityName+" already exists")
		}
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return apperr.Validation("", "referenced "+entityName+" does not exist")
		}
	}
	return err
}

// constraintField extracts the column from messages like
// "UNIQUE constraint failed: suppliers.name".
func constraintField(msg string) string {
	idx := strings.LastIndex(msg, ": ")
	if idx < 0 {
		return ""
	}
	qualified := msg[idx+2:]
	// first column is enough to point the caller at the duplicate
	if comma := strings.Index(qualified, ","); comma >= 0 {
		qualified = qualified[:comma]
	}
	if dot := strings.Index(qualified, "."); dot >= 0 {
		return strings.TrimSpace(qualified[dot+1:])
	}
	return strings.TrimSpace(qualified)
}
