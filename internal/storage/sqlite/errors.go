package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// constraintCode returns the extended result code of a constraint
// violation, or 0 when err is not one.
func constraintCode(err error) sqlite3.ErrNoExtended {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return sqliteErr.ExtendedCode
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return constraintCode(err) == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	return constraintCode(err) == sqlite3.ErrConstraintForeignKey
}

func isCheckViolation(err error) bool {
	return constraintCode(err) == sqlite3.ErrConstraintCheck
}
