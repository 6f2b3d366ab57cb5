package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"

	requesterForeignKey = "change_requests_requester_id_fkey"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// isConstraintViolation matches unique, foreign key and check violations
func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case pqUniqueViolation, pqForeignKeyViolation, pqCheckViolation:
		return true
	}
	return false
}

// isForeignKeyViolationOn matches a foreign key violation raised by the named constraint
func isForeignKeyViolationOn(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation && pqErr.Constraint == constraint
}
