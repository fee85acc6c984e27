package store

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// Builder is the statement builder all stores share; postgres wants
// dollar placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func IsErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsErrUniqueViolation reports whether err is a postgres unique
// constraint violation.
func IsErrUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
