package core

import (
	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor can run queries either directly on a DB or within a transaction.
	// *sqlx.DB and *sqlx.Tx both satisfy it.
	DBExecutor interface {
		sqlx.ExtContext
	}

	DB interface {
		DBExecutor

		Beginx() (*sqlx.Tx, error)
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
