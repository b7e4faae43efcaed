// Package pgrepos implements the domain repositories on PostgreSQL with
// sqlx and squirrel.
package pgrepos

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

// psql builds queries with Postgres-style placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	codeUniqueViolation = pq.ErrorCode("23505")
	codeFKViolation     = pq.ErrorCode("23503")
)

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// pqErr reports whether err is a *pq.Error with the given code.
func pqErr(err error, code pq.ErrorCode) (*pq.Error, bool) {
	if e, ok := err.(*pq.Error); ok && e.Code == code {
		return e, true
	}
	return nil, false
}

// orderings renders an ORDER BY list, falling back to the given default.
func orderings(ordering []core.DBOrdering, dflt string) []string {
	if len(ordering) == 0 {
		return []string{dflt}
	}
	list := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		list = append(list, ord.String())
	}
	return list
}
