package pgrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
)

var userColumns = []string{"id", "name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login"}

// userRow maps the roles array column that user.User keeps out of its db tags.
type userRow struct {
	user.User
	Roles pq.StringArray `db:"roles"`
}

func (row userRow) toUser() user.User {
	usr := row.User
	usr.Roles = row.Roles
	return usr
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) trapWriteErr(err error, msg string) error {
	if e, ok := pqErr(err, codeUniqueViolation); ok {
		if strings.Contains(e.Constraint, "email") {
			return user.ErrEmailExists
		}
		return user.ErrUsernameExists
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	var clauses sq.Or
	if username != "" {
		clauses = append(clauses, sq.Eq{"LOWER(username)": strings.ToLower(username)})
	}
	if email != "" {
		clauses = append(clauses, sq.Eq{"LOWER(email)": strings.ToLower(email)})
	}
	if clauses == nil {
		return nil
	}

	qb := psql.Select("username", "email").From("users").Where(clauses)
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		qb = qb.Where(sq.NotEq{"id": ids})
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var rows []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if username != "" && strings.EqualFold(row.Username, username) {
			return user.ErrUsernameExists
		}
		if email != "" && strings.EqualFold(row.Email, email) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()

	q, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(usr.ID, usr.Name, usr.Username, usr.Email, usr.IsActive, pq.Array(usr.Roles),
			usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return user.User{}, repo.trapWriteErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	qb := psql.Select(userColumns...).From("users")

	switch {
	case filter.ID != "":
		// an invalid uuid can never match a row
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		qb = qb.Where(sq.Eq{"id": filter.ID})
	case filter.Username != "":
		qb = qb.Where(sq.Eq{"LOWER(username)": strings.ToLower(filter.Username)})
	case filter.Email != "":
		qb = qb.Where(sq.Eq{"LOWER(email)": strings.ToLower(filter.Email)})
	case len(filter.UsernameOrEmail) > 0:
		var clauses sq.Or
		for _, uname := range filter.UsernameOrEmail {
			val := strings.ToLower(uname)
			clauses = append(clauses, sq.Eq{"LOWER(username)": val}, sq.Eq{"LOWER(email)": val})
		}
		qb = qb.Where(clauses)
	default:
		return user.User{}, errors.New("empty user lookup filter")
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var row userRow
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return row.toUser(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	qb := psql.Select(userColumns...).From("users")

	if filter != nil {
		// users with a name, username or email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{
				sq.ILike{"name": val},
				sq.ILike{"username": val},
				sq.ILike{"email": val},
			})
		}
		// users with at least one role matching any of the given prefixes
		if len(filter.Roles) > 0 {
			var clauses sq.Or
			for _, role := range filter.Roles {
				clauses = append(clauses, sq.Expr(
					"EXISTS (SELECT 1 FROM UNNEST(roles) AS user_role WHERE user_role ILIKE ?)",
					role+"%",
				))
			}
			qb = qb.Where(clauses)
		}
		if filter.IsActive != nil {
			qb = qb.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			qb = qb.Where(sq.GtOrEq{"created_at": filter.CreatedFrom})
		}
		if !filter.CreatedTo.IsZero() {
			qb = qb.Where(sq.LtOrEq{"created_at": filter.CreatedTo})
		}
	}
	qb = qb.OrderBy(orderings(ordering, "created_at DESC")...)

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []userRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.toUser()
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	qb := psql.Update("users").Where(sq.Eq{"id": usr.ID})

	var dirty bool
	if usr.Name != "" {
		qb = qb.Set("name", usr.Name)
		dirty = true
	}
	if usr.Username != "" {
		qb = qb.Set("username", usr.Username)
		dirty = true
	}
	if usr.Email != "" {
		qb = qb.Set("email", usr.Email)
		dirty = true
	}
	if isActive != nil {
		qb = qb.Set("is_active", *isActive)
		dirty = true
	}
	if usr.Roles != nil {
		qb = qb.Set("roles", pq.Array(usr.Roles))
		dirty = true
	}
	if len(usr.PasswordHash) > 0 {
		qb = qb.Set("password_hash", usr.PasswordHash)
		dirty = true
	}
	if !usr.LastLogin.IsZero() {
		qb = qb.Set("last_login", usr.LastLogin)
		dirty = true
	}
	if !usr.UpdatedAt.IsZero() {
		qb = qb.Set("updated_at", usr.UpdatedAt)
		dirty = true
	}
	if !dirty {
		return repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
	}

	q, args, err := qb.Suffix("RETURNING " + strings.Join(userColumns, ", ")).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var row userRow
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, repo.trapWriteErr(err, "updating user")
	}
	return row.toUser(), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	q, args, err := psql.Delete("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
