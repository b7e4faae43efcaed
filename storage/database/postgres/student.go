package pgrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/student"
)

var studentColumns = []string{"student_id", "first_name", "last_name", "email", "contact_no", "enrolled_year", "current_course_id"}

type studentRepository struct {
	repository
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{repository{exec: exec}}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) trapWriteErr(err error, msg string) error {
	if e, ok := pqErr(err, codeUniqueViolation); ok {
		switch e.Constraint {
		case "students_pkey":
			return student.ErrStudentIDExists
		case "students_email_key":
			return student.ErrEmailExists
		}
	}
	if _, ok := pqErr(err, codeFKViolation); ok {
		return student.ErrCourseNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q, args, err := psql.Insert("students").
		Columns(studentColumns...).
		Values(std.StudentID, std.FirstName, std.LastName, std.Email, std.ContactNo, std.EnrolledYear, std.CurrentCourseID).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return student.Student{}, repo.trapWriteErr(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	q, args, err := psql.Select(studentColumns...).
		From("students").
		Where(sq.Eq{"student_id": id}).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	var std student.Student
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &std, q, args...); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student")
	}
	return std, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	qb := psql.Select(studentColumns...).From("students")

	if filter != nil {
		if filter.CourseID != "" {
			qb = qb.Where(sq.Eq{"current_course_id": filter.CourseID})
		}
		if filter.EnrolledYear != 0 {
			qb = qb.Where(sq.Eq{"enrolled_year": filter.EnrolledYear})
		}
		// students with a name, email or ID matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{
				sq.ILike{"first_name": val},
				sq.ILike{"last_name": val},
				sq.ILike{"email": val},
				sq.ILike{"student_id": val},
			})
		}
	}
	qb = qb.OrderBy(orderings(ordering, "student_id")...)

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var students []student.Student
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	qb := psql.Update("students").Where(sq.Eq{"student_id": std.StudentID})

	var dirty bool
	if std.FirstName != "" {
		qb = qb.Set("first_name", std.FirstName)
		dirty = true
	}
	if std.LastName != "" {
		qb = qb.Set("last_name", std.LastName)
		dirty = true
	}
	if std.Email != "" {
		qb = qb.Set("email", std.Email)
		dirty = true
	}
	if std.ContactNo.Valid {
		qb = qb.Set("contact_no", std.ContactNo)
		dirty = true
	}
	if std.EnrolledYear.Valid {
		qb = qb.Set("enrolled_year", std.EnrolledYear)
		dirty = true
	}
	if std.CurrentCourseID.Valid {
		qb = qb.Set("current_course_id", std.CurrentCourseID)
		dirty = true
	}
	if !dirty {
		return repo.GetStudent(ctx, std.StudentID, exec...)
	}

	q, args, err := qb.Suffix("RETURNING " + strings.Join(studentColumns, ", ")).ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	var updated student.Student
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &updated, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, repo.trapWriteErr(err, "updating student")
	}
	return updated, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string) error {
	q, args, err := psql.Delete("students").Where(sq.Eq{"student_id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.exec.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if cnt == 0 {
		return student.ErrNotFound
	}
	return nil
}
