package pgrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
)

var (
	courseColumns     = []string{"course_id", "course_name", "total_credits", "created_at"}
	moduleColumns     = []string{"module_id", "course_id", "module_name", "duration_weeks"}
	assignmentColumns = []string{"assignment_id", "module_id", "title", "description", "due_date", "max_score", "weightage_percent"}
	regColumns        = []string{"registration_id", "student_id", "module_id", "status", "start_date"}
)

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{repository{exec: exec}}
}

func (repo courseRepository) QueryCourses(ctx context.Context, exec ...core.DBExecutor) ([]course.Course, error) {
	q, args, err := psql.Select(courseColumns...).From("courses").OrderBy("course_id").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var courses []course.Course
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &courses, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string, exec ...core.DBExecutor) (course.Course, error) {
	q, args, err := psql.Select(courseColumns...).From("courses").Where(sq.Eq{"course_id": id}).ToSql()
	if err != nil {
		return course.Course{}, errors.Wrap(err, "building query")
	}
	var crs course.Course
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &crs, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourseDetails(ctx context.Context, id string, exec ...core.DBExecutor) (course.CourseDetails, error) {
	crs, err := repo.GetCourse(ctx, id, exec...)
	if err != nil {
		return course.CourseDetails{}, err
	}
	mods, err := repo.QueryModules(ctx, id, exec...)
	if err != nil {
		return course.CourseDetails{}, err
	}

	details := course.CourseDetails{Course: crs, Modules: make([]course.ModuleDetails, 0, len(mods))}
	if len(mods) == 0 {
		return details, nil
	}

	ids := make([]string, 0, len(mods))
	for _, mod := range mods {
		ids = append(ids, mod.ModuleID)
	}
	q, args, err := psql.Select(assignmentColumns...).
		From("assignments").
		Where(sq.Eq{"module_id": ids}).
		OrderBy("assignment_id").
		ToSql()
	if err != nil {
		return course.CourseDetails{}, errors.Wrap(err, "building query")
	}
	var asgs []course.Assignment
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &asgs, q, args...); err != nil {
		return course.CourseDetails{}, errors.Wrap(err, "querying assignments")
	}

	byModule := make(map[string][]course.Assignment, len(mods))
	for _, asg := range asgs {
		byModule[asg.ModuleID] = append(byModule[asg.ModuleID], asg)
	}
	for _, mod := range mods {
		masgs := byModule[mod.ModuleID]
		if masgs == nil {
			masgs = []course.Assignment{}
		}
		details.Modules = append(details.Modules, course.ModuleDetails{Module: mod, Assignments: masgs})
	}
	return details, nil
}

func (repo courseRepository) QueryModules(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]course.Module, error) {
	qb := psql.Select(moduleColumns...).From("modules").OrderBy("module_id")
	if courseID != "" {
		qb = qb.Where(sq.Eq{"course_id": courseID})
	}
	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var mods []course.Module
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &mods, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	return mods, nil
}

func (repo courseRepository) GetModule(ctx context.Context, id string, exec ...core.DBExecutor) (course.Module, error) {
	q, args, err := psql.Select(moduleColumns...).From("modules").Where(sq.Eq{"module_id": id}).ToSql()
	if err != nil {
		return course.Module{}, errors.Wrap(err, "building query")
	}
	var mod course.Module
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &mod, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Module{}, course.ErrModuleNotFound
		}
		return course.Module{}, errors.Wrap(err, "finding module")
	}
	return mod, nil
}

func (repo courseRepository) CreateModule(ctx context.Context, mod course.Module, exec ...core.DBExecutor) (course.Module, error) {
	q, args, err := psql.Insert("modules").
		Columns(moduleColumns...).
		Values(mod.ModuleID, mod.CourseID, mod.ModuleName, mod.DurationWeeks).
		ToSql()
	if err != nil {
		return course.Module{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		if _, ok := pqErr(err, codeUniqueViolation); ok {
			return course.Module{}, course.ErrModuleIDExists
		}
		if _, ok := pqErr(err, codeFKViolation); ok {
			return course.Module{}, course.ErrNotFound
		}
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo courseRepository) UpdateModule(ctx context.Context, mod course.Module, exec ...core.DBExecutor) (course.Module, error) {
	qb := psql.Update("modules").Where(sq.Eq{"module_id": mod.ModuleID})

	var dirty bool
	if mod.ModuleName != "" {
		qb = qb.Set("module_name", mod.ModuleName)
		dirty = true
	}
	if mod.DurationWeeks != 0 {
		qb = qb.Set("duration_weeks", mod.DurationWeeks)
		dirty = true
	}
	if mod.CourseID.Valid {
		qb = qb.Set("course_id", mod.CourseID)
		dirty = true
	}
	if !dirty {
		return repo.GetModule(ctx, mod.ModuleID, exec...)
	}

	q, args, err := qb.Suffix("RETURNING " + strings.Join(moduleColumns, ", ")).ToSql()
	if err != nil {
		return course.Module{}, errors.Wrap(err, "building query")
	}
	var updated course.Module
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &updated, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Module{}, course.ErrModuleNotFound
		}
		if _, ok := pqErr(err, codeFKViolation); ok {
			return course.Module{}, course.ErrNotFound
		}
		return course.Module{}, errors.Wrap(err, "updating module")
	}
	return updated, nil
}

func (repo courseRepository) DeleteModule(ctx context.Context, id string, exec ...core.DBExecutor) error {
	q, args, err := psql.Delete("modules").Where(sq.Eq{"module_id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting module")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting module")
	}
	if cnt == 0 {
		return course.ErrModuleNotFound
	}
	return nil
}

func (repo courseRepository) QueryAssignments(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]course.Assignment, error) {
	qb := psql.Select(assignmentColumns...).From("assignments").OrderBy("assignment_id")
	if moduleID != "" {
		qb = qb.Where(sq.Eq{"module_id": moduleID})
	}
	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var asgs []course.Assignment
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &asgs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return asgs, nil
}

func (repo courseRepository) GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (course.Assignment, error) {
	q, args, err := psql.Select(assignmentColumns...).From("assignments").Where(sq.Eq{"assignment_id": id}).ToSql()
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "building query")
	}
	var asg course.Assignment
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &asg, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Assignment{}, course.ErrAssignmentNotFound
		}
		return course.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return asg, nil
}

func (repo courseRepository) CreateAssignment(ctx context.Context, asg course.Assignment, exec ...core.DBExecutor) (course.Assignment, error) {
	q, args, err := psql.Insert("assignments").
		Columns(assignmentColumns...).
		Values(asg.AssignmentID, asg.ModuleID, asg.Title, asg.Description, asg.DueDate, asg.MaxScore, asg.WeightagePercent).
		ToSql()
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		if _, ok := pqErr(err, codeUniqueViolation); ok {
			return course.Assignment{}, course.ErrAssignmentIDExists
		}
		if _, ok := pqErr(err, codeFKViolation); ok {
			return course.Assignment{}, course.ErrModuleNotFound
		}
		return course.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo courseRepository) UpdateAssignment(ctx context.Context, asg course.Assignment, dueDate *time.Time, exec ...core.DBExecutor) (course.Assignment, error) {
	qb := psql.Update("assignments").Where(sq.Eq{"assignment_id": asg.AssignmentID})

	var dirty bool
	if asg.Title != "" {
		qb = qb.Set("title", asg.Title)
		dirty = true
	}
	if asg.Description.Valid {
		qb = qb.Set("description", asg.Description)
		dirty = true
	}
	if dueDate != nil {
		qb = qb.Set("due_date", *dueDate)
		dirty = true
	}
	if asg.MaxScore != 0 {
		qb = qb.Set("max_score", asg.MaxScore)
		dirty = true
	}
	if asg.WeightagePercent.Valid {
		qb = qb.Set("weightage_percent", asg.WeightagePercent)
		dirty = true
	}
	if !dirty {
		return repo.GetAssignment(ctx, asg.AssignmentID, exec...)
	}

	q, args, err := qb.Suffix("RETURNING " + strings.Join(assignmentColumns, ", ")).ToSql()
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "building query")
	}
	var updated course.Assignment
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &updated, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Assignment{}, course.ErrAssignmentNotFound
		}
		return course.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return updated, nil
}

func (repo courseRepository) DeleteAssignment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	q, args, err := psql.Delete("assignments").Where(sq.Eq{"assignment_id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if cnt == 0 {
		return course.ErrAssignmentNotFound
	}
	return nil
}

func (repo courseRepository) CreateRegistration(ctx context.Context, reg course.Registration, exec ...core.DBExecutor) (course.Registration, error) {
	q, args, err := psql.Insert("module_registrations").
		Columns("student_id", "module_id", "status", "start_date").
		Values(reg.StudentID, reg.ModuleID, reg.Status, reg.StartDate).
		Suffix("RETURNING registration_id").
		ToSql()
	if err != nil {
		return course.Registration{}, errors.Wrap(err, "building query")
	}
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &reg.RegistrationID, q, args...); err != nil {
		if _, ok := pqErr(err, codeUniqueViolation); ok {
			return course.Registration{}, course.ErrAlreadyRegistered
		}
		if e, ok := pqErr(err, codeFKViolation); ok {
			if strings.Contains(e.Constraint, "student") {
				return course.Registration{}, course.ErrStudentNotFound
			}
			return course.Registration{}, course.ErrModuleNotFound
		}
		return course.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo courseRepository) GetRegistration(ctx context.Context, id int, exec ...core.DBExecutor) (course.Registration, error) {
	q, args, err := psql.Select(regColumns...).From("module_registrations").Where(sq.Eq{"registration_id": id}).ToSql()
	if err != nil {
		return course.Registration{}, errors.Wrap(err, "building query")
	}
	var reg course.Registration
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &reg, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Registration{}, course.ErrRegistrationNotFound
		}
		return course.Registration{}, errors.Wrap(err, "finding registration")
	}
	return reg, nil
}

func (repo courseRepository) QueryRegistrationRows(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]course.RegistrationRow, error) {
	q, args, err := psql.Select(
		"r.registration_id",
		"r.student_id",
		"s.first_name || ' ' || s.last_name AS student_name",
		"s.email AS student_email",
		"r.status",
		"r.start_date",
		"r.module_id",
		"m.course_id",
	).
		From("module_registrations r").
		Join("students s ON s.student_id = r.student_id").
		Join("modules m ON m.module_id = r.module_id").
		Where(sq.Eq{"r.module_id": moduleID}).
		OrderBy("r.registration_id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []course.RegistrationRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	return rows, nil
}

func (repo courseRepository) UpdateRegistrationStatus(ctx context.Context, id int, status string, exec ...core.DBExecutor) (course.Registration, error) {
	q, args, err := psql.Update("module_registrations").
		Set("status", status).
		Where(sq.Eq{"registration_id": id}).
		Suffix("RETURNING " + strings.Join(regColumns, ", ")).
		ToSql()
	if err != nil {
		return course.Registration{}, errors.Wrap(err, "building query")
	}
	var reg course.Registration
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &reg, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Registration{}, course.ErrRegistrationNotFound
		}
		return course.Registration{}, errors.Wrap(err, "updating registration")
	}
	return reg, nil
}
