package pgrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
)

var attendanceColumns = []string{"attendance_id", "registration_id", "week_number", "class_date", "is_present", "reason_absent"}

type attendanceRepository struct {
	repository
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{repository{exec: exec}}
}

func (repo attendanceRepository) trapWriteErr(err error, msg string) error {
	if _, ok := pqErr(err, codeUniqueViolation); ok {
		return attendance.ErrWeekAlreadyRecorded
	}
	if _, ok := pqErr(err, codeFKViolation); ok {
		return attendance.ErrRegistrationNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q, args, err := psql.Insert("weekly_attendance").
		Columns("registration_id", "week_number", "class_date", "is_present", "reason_absent").
		Values(att.RegistrationID, att.WeekNumber, att.ClassDate, att.IsPresent, att.ReasonAbsent).
		Suffix("RETURNING attendance_id").
		ToSql()
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "building query")
	}
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &att.AttendanceID, q, args...); err != nil {
		return attendance.Attendance{}, repo.trapWriteErr(err, "inserting attendance")
	}
	return att, nil
}

func (repo attendanceRepository) GetAttendance(ctx context.Context, id int, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q, args, err := psql.Select(attendanceColumns...).
		From("weekly_attendance").
		Where(sq.Eq{"attendance_id": id}).
		ToSql()
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "building query")
	}
	var att attendance.Attendance
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &att, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "finding attendance")
	}
	return att, nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, exec ...core.DBExecutor) ([]attendance.Record, error) {
	qb := psql.Select(
		"a.attendance_id", "a.registration_id", "a.week_number", "a.class_date", "a.is_present", "a.reason_absent",
		"s.student_id", "s.first_name || ' ' || s.last_name AS student_name",
	).
		From("weekly_attendance AS a").
		Join("module_registrations AS r ON r.registration_id = a.registration_id").
		Join("students AS s ON s.student_id = r.student_id")

	if filter != nil {
		if filter.StudentID != "" {
			qb = qb.Where(sq.Eq{"r.student_id": filter.StudentID})
		}
		if filter.ModuleID != "" {
			qb = qb.Where(sq.Eq{"r.module_id": filter.ModuleID})
		}
		if filter.WeekNumber != 0 {
			qb = qb.Where(sq.Eq{"a.week_number": filter.WeekNumber})
		}
	}
	qb = qb.OrderBy("a.week_number", "a.attendance_id")

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var records []attendance.Record
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &records, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	return records, nil
}

func (repo attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q, args, err := psql.Update("weekly_attendance").
		Set("class_date", att.ClassDate).
		Set("is_present", att.IsPresent).
		Set("reason_absent", att.ReasonAbsent).
		Where(sq.Eq{"attendance_id": att.AttendanceID}).
		Suffix("RETURNING attendance_id, registration_id, week_number, class_date, is_present, reason_absent").
		ToSql()
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "building query")
	}
	var updated attendance.Attendance
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &updated, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	return updated, nil
}

func (repo attendanceRepository) DeleteAttendance(ctx context.Context, id int, exec ...core.DBExecutor) error {
	q, args, err := psql.Delete("weekly_attendance").Where(sq.Eq{"attendance_id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	if cnt == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo attendanceRepository) UpsertAttendances(ctx context.Context, atts []attendance.Attendance, exec ...core.DBExecutor) error {
	if len(atts) == 0 {
		return nil
	}

	qb := psql.Insert("weekly_attendance").
		Columns("registration_id", "week_number", "class_date", "is_present", "reason_absent")
	for _, att := range atts {
		qb = qb.Values(att.RegistrationID, att.WeekNumber, att.ClassDate, att.IsPresent, att.ReasonAbsent)
	}
	qb = qb.Suffix(`ON CONFLICT (registration_id, week_number) DO UPDATE SET
		class_date = EXCLUDED.class_date,
		is_present = EXCLUDED.is_present,
		reason_absent = EXCLUDED.reason_absent`)

	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "upserting attendance")
	}
	return nil
}

func (repo attendanceRepository) ExistingRegistrationIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) (map[int]bool, error) {
	if len(ids) == 0 {
		return map[int]bool{}, nil
	}

	q, args, err := psql.Select("registration_id").
		From("module_registrations").
		Where(sq.Eq{"registration_id": ids}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var found []int
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &found, q, args...); err != nil {
		return nil, errors.Wrap(err, "checking registrations")
	}
	existing := make(map[int]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (repo attendanceRepository) GetStudentName(ctx context.Context, studentID string, exec ...core.DBExecutor) (string, error) {
	q, args, err := psql.Select("first_name || ' ' || last_name").
		From("students").
		Where(sq.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return "", errors.Wrap(err, "building query")
	}
	var name string
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &name, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return "", attendance.ErrStudentNotFound
		}
		return "", errors.Wrap(err, "finding student")
	}
	return name, nil
}

func (repo attendanceRepository) GetModuleName(ctx context.Context, moduleID string, exec ...core.DBExecutor) (string, error) {
	q, args, err := psql.Select("module_name").
		From("modules").
		Where(sq.Eq{"module_id": moduleID}).
		ToSql()
	if err != nil {
		return "", errors.Wrap(err, "building query")
	}
	var name string
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &name, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return "", attendance.ErrModuleNotFound
		}
		return "", errors.Wrap(err, "finding module")
	}
	return name, nil
}

func (repo attendanceRepository) QueryStudentRecords(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]attendance.StudentRecord, error) {
	q, args, err := psql.Select(
		"a.attendance_id", "a.week_number", "a.class_date", "a.is_present", "a.reason_absent",
		"m.module_id", "m.module_name",
	).
		From("weekly_attendance AS a").
		Join("module_registrations AS r ON r.registration_id = a.registration_id").
		Join("modules AS m ON m.module_id = r.module_id").
		Where(sq.Eq{"r.student_id": studentID}).
		OrderBy("a.week_number", "a.attendance_id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var records []attendance.StudentRecord
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &records, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying student attendance")
	}
	return records, nil
}

func (repo attendanceRepository) QueryModuleRates(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]attendance.StudentRate, error) {
	q, args, err := psql.Select(
		"s.student_id",
		"s.first_name || ' ' || s.last_name AS student_name",
		"r.status",
		"COUNT(a.attendance_id) AS total_classes",
		"COUNT(a.attendance_id) FILTER (WHERE a.is_present) AS classes_attended",
	).
		From("module_registrations AS r").
		Join("students AS s ON s.student_id = r.student_id").
		LeftJoin("weekly_attendance AS a ON a.registration_id = r.registration_id").
		Where(sq.Eq{"r.module_id": moduleID}).
		GroupBy("s.student_id", "s.first_name", "s.last_name", "r.status").
		OrderBy("s.student_id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rates []attendance.StudentRate
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rates, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying module attendance")
	}
	return rates, nil
}

func (repo attendanceRepository) QueryWeeklyTrends(ctx context.Context, start, end *time.Time, exec ...core.DBExecutor) ([]attendance.WeeklyTrend, error) {
	qb := psql.Select(
		"week_number",
		"COUNT(*) AS total_classes",
		"COUNT(*) FILTER (WHERE is_present) AS present_count",
	).
		From("weekly_attendance").
		GroupBy("week_number").
		OrderBy("week_number")

	if start != nil {
		qb = qb.Where(sq.GtOrEq{"class_date": *start})
	}
	if end != nil {
		qb = qb.Where(sq.LtOrEq{"class_date": *end})
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var trends []attendance.WeeklyTrend
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &trends, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying weekly trends")
	}
	return trends, nil
}
