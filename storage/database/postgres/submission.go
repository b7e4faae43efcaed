package pgrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
)

var submissionColumns = []string{"submission_id", "registration_id", "assignment_id", "submitted_at", "grade_achieved", "grader_feedback"}

type submissionRepository struct {
	repository
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(exec core.DBExecutor) *submissionRepository {
	return &submissionRepository{repository{exec: exec}}
}

func (repo submissionRepository) trapWriteErr(err error, msg string) error {
	if _, ok := pqErr(err, codeUniqueViolation); ok {
		return submission.ErrAlreadyExists
	}
	if e, ok := pqErr(err, codeFKViolation); ok {
		if strings.Contains(e.Constraint, "assignment") {
			return submission.ErrAssignmentNotFound
		}
		return submission.ErrRegistrationNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission, exec ...core.DBExecutor) (submission.Submission, error) {
	q, args, err := psql.Insert("submissions").
		Columns("registration_id", "assignment_id", "submitted_at", "grade_achieved", "grader_feedback").
		Values(sub.RegistrationID, sub.AssignmentID, sub.SubmittedAt, sub.GradeAchieved, sub.GraderFeedback).
		Suffix("RETURNING submission_id").
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building query")
	}
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &sub.SubmissionID, q, args...); err != nil {
		return submission.Submission{}, repo.trapWriteErr(err, "inserting submission")
	}
	return sub, nil
}

func (repo submissionRepository) GetSubmission(ctx context.Context, id int, exec ...core.DBExecutor) (submission.Submission, error) {
	q, args, err := psql.Select(submissionColumns...).
		From("submissions").
		Where(sq.Eq{"submission_id": id}).
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building query")
	}
	var sub submission.Submission
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &sub, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "finding submission")
	}
	return sub, nil
}

func (repo submissionRepository) QuerySubmissions(ctx context.Context, filter *submission.QueryFilter, exec ...core.DBExecutor) ([]submission.Submission, error) {
	cols := make([]string, len(submissionColumns))
	for i, col := range submissionColumns {
		cols[i] = "sub." + col
	}
	qb := psql.Select(cols...).From("submissions AS sub")

	if filter != nil {
		if filter.StudentID != "" || filter.ModuleID != "" {
			qb = qb.Join("module_registrations AS r ON r.registration_id = sub.registration_id")
			if filter.StudentID != "" {
				qb = qb.Where(sq.Eq{"r.student_id": filter.StudentID})
			}
			if filter.ModuleID != "" {
				qb = qb.Where(sq.Eq{"r.module_id": filter.ModuleID})
			}
		}
		if filter.AssignmentID != "" {
			qb = qb.Where(sq.Eq{"sub.assignment_id": filter.AssignmentID})
		}
	}
	qb = qb.OrderBy("sub.submission_id")

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var subs []submission.Submission
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &subs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}

func (repo submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission, exec ...core.DBExecutor) (submission.Submission, error) {
	q, args, err := psql.Update("submissions").
		Set("submitted_at", sub.SubmittedAt).
		Set("grade_achieved", sub.GradeAchieved).
		Set("grader_feedback", sub.GraderFeedback).
		Where(sq.Eq{"submission_id": sub.SubmissionID}).
		Suffix("RETURNING " + strings.Join(submissionColumns, ", ")).
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building query")
	}
	var updated submission.Submission
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &updated, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "updating submission")
	}
	return updated, nil
}

func (repo submissionRepository) DeleteSubmission(ctx context.Context, id int, exec ...core.DBExecutor) error {
	q, args, err := psql.Delete("submissions").Where(sq.Eq{"submission_id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	if cnt == 0 {
		return submission.ErrNotFound
	}
	return nil
}

func (repo submissionRepository) UpsertGrades(ctx context.Context, subs []submission.Submission, exec ...core.DBExecutor) error {
	if len(subs) == 0 {
		return nil
	}

	qb := psql.Insert("submissions").
		Columns("registration_id", "assignment_id", "submitted_at", "grade_achieved")
	for _, sub := range subs {
		qb = qb.Values(sub.RegistrationID, sub.AssignmentID, sub.SubmittedAt, sub.GradeAchieved)
	}
	// an existing submission keeps its hand-in time, only the grade moves
	qb = qb.Suffix(`ON CONFLICT (registration_id, assignment_id) DO UPDATE SET
		grade_achieved = EXCLUDED.grade_achieved`)

	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "upserting grades")
	}
	return nil
}

func (repo submissionRepository) GetAssignmentInfo(ctx context.Context, id string, exec ...core.DBExecutor) (submission.AssignmentInfo, error) {
	q, args, err := psql.Select("assignment_id", "module_id", "title", "due_date", "max_score").
		From("assignments").
		Where(sq.Eq{"assignment_id": id}).
		ToSql()
	if err != nil {
		return submission.AssignmentInfo{}, errors.Wrap(err, "building query")
	}
	var info submission.AssignmentInfo
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &info, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return submission.AssignmentInfo{}, submission.ErrAssignmentNotFound
		}
		return submission.AssignmentInfo{}, errors.Wrap(err, "finding assignment")
	}
	return info, nil
}

func (repo submissionRepository) QueryAssignmentInfos(ctx context.Context, ids []string, exec ...core.DBExecutor) (map[string]submission.AssignmentInfo, error) {
	if len(ids) == 0 {
		return map[string]submission.AssignmentInfo{}, nil
	}

	q, args, err := psql.Select("assignment_id", "module_id", "title", "due_date", "max_score").
		From("assignments").
		Where(sq.Eq{"assignment_id": ids}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var infos []submission.AssignmentInfo
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &infos, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	res := make(map[string]submission.AssignmentInfo, len(infos))
	for _, info := range infos {
		res[info.AssignmentID] = info
	}
	return res, nil
}

func (repo submissionRepository) QueryRegistrationModules(ctx context.Context, ids []int, exec ...core.DBExecutor) (map[int]string, error) {
	if len(ids) == 0 {
		return map[int]string{}, nil
	}

	q, args, err := psql.Select("registration_id", "module_id").
		From("module_registrations").
		Where(sq.Eq{"registration_id": ids}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []struct {
		RegistrationID int    `db:"registration_id"`
		ModuleID       string `db:"module_id"`
	}
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	res := make(map[int]string, len(rows))
	for _, row := range rows {
		res[row.RegistrationID] = row.ModuleID
	}
	return res, nil
}

func (repo submissionRepository) GetStudentName(ctx context.Context, studentID string, exec ...core.DBExecutor) (string, error) {
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
			return "", submission.ErrStudentNotFound
		}
		return "", errors.Wrap(err, "finding student")
	}
	return name, nil
}

func (repo submissionRepository) QueryStudentRows(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]submission.StudentSubmissionRow, error) {
	q, args, err := psql.Select(
		"sub.submission_id", "sub.assignment_id", "a.title AS assignment_title",
		"m.module_id", "m.module_name",
		"sub.submitted_at", "sub.grade_achieved", "a.max_score", "sub.grader_feedback", "a.due_date",
	).
		From("submissions AS sub").
		Join("module_registrations AS r ON r.registration_id = sub.registration_id").
		Join("assignments AS a ON a.assignment_id = sub.assignment_id").
		Join("modules AS m ON m.module_id = a.module_id").
		Where(sq.Eq{"r.student_id": studentID}).
		OrderBy("sub.submission_id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []submission.StudentSubmissionRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying student submissions")
	}
	return rows, nil
}

func (repo submissionRepository) QueryAssignmentRows(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]submission.AssignmentSubmissionRow, error) {
	q, args, err := psql.Select(
		"sub.submission_id",
		"s.student_id", "s.first_name || ' ' || s.last_name AS student_name",
		"sub.submitted_at", "sub.grade_achieved", "sub.grader_feedback",
		"COALESCE(sub.submitted_at > a.due_date, FALSE) AS is_late",
	).
		From("submissions AS sub").
		Join("module_registrations AS r ON r.registration_id = sub.registration_id").
		Join("students AS s ON s.student_id = r.student_id").
		Join("assignments AS a ON a.assignment_id = sub.assignment_id").
		Where(sq.Eq{"sub.assignment_id": assignmentID}).
		OrderBy("sub.submission_id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []submission.AssignmentSubmissionRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignment submissions")
	}
	return rows, nil
}

func (repo submissionRepository) GetGradingStats(ctx context.Context, exec ...core.DBExecutor) (submission.GradingStats, error) {
	q, args, err := psql.Select(
		"COUNT(*) AS total_submissions",
		"COUNT(grade_achieved) AS graded_submissions",
		"COALESCE(AVG(grade_achieved), 0) AS average_grade",
		"COALESCE(MIN(grade_achieved), 0) AS minimum_grade",
		"COALESCE(MAX(grade_achieved), 0) AS maximum_grade",
		"COUNT(*) FILTER (WHERE grade_achieved >= 90) AS range_90",
		"COUNT(*) FILTER (WHERE grade_achieved >= 80 AND grade_achieved < 90) AS range_80",
		"COUNT(*) FILTER (WHERE grade_achieved >= 70 AND grade_achieved < 80) AS range_70",
		"COUNT(*) FILTER (WHERE grade_achieved >= 60 AND grade_achieved < 70) AS range_60",
		"COUNT(*) FILTER (WHERE grade_achieved >= 50 AND grade_achieved < 60) AS range_50",
		"COUNT(*) FILTER (WHERE grade_achieved < 50) AS range_0",
	).
		From("submissions").
		ToSql()
	if err != nil {
		return submission.GradingStats{}, errors.Wrap(err, "building query")
	}
	var stats submission.GradingStats
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &stats, q, args...); err != nil {
		return submission.GradingStats{}, errors.Wrap(err, "querying grading stats")
	}
	return stats, nil
}
