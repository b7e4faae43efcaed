package pgrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/survey"
)

var surveyColumns = []string{"survey_id", "registration_id", "week_number", "submitted_at", "stress_level", "sleep_hours", "social_connection_score", "comments"}

type surveyRepository struct {
	repository
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(exec core.DBExecutor) *surveyRepository {
	return &surveyRepository{repository{exec: exec}}
}

func (repo surveyRepository) CreateSurvey(ctx context.Context, sv survey.Survey, exec ...core.DBExecutor) (survey.Survey, error) {
	q, args, err := psql.Insert("weekly_surveys").
		Columns("registration_id", "week_number", "stress_level", "sleep_hours", "social_connection_score", "comments").
		Values(sv.RegistrationID, sv.WeekNumber, sv.StressLevel, sv.SleepHours, sv.SocialConnectionScore, sv.Comments).
		Suffix("RETURNING survey_id, submitted_at").
		ToSql()
	if err != nil {
		return survey.Survey{}, errors.Wrap(err, "building query")
	}
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &sv, q, args...); err != nil {
		if _, ok := pqErr(err, codeFKViolation); ok {
			return survey.Survey{}, survey.ErrRegistrationNotFound
		}
		return survey.Survey{}, errors.Wrap(err, "inserting survey")
	}
	return sv, nil
}

func (repo surveyRepository) QuerySurveys(ctx context.Context, filter *survey.QueryFilter, exec ...core.DBExecutor) ([]survey.Survey, error) {
	cols := make([]string, len(surveyColumns))
	for i, col := range surveyColumns {
		cols[i] = "s." + col
	}
	qb := psql.Select(cols...).From("weekly_surveys AS s")

	if filter != nil {
		if filter.StudentID != "" || filter.ModuleID != "" {
			qb = qb.Join("module_registrations AS r ON r.registration_id = s.registration_id")
			if filter.StudentID != "" {
				qb = qb.Where(sq.Eq{"r.student_id": filter.StudentID})
			}
			if filter.ModuleID != "" {
				qb = qb.Where(sq.Eq{"r.module_id": filter.ModuleID})
			}
		}
		if filter.WeekNumber != 0 {
			qb = qb.Where(sq.Eq{"s.week_number": filter.WeekNumber})
		}
	}
	qb = qb.OrderBy("s.week_number", "s.survey_id")

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var surveys []survey.Survey
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &surveys, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying surveys")
	}
	return surveys, nil
}

func (repo surveyRepository) BulkCreateSurveys(ctx context.Context, svs []survey.Survey, exec ...core.DBExecutor) (int, error) {
	if len(svs) == 0 {
		return 0, nil
	}

	ids := make([]int, 0, len(svs))
	for _, sv := range svs {
		ids = append(ids, sv.RegistrationID)
	}
	q, args, err := psql.Select("registration_id").
		From("module_registrations").
		Where(sq.Eq{"registration_id": ids}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var existingIDs []int
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &existingIDs, q, args...); err != nil {
		return 0, errors.Wrap(err, "checking registrations")
	}
	existing := make(map[int]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	qb := psql.Insert("weekly_surveys").
		Columns("registration_id", "week_number", "stress_level", "sleep_hours", "social_connection_score", "comments")
	var created int
	for _, sv := range svs {
		if !existing[sv.RegistrationID] {
			continue
		}
		qb = qb.Values(sv.RegistrationID, sv.WeekNumber, sv.StressLevel, sv.SleepHours, sv.SocialConnectionScore, sv.Comments)
		created++
	}
	if created == 0 {
		return 0, nil
	}

	q, args, err = qb.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return 0, errors.Wrap(err, "inserting surveys")
	}
	return created, nil
}

func (repo surveyRepository) DeleteStudentSurveys(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error) {
	q, args, err := psql.Select("registration_id").
		From("module_registrations").
		Where(sq.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var regIDs []int
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &regIDs, q, args...); err != nil {
		return 0, errors.Wrap(err, "finding registrations")
	}
	if len(regIDs) == 0 {
		return 0, survey.ErrStudentHasNoRegistrations
	}

	q, args, err = psql.Delete("weekly_surveys").Where(sq.Eq{"registration_id": regIDs}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting surveys")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting surveys")
	}
	return int(cnt), nil
}
