package survey

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

var (
	// errors
	ErrRegistrationNotFound      = errors.New("registration not found")
	ErrStudentHasNoRegistrations = errors.New("student not found or has no registrations")
)

type (
	Repository interface {
		CreateSurvey(ctx context.Context, sv Survey, exec ...core.DBExecutor) (Survey, error)
		QuerySurveys(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Survey, error)
		// BulkCreateSurveys inserts the batch, silently skipping rows whose
		// registration does not exist, and reports how many rows were created.
		BulkCreateSurveys(ctx context.Context, svs []Survey, exec ...core.DBExecutor) (int, error)
		// DeleteStudentSurveys removes every survey attached to the student's
		// registrations and reports how many rows went away.
		DeleteStudentSurveys(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewSurvey) (Survey, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Survey, error)
		BulkCreate(ctx context.Context, req BulkRequest) (int, error)
		DeleteByStudent(ctx context.Context, studentID string) (int, error)
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil) // interface compliance check

func NewService(db core.DB, repo Repository) *service {
	return &service{db: db, repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewSurvey) (Survey, error) {
	return svc.repo.CreateSurvey(ctx, newSurvey(ns))
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Survey, error) {
	return svc.repo.QuerySurveys(ctx, filter)
}

func (svc *service) BulkCreate(ctx context.Context, req BulkRequest) (int, error) {
	svs := make([]Survey, len(req.Surveys))
	for i, ns := range req.Surveys {
		svs[i] = newSurvey(ns)
	}

	tx, err := svc.db.Beginx()
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	created, err := svc.repo.BulkCreateSurveys(ctx, svs, tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing transaction")
	}
	return created, nil
}

func (svc *service) DeleteByStudent(ctx context.Context, studentID string) (int, error) {
	return svc.repo.DeleteStudentSurveys(ctx, studentID)
}

func newSurvey(ns NewSurvey) Survey {
	return Survey{
		RegistrationID:        ns.RegistrationID,
		WeekNumber:            ns.WeekNumber,
		StressLevel:           null.IntFrom(ns.StressLevel),
		SleepHours:            null.Float64From(ns.SleepHours),
		SocialConnectionScore: null.IntFrom(ns.SocialConnectionScore),
		Comments:              ns.Comments,
	}
}
