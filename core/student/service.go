package student

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrStudentIDExists = errors.New("student ID already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrCourseNotFound  = errors.New("course not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of the names,
		// the email or the student ID.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		// DeleteStudent removes the student; registrations and their surveys,
		// attendance and submissions go with it via FK cascade.
		DeleteStudent(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
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

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	std := Student{
		StudentID:       ns.StudentID,
		FirstName:       ns.FirstName,
		LastName:        ns.LastName,
		Email:           ns.Email,
		ContactNo:       ns.ContactNo,
		EnrolledYear:    null.NewInt(ns.EnrolledYear, ns.EnrolledYear != 0),
		CurrentCourseID: null.NewString(ns.CurrentCourseID, ns.CurrentCourseID != ""),
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std := Student{
		StudentID: id,
		FirstName: us.FirstName,
		LastName:  us.LastName,
		Email:     us.Email,
	}
	if us.EnrolledYear != 0 {
		std.EnrolledYear = null.IntFrom(us.EnrolledYear)
	}
	if us.CurrentCourseID != "" {
		std.CurrentCourseID = null.StringFrom(us.CurrentCourseID)
	}
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}
