package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

var (
	// errors
	ErrNotFound             = errors.New("course not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrModuleIDExists       = errors.New("module ID already exists")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAssignmentIDExists   = errors.New("assignment ID already exists")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("student already registered for this module")
	ErrStudentNotFound      = errors.New("student not found")
)

type (
	Repository interface {
		QueryCourses(ctx context.Context, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, id string, exec ...core.DBExecutor) (Course, error)
		// GetCourseDetails returns the course with its modules and their
		// assignments resolved in one round trip per level.
		GetCourseDetails(ctx context.Context, id string, exec ...core.DBExecutor) (CourseDetails, error)

		QueryModules(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]Module, error)
		GetModule(ctx context.Context, id string, exec ...core.DBExecutor) (Module, error)
		CreateModule(ctx context.Context, mod Module, exec ...core.DBExecutor) (Module, error)
		UpdateModule(ctx context.Context, mod Module, exec ...core.DBExecutor) (Module, error)
		// DeleteModule removes the module; registrations, assignments and their
		// dependents go with it (FK cascade).
		DeleteModule(ctx context.Context, id string, exec ...core.DBExecutor) error

		QueryAssignments(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]Assignment, error)
		GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment, dueDate *time.Time, exec ...core.DBExecutor) (Assignment, error)
		DeleteAssignment(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateRegistration(ctx context.Context, reg Registration, exec ...core.DBExecutor) (Registration, error)
		GetRegistration(ctx context.Context, id int, exec ...core.DBExecutor) (Registration, error)
		// QueryRegistrationRows returns a module's registrations joined with
		// student names and emails.
		QueryRegistrationRows(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]RegistrationRow, error)
		UpdateRegistrationStatus(ctx context.Context, id int, status string, exec ...core.DBExecutor) (Registration, error)
	}

	ServiceInterface interface {
		QueryCourses(ctx context.Context) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		GetCourseDetails(ctx context.Context, id string) (CourseDetails, error)

		QueryModules(ctx context.Context, courseID string) ([]Module, error)
		GetModule(ctx context.Context, id string) (Module, error)
		CreateModule(ctx context.Context, nm NewModule) (Module, error)
		UpdateModule(ctx context.Context, id string, um UpdateModule) (Module, error)
		DeleteModule(ctx context.Context, id string) error

		QueryModuleAssignments(ctx context.Context, moduleID string) ([]Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error)
		UpdateAssignment(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id string) error

		Register(ctx context.Context, nr NewRegistration) (Registration, error)
		GetModuleRegistrations(ctx context.Context, moduleID string) (ModuleRegistrations, error)
		UpdateRegistrationStatus(ctx context.Context, id int, ur UpdateRegistrationStatus) (Registration, error)
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

func (svc *service) QueryCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) GetCourseDetails(ctx context.Context, id string) (CourseDetails, error) {
	return svc.repo.GetCourseDetails(ctx, id)
}

func (svc *service) QueryModules(ctx context.Context, courseID string) ([]Module, error) {
	return svc.repo.QueryModules(ctx, courseID)
}

func (svc *service) GetModule(ctx context.Context, id string) (Module, error) {
	return svc.repo.GetModule(ctx, id)
}

func (svc *service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	mod := Module{
		ModuleID:      nm.ModuleID,
		CourseID:      null.StringFrom(nm.CourseID),
		ModuleName:    nm.ModuleName,
		DurationWeeks: nm.DurationWeeks,
	}
	return svc.repo.CreateModule(ctx, mod)
}

func (svc *service) UpdateModule(ctx context.Context, id string, um UpdateModule) (Module, error) {
	mod := Module{
		ModuleID:      id,
		ModuleName:    um.ModuleName,
		DurationWeeks: um.DurationWeeks,
	}
	if um.CourseID != "" {
		mod.CourseID = null.StringFrom(um.CourseID)
	}
	return svc.repo.UpdateModule(ctx, mod)
}

func (svc *service) DeleteModule(ctx context.Context, id string) error {
	return svc.repo.DeleteModule(ctx, id)
}

func (svc *service) QueryModuleAssignments(ctx context.Context, moduleID string) ([]Assignment, error) {
	if _, err := svc.repo.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignments(ctx, moduleID)
}

func (svc *service) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *service) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	asg := Assignment{
		AssignmentID:     na.AssignmentID,
		ModuleID:         na.ModuleID,
		Title:            na.Title,
		Description:      na.Description,
		DueDate:          na.DueDate,
		MaxScore:         na.MaxScore,
		WeightagePercent: na.WeightagePercent,
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *service) UpdateAssignment(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error) {
	asg := Assignment{
		AssignmentID:     id,
		Title:            ua.Title,
		Description:      ua.Description,
		MaxScore:         ua.MaxScore,
		WeightagePercent: ua.WeightagePercent,
	}
	return svc.repo.UpdateAssignment(ctx, asg, ua.DueDate)
}

func (svc *service) DeleteAssignment(ctx context.Context, id string) error {
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *service) Register(ctx context.Context, nr NewRegistration) (Registration, error) {
	reg := Registration{
		StudentID: nr.StudentID,
		ModuleID:  nr.ModuleID,
		Status:    nr.Status,
	}
	if nr.StartDate != "" {
		start, err := time.Parse("2006-01-02", nr.StartDate)
		if err != nil {
			return Registration{}, core.NewValidationError(err, core.FieldError{Field: "start_date", Error: "invalid date format"})
		}
		reg.StartDate = null.TimeFrom(start)
	}
	return svc.repo.CreateRegistration(ctx, reg)
}

func (svc *service) GetModuleRegistrations(ctx context.Context, moduleID string) (ModuleRegistrations, error) {
	mod, err := svc.repo.GetModule(ctx, moduleID)
	if err != nil {
		return ModuleRegistrations{}, err
	}

	rows, err := svc.repo.QueryRegistrationRows(ctx, moduleID)
	if err != nil {
		return ModuleRegistrations{}, err
	}
	if rows == nil {
		rows = []RegistrationRow{}
	}

	res := ModuleRegistrations{
		ModuleID:           mod.ModuleID,
		ModuleName:         mod.ModuleName,
		CourseID:           mod.CourseID,
		DurationWeeks:      mod.DurationWeeks,
		Registrations:      rows,
		TotalRegistrations: len(rows),
	}
	if mod.CourseID.Valid {
		crs, err := svc.repo.GetCourse(ctx, mod.CourseID.String)
		if err != nil && errors.Cause(err) != ErrNotFound {
			return ModuleRegistrations{}, err
		}
		if err == nil {
			res.CourseName = null.StringFrom(crs.CourseName)
		}
	}
	return res, nil
}

func (svc *service) UpdateRegistrationStatus(ctx context.Context, id int, ur UpdateRegistrationStatus) (Registration, error) {
	if ur.Status == "" {
		return svc.repo.GetRegistration(ctx, id)
	}
	return svc.repo.UpdateRegistrationStatus(ctx, id, ur.Status)
}
