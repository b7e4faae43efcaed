package course

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

// registration statuses
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
	StatusWithdrawn = "Withdrawn"
)

var Statuses = []string{StatusActive, StatusCompleted, StatusWithdrawn}

const (
	DefaultDurationWeeks = 12
	DefaultMaxScore      = 100
	DefaultTotalCredits  = 180
)

// Course is an academic course. A course contains modules and has students
// enrolled on it.
type Course struct {
	CourseID     string    `db:"course_id" json:"course_id"`
	CourseName   string    `db:"course_name" json:"course_name"`
	TotalCredits int       `db:"total_credits" json:"total_credits"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Module is a component of a course. Students register for modules;
// assignments belong to them.
type Module struct {
	ModuleID      string      `db:"module_id" json:"module_id"`
	CourseID      null.String `db:"course_id" json:"course_id"`
	ModuleName    string      `db:"module_name" json:"module_name"`
	DurationWeeks int         `db:"duration_weeks" json:"duration_weeks"`
}

// Assignment is a piece of assessed work on a module.
type Assignment struct {
	AssignmentID     string       `db:"assignment_id" json:"assignment_id"`
	ModuleID         string       `db:"module_id" json:"module_id"`
	Title            string       `db:"title" json:"title"`
	Description      null.String  `db:"description" json:"description"`
	DueDate          time.Time    `db:"due_date" json:"due_date"`
	MaxScore         int          `db:"max_score" json:"max_score"`
	WeightagePercent null.Float64 `db:"weightage_percent" json:"weightage_percent"`
}

// Registration links a student to a module. It is the anchor row for that
// student's surveys, attendance and submissions on the module.
type Registration struct {
	RegistrationID int       `db:"registration_id" json:"registration_id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	ModuleID       string    `db:"module_id" json:"module_id"`
	Status         string    `db:"status" json:"status"`
	StartDate      null.Time `db:"start_date" json:"start_date"`
}

// CourseDetails is the full course hierarchy: course, its modules and their
// assignments.
type CourseDetails struct {
	Course
	Modules []ModuleDetails `json:"modules"`
}

type ModuleDetails struct {
	Module
	Assignments []Assignment `json:"assignments"`
}

// RegistrationRow is a registration joined with the student it belongs to.
type RegistrationRow struct {
	RegistrationID int         `db:"registration_id" json:"registration_id"`
	StudentID      string      `db:"student_id" json:"student_id"`
	StudentName    string      `db:"student_name" json:"student_name"`
	StudentEmail   string      `db:"student_email" json:"student_email"`
	Status         string      `db:"status" json:"status"`
	StartDate      null.Time   `db:"start_date" json:"start_date"`
	ModuleID       string      `db:"module_id" json:"-"`
	CourseID       null.String `db:"course_id" json:"-"`
}

// ModuleRegistrations is a module's registration listing with its course
// context.
type ModuleRegistrations struct {
	ModuleID           string            `json:"module_id"`
	ModuleName         string            `json:"module_name"`
	CourseID           null.String       `json:"course_id"`
	CourseName         null.String       `json:"course_name"`
	DurationWeeks      int               `json:"duration_weeks"`
	Registrations      []RegistrationRow `json:"registrations"`
	TotalRegistrations int               `json:"total_registrations"`
}

// NewModule defines the information needed to create a Module.
type NewModule struct {
	ModuleID      string `json:"module_id" validate:"required,max=20"`
	CourseID      string `json:"course_id" validate:"required,max=20"`
	ModuleName    string `json:"module_name" validate:"required,max=100"`
	DurationWeeks int    `json:"duration_weeks" validate:"omitempty,min=1"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.ModuleID = core.CleanString(nm.ModuleID)
	nm.CourseID = core.CleanString(nm.CourseID)
	nm.ModuleName = core.CleanString(nm.ModuleName)
	if nm.DurationWeeks == 0 {
		nm.DurationWeeks = DefaultDurationWeeks
	}
	return validate.Struct(nm)
}

// UpdateModule defines what may be modified on an existing Module. Empty
// fields are left unchanged.
type UpdateModule struct {
	ModuleName    string `json:"module_name,omitempty" validate:"omitempty,max=100"`
	DurationWeeks int    `json:"duration_weeks,omitempty" validate:"omitempty,min=1"`
	CourseID      string `json:"course_id,omitempty" validate:"omitempty,max=20"`
}

func (um *UpdateModule) Validate(validate *validator.Validate) error {
	um.ModuleName = core.CleanString(um.ModuleName)
	um.CourseID = core.CleanString(um.CourseID)
	return validate.Struct(um)
}

// NewAssignment defines the information needed to create an Assignment.
type NewAssignment struct {
	AssignmentID     string       `json:"assignment_id" validate:"required,max=20"`
	ModuleID         string       `json:"module_id" validate:"required,max=20"`
	Title            string       `json:"title" validate:"required,max=100"`
	Description      null.String  `json:"description"`
	DueDate          time.Time    `json:"due_date" validate:"required"`
	MaxScore         int          `json:"max_score" validate:"omitempty,min=1"`
	WeightagePercent null.Float64 `json:"weightage_percent"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.AssignmentID = core.CleanString(na.AssignmentID)
	na.ModuleID = core.CleanString(na.ModuleID)
	na.Title = core.CleanString(na.Title)
	if na.MaxScore == 0 {
		na.MaxScore = DefaultMaxScore
	}
	return validate.Struct(na)
}

// UpdateAssignment defines what may be modified on an existing Assignment.
// Empty fields are left unchanged.
type UpdateAssignment struct {
	Title            string       `json:"title,omitempty" validate:"omitempty,max=100"`
	Description      null.String  `json:"description,omitempty"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	MaxScore         int          `json:"max_score,omitempty" validate:"omitempty,min=1"`
	WeightagePercent null.Float64 `json:"weightage_percent,omitempty"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	return validate.Struct(ua)
}

// NewRegistration registers a student to a module.
type NewRegistration struct {
	StudentID string `json:"student_id" validate:"required,max=20"`
	ModuleID  string `json:"module_id" validate:"required,max=20"`
	Status    string `json:"status" validate:"omitempty,oneof=Active Completed Withdrawn"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

func (nr *NewRegistration) Validate(validate *validator.Validate) error {
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.ModuleID = core.CleanString(nr.ModuleID)
	nr.Status = core.CleanString(nr.Status)
	if nr.Status == "" {
		nr.Status = StatusActive
	}
	return validate.Struct(nr)
}

// UpdateRegistrationStatus moves a registration between statuses.
type UpdateRegistrationStatus struct {
	Status string `json:"status" validate:"omitempty,oneof=Active Completed Withdrawn"`
}

func (ur *UpdateRegistrationStatus) Validate(validate *validator.Validate) error {
	ur.Status = core.CleanString(ur.Status)
	return validate.Struct(ur)
}
