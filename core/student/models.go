package student

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

// Student is an enrolled student. Students enroll in a course and register
// for its modules; surveys, attendance and submissions all hang off those
// registrations.
type Student struct {
	StudentID       string      `db:"student_id" json:"student_id"`
	FirstName       string      `db:"first_name" json:"first_name"`
	LastName        string      `db:"last_name" json:"last_name"`
	Email           string      `db:"email" json:"email"`
	ContactNo       null.String `db:"contact_no" json:"contact_no"`
	EnrolledYear    null.Int    `db:"enrolled_year" json:"enrolled_year"`
	CurrentCourseID null.String `db:"current_course_id" json:"current_course_id"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NewStudent defines the information needed to enroll a new Student.
type NewStudent struct {
	StudentID       string      `json:"student_id" validate:"required,max=20"`
	FirstName       string      `json:"first_name" validate:"required,max=50"`
	LastName        string      `json:"last_name" validate:"required,max=50"`
	Email           string      `json:"email" validate:"required,email,max=100"`
	ContactNo       null.String `json:"contact_no"`
	EnrolledYear    int         `json:"enrolled_year" validate:"required"`
	CurrentCourseID string      `json:"current_course_id" validate:"required,max=20"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. Empty fields are left unchanged.
type UpdateStudent struct {
	FirstName       string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName        string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Email           string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	EnrolledYear    int    `json:"enrolled_year,omitempty"`
	CurrentCourseID string `json:"current_course_id,omitempty" validate:"omitempty,max=20"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.Email = core.CleanString(us.Email, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	CourseID     string `query:"course_id"`
	EnrolledYear int    `query:"enrolled_year"`
	Search       string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.CourseID == "" && qf.EnrolledYear == 0 && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.CourseID = core.CleanString(qf.CourseID)
	qf.Search = core.CleanString(qf.Search)
}
