package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

type (
	// Attendance marks whether a student showed up for one week of a module
	// they are registered on.
	Attendance struct {
		AttendanceID   int         `db:"attendance_id" json:"attendance_id"`
		RegistrationID int         `db:"registration_id" json:"registration_id"`
		WeekNumber     int         `db:"week_number" json:"week_number"`
		ClassDate      time.Time   `db:"class_date" json:"-"`
		IsPresent      bool        `db:"is_present" json:"is_present"`
		ReasonAbsent   null.String `db:"reason_absent" json:"reason_absent"`
	}

	NewAttendance struct {
		RegistrationID int         `json:"registration_id" validate:"required"`
		WeekNumber     int         `json:"week_number" validate:"required,min=1,max=52"`
		ClassDate      string      `json:"class_date" validate:"required,datetime=2006-01-02"`
		IsPresent      *bool       `json:"is_present" validate:"required"`
		ReasonAbsent   null.String `json:"reason_absent"`
	}

	UpdateAttendance struct {
		IsPresent    *bool       `json:"is_present"`
		ReasonAbsent null.String `json:"reason_absent"`
		ClassDate    string      `json:"class_date" validate:"omitempty,datetime=2006-01-02"`
	}

	// Record is one attendance row joined with its student, for flat listings.
	Record struct {
		AttendanceID   int         `db:"attendance_id" json:"attendance_id"`
		RegistrationID int         `db:"registration_id" json:"registration_id"`
		WeekNumber     int         `db:"week_number" json:"week_number"`
		IsPresent      bool        `db:"is_present" json:"is_present"`
		ReasonAbsent   null.String `db:"reason_absent" json:"reason_absent"`
		StudentID      string      `db:"student_id" json:"student_id"`
		StudentName    string      `db:"student_name" json:"student_name"`

		ClassDateRaw time.Time `db:"class_date" json:"-"`
		ClassDate    string    `db:"-" json:"class_date"`
	}

	// StudentRecord is one attendance row joined with its module, for a
	// single student's history.
	StudentRecord struct {
		AttendanceID int         `db:"attendance_id" json:"attendance_id"`
		WeekNumber   int         `db:"week_number" json:"week_number"`
		IsPresent    bool        `db:"is_present" json:"is_present"`
		ReasonAbsent null.String `db:"reason_absent" json:"reason_absent"`
		ModuleID     string      `db:"module_id" json:"module_id"`
		ModuleName   string      `db:"module_name" json:"module_name"`

		ClassDateRaw time.Time `db:"class_date" json:"-"`
		ClassDate    string    `db:"-" json:"class_date"`
	}

	StudentAttendance struct {
		StudentID   string          `json:"student_id"`
		StudentName string          `json:"student_name"`
		Records     []StudentRecord `json:"attendance_records"`
		Summary     Summary         `json:"summary"`
	}

	Summary struct {
		TotalClasses    int     `json:"total_classes"`
		ClassesAttended int     `json:"classes_attended"`
		AttendanceRate  float64 `json:"attendance_rate"`
	}

	// StudentRate is one student's aggregated attendance within a module.
	StudentRate struct {
		StudentID          string  `db:"student_id" json:"student_id"`
		StudentName        string  `db:"student_name" json:"student_name"`
		RegistrationStatus string  `db:"status" json:"registration_status"`
		TotalClasses       int     `db:"total_classes" json:"total_classes"`
		ClassesAttended    int     `db:"classes_attended" json:"classes_attended"`
		AttendanceRate     float64 `db:"-" json:"attendance_rate"`
	}

	ModuleAttendance struct {
		ModuleID   string        `json:"module_id"`
		ModuleName string        `json:"module_name"`
		Students   []StudentRate `json:"student_attendance"`
		Summary    ModuleSummary `json:"summary"`
	}

	ModuleSummary struct {
		TotalStudents         int     `json:"total_students"`
		AverageAttendanceRate float64 `json:"average_attendance_rate"`
	}

	Report struct {
		Period       ReportPeriod  `json:"report_period"`
		Summary      ReportSummary `json:"summary"`
		WeeklyTrends []WeeklyTrend `json:"weekly_trends"`
	}

	ReportPeriod struct {
		StartDate null.String `json:"start_date"`
		EndDate   null.String `json:"end_date"`
	}

	ReportSummary struct {
		TotalRecords          int     `json:"total_records"`
		PresentCount          int     `json:"present_count"`
		AbsentCount           int     `json:"absent_count"`
		OverallAttendanceRate float64 `json:"overall_attendance_rate"`
	}

	// WeeklyTrend is one week's slice of the attendance report, aggregated in
	// the database.
	WeeklyTrend struct {
		WeekNumber     int     `db:"week_number" json:"week_number"`
		AttendanceRate float64 `db:"-" json:"attendance_rate"`
		TotalClasses   int     `db:"total_classes" json:"total_classes"`

		PresentCount int `db:"present_count" json:"-"`
	}

	QueryFilter struct {
		StudentID  string `query:"student_id"`
		ModuleID   string `query:"module_id"`
		WeekNumber int    `query:"week_number"`
	}
)

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	if na.ReasonAbsent.Valid {
		na.ReasonAbsent.String = core.CleanString(na.ReasonAbsent.String)
	}
	return validate.Struct(na)
}

func (ua *UpdateAttendance) Validate(validate *validator.Validate) error {
	if ua.ReasonAbsent.Valid {
		ua.ReasonAbsent.String = core.CleanString(ua.ReasonAbsent.String)
	}
	return validate.Struct(ua)
}

func (f *QueryFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.StudentID == "" && f.ModuleID == "" && f.WeekNumber == 0
}

func (f *QueryFilter) Clean() {
	if f == nil {
		return
	}
	f.StudentID = core.CleanString(f.StudentID)
	f.ModuleID = core.CleanString(f.ModuleID)
}
