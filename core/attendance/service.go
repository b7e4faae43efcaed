package attendance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

var (
	// errors
	ErrNotFound             = errors.New("attendance record not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrWeekAlreadyRecorded  = errors.New("attendance already recorded for this week")
	ErrStudentNotFound      = errors.New("student not found")
	ErrModuleNotFound       = errors.New("module not found")
)

type (
	Repository interface {
		CreateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		GetAttendance(ctx context.Context, id int, exec ...core.DBExecutor) (Attendance, error)
		QueryRecords(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Record, error)
		UpdateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		DeleteAttendance(ctx context.Context, id int, exec ...core.DBExecutor) error

		// UpsertAttendances writes the batch in one statement; a clash on
		// (registration, week) overwrites the previous record.
		UpsertAttendances(ctx context.Context, atts []Attendance, exec ...core.DBExecutor) error
		ExistingRegistrationIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) (map[int]bool, error)

		GetStudentName(ctx context.Context, studentID string, exec ...core.DBExecutor) (string, error)
		GetModuleName(ctx context.Context, moduleID string, exec ...core.DBExecutor) (string, error)
		QueryStudentRecords(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]StudentRecord, error)
		// QueryModuleRates aggregates attendance per registered student in one
		// grouped query.
		QueryModuleRates(ctx context.Context, moduleID string, exec ...core.DBExecutor) ([]StudentRate, error)
		QueryWeeklyTrends(ctx context.Context, start, end *time.Time, exec ...core.DBExecutor) ([]WeeklyTrend, error)
	}

	ServiceInterface interface {
		Record(ctx context.Context, na NewAttendance) (Attendance, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Record, error)
		Update(ctx context.Context, id int, ua UpdateAttendance) (Attendance, error)
		Delete(ctx context.Context, id int) error
		UploadCSV(ctx context.Context, r io.Reader) (UploadResult, error)
		StudentAttendance(ctx context.Context, studentID string) (StudentAttendance, error)
		ModuleAttendance(ctx context.Context, moduleID string) (ModuleAttendance, error)
		Report(ctx context.Context, startDate, endDate string) (Report, error)
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

func (svc *service) Record(ctx context.Context, na NewAttendance) (Attendance, error) {
	classDate, err := time.Parse("2006-01-02", na.ClassDate)
	if err != nil {
		return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "class_date", Error: "invalid date format, use YYYY-MM-DD"})
	}
	att := Attendance{
		RegistrationID: na.RegistrationID,
		WeekNumber:     na.WeekNumber,
		ClassDate:      classDate,
		IsPresent:      *na.IsPresent,
	}
	if !att.IsPresent {
		att.ReasonAbsent = na.ReasonAbsent
	}
	return svc.repo.CreateAttendance(ctx, att)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Record, error) {
	records, err := svc.repo.QueryRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].ClassDate = records[i].ClassDateRaw.Format("2006-01-02")
	}
	return records, nil
}

func (svc *service) Update(ctx context.Context, id int, ua UpdateAttendance) (Attendance, error) {
	att, err := svc.repo.GetAttendance(ctx, id)
	if err != nil {
		return Attendance{}, err
	}

	if ua.IsPresent != nil {
		att.IsPresent = *ua.IsPresent
		if att.IsPresent {
			// marking present clears the absence reason
			att.ReasonAbsent = null.String{}
		}
	}
	if ua.ReasonAbsent.Valid && !att.IsPresent {
		att.ReasonAbsent = ua.ReasonAbsent
	}
	if ua.ClassDate != "" {
		d, err := time.Parse("2006-01-02", ua.ClassDate)
		if err != nil {
			return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "class_date", Error: "invalid date format, use YYYY-MM-DD"})
		}
		att.ClassDate = d
	}
	return svc.repo.UpdateAttendance(ctx, att)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteAttendance(ctx, id)
}

func (svc *service) UploadCSV(ctx context.Context, r io.Reader) (UploadResult, error) {
	rows, invalid, err := parseCSV(r)
	if err != nil {
		return UploadResult{}, err
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.registrationID)
	}
	existing, err := svc.repo.ExistingRegistrationIDs(ctx, ids)
	if err != nil {
		return UploadResult{}, err
	}

	var (
		atts     []Attendance
		notFound []string
		created  int
	)
	seen := make(map[[2]int]int)
	now := time.Now()
	for _, row := range rows {
		if !existing[row.registrationID] {
			notFound = append(notFound, fmt.Sprintf("Registration ID %d", row.registrationID))
			continue
		}
		att := Attendance{
			RegistrationID: row.registrationID,
			WeekNumber:     row.week,
			ClassDate:      now,
			IsPresent:      row.isPresent,
			ReasonAbsent:   row.reasonAbsent,
		}
		created++
		// the last row wins when a file repeats a (registration, week) pair
		if i, ok := seen[[2]int{row.registrationID, row.week}]; ok {
			atts[i] = att
			continue
		}
		seen[[2]int{row.registrationID, row.week}] = len(atts)
		atts = append(atts, att)
	}

	if len(atts) > 0 {
		tx, err := svc.db.Beginx()
		if err != nil {
			return UploadResult{}, errors.Wrap(err, "beginning transaction")
		}
		if err = svc.repo.UpsertAttendances(ctx, atts, tx); err != nil {
			_ = tx.Rollback()
			return UploadResult{}, err
		}
		if err = tx.Commit(); err != nil {
			return UploadResult{}, errors.Wrap(err, "committing transaction")
		}
	}

	if notFound == nil {
		notFound = []string{}
	}
	if invalid == nil {
		invalid = []string{}
	}
	return UploadResult{
		Message:   "CSV upload completed",
		Processed: len(rows) + len(invalid),
		Created:   created,
		Skipped:   len(notFound) + len(invalid),
		Details: UploadDetails{
			RegistrationsNotFound: notFound,
			TotalNotFound:         len(notFound),
			InvalidRows:           invalid,
			TotalInvalid:          len(invalid),
		},
	}, nil
}

func (svc *service) StudentAttendance(ctx context.Context, studentID string) (StudentAttendance, error) {
	name, err := svc.repo.GetStudentName(ctx, studentID)
	if err != nil {
		return StudentAttendance{}, err
	}

	records, err := svc.repo.QueryStudentRecords(ctx, studentID)
	if err != nil {
		return StudentAttendance{}, err
	}
	if records == nil {
		records = []StudentRecord{}
	}

	attended := 0
	for i := range records {
		records[i].ClassDate = records[i].ClassDateRaw.Format("2006-01-02")
		if records[i].IsPresent {
			attended++
		}
	}
	summary := Summary{TotalClasses: len(records), ClassesAttended: attended}
	if summary.TotalClasses > 0 {
		summary.AttendanceRate = core.Round2(float64(attended) / float64(summary.TotalClasses) * 100)
	}

	return StudentAttendance{
		StudentID:   studentID,
		StudentName: name,
		Records:     records,
		Summary:     summary,
	}, nil
}

func (svc *service) ModuleAttendance(ctx context.Context, moduleID string) (ModuleAttendance, error) {
	name, err := svc.repo.GetModuleName(ctx, moduleID)
	if err != nil {
		return ModuleAttendance{}, err
	}

	students, err := svc.repo.QueryModuleRates(ctx, moduleID)
	if err != nil {
		return ModuleAttendance{}, err
	}
	if students == nil {
		students = []StudentRate{}
	}

	var rateSum float64
	for i := range students {
		if students[i].TotalClasses > 0 {
			students[i].AttendanceRate = core.Round2(float64(students[i].ClassesAttended) / float64(students[i].TotalClasses) * 100)
		}
		rateSum += students[i].AttendanceRate
	}
	summary := ModuleSummary{TotalStudents: len(students)}
	if summary.TotalStudents > 0 {
		summary.AverageAttendanceRate = core.Round2(rateSum / float64(summary.TotalStudents))
	}

	return ModuleAttendance{
		ModuleID:   moduleID,
		ModuleName: name,
		Students:   students,
		Summary:    summary,
	}, nil
}

func (svc *service) Report(ctx context.Context, startDate, endDate string) (Report, error) {
	var start, end *time.Time
	if startDate != "" {
		d, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return Report{}, core.NewValidationError(err, core.FieldError{Field: "start_date", Error: "invalid start_date format, use YYYY-MM-DD"})
		}
		start = &d
	}
	if endDate != "" {
		d, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return Report{}, core.NewValidationError(err, core.FieldError{Field: "end_date", Error: "invalid end_date format, use YYYY-MM-DD"})
		}
		end = &d
	}

	trends, err := svc.repo.QueryWeeklyTrends(ctx, start, end)
	if err != nil {
		return Report{}, err
	}
	if trends == nil {
		trends = []WeeklyTrend{}
	}

	var summary ReportSummary
	for i := range trends {
		if trends[i].TotalClasses > 0 {
			trends[i].AttendanceRate = core.Round2(float64(trends[i].PresentCount) / float64(trends[i].TotalClasses) * 100)
		}
		summary.TotalRecords += trends[i].TotalClasses
		summary.PresentCount += trends[i].PresentCount
	}
	summary.AbsentCount = summary.TotalRecords - summary.PresentCount
	if summary.TotalRecords > 0 {
		summary.OverallAttendanceRate = core.Round2(float64(summary.PresentCount) / float64(summary.TotalRecords) * 100)
	}

	return Report{
		Period: ReportPeriod{
			StartDate: null.NewString(startDate, startDate != ""),
			EndDate:   null.NewString(endDate, endDate != ""),
		},
		Summary:      summary,
		WeeklyTrends: trends,
	}, nil
}
