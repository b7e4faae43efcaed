package report

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// At-risk screening

type (
	AtRiskStudent struct {
		StudentID   string   `json:"student_id"`
		Name        string   `json:"name"`
		Email       string   `json:"email"`
		RiskFactors []string `json:"risk_factors"`
		RiskScore   float64  `json:"risk_score"`
	}

	AtRiskReport struct {
		AtRiskStudents []AtRiskStudent `json:"at_risk_students"`
		TotalCount     int             `json:"total_count"`
	}

	// RiskStats carries one student's cross-module aggregates. Students
	// without registrations never appear.
	RiskStats struct {
		StudentID       string       `db:"student_id"`
		Name            string       `db:"name"`
		Email           string       `db:"email"`
		TotalClasses    int          `db:"total_classes"`
		ClassesAttended int          `db:"classes_attended"`
		AvgStress       null.Float64 `db:"avg_stress"`
		AvgSleep        null.Float64 `db:"avg_sleep"`
		AvgSocial       null.Float64 `db:"avg_social"`
		AvgGrade        null.Float64 `db:"avg_grade"`
	}
)

// Early warning (latest survey per student)

type (
	EarlyWarningStudent struct {
		StudentID    string       `db:"student_id" json:"student_id"`
		Name         string       `db:"name" json:"name"`
		Email        string       `db:"email" json:"email"`
		EnrolledYear null.Int     `db:"enrolled_year" json:"enrolled_year"`
		StressLevel  null.Int     `db:"stress_level" json:"stress_level"`
		SleepHours   null.Float64 `db:"sleep_hours" json:"sleep_hours"`
		WeekNumber   int          `db:"week_number" json:"week_number"`
		SubmittedAt  time.Time    `db:"submitted_at" json:"submitted_at"`
	}

	EarlyWarningGroup struct {
		Count    int                   `json:"count"`
		Students []EarlyWarningStudent `json:"students"`
	}

	EarlyWarning struct {
		HighStressStudents EarlyWarningGroup `json:"high_stress_students"`
		LowSleepStudents   EarlyWarningGroup `json:"low_sleep_students"`
	}
)

// Weekly wellbeing report

type (
	WeeklyMetric struct {
		CurrentWeekAverage  float64      `json:"current_week_average"`
		PreviousWeekAverage null.Float64 `json:"previous_week_average"`
		Change              null.Float64 `json:"change"`
		ChangeDescription   null.String  `json:"change_description"`
	}

	WeeklyReport struct {
		CurrentWeek  int          `json:"current_week"`
		PreviousWeek null.Int     `json:"previous_week"`
		StressLevel  WeeklyMetric `json:"stress_level"`
		SleepHours   WeeklyMetric `json:"sleep_hours"`
	}

	// WeekAverages is one survey week's cohort-wide averages.
	WeekAverages struct {
		WeekNumber int          `db:"week_number"`
		AvgStress  null.Float64 `db:"avg_stress"`
		AvgSleep   null.Float64 `db:"avg_sleep"`
	}
)

// Module academic report

type (
	ModuleAcademicReport struct {
		ModuleID          string  `json:"module_id"`
		ClassAverageGrade float64 `json:"class_average_grade"`
		SubmissionRate    float64 `json:"submission_rate"`
		AttendanceRate    float64 `json:"attendance_rate"`
		TotalStudents     int     `json:"total_students"`
		TotalAssignments  int     `json:"total_assignments"`
	}

	ModuleAcademicStats struct {
		TotalStudents     int          `db:"total_students"`
		TotalAssignments  int          `db:"total_assignments"`
		AverageGrade      null.Float64 `db:"average_grade"`
		TotalSubmissions  int          `db:"total_submissions"`
		AttendanceTotal   int          `db:"attendance_total"`
		AttendancePresent int          `db:"attendance_present"`
	}
)

// Student academic report

type (
	StudentAcademicReport struct {
		StudentID       string          `json:"student_id"`
		Name            string          `json:"name"`
		Grades          []GradeRow      `json:"grades"`
		Attendance      []AttendanceRow `json:"attendance"`
		ModulesEnrolled int             `json:"modules_enrolled"`
	}

	GradeRow struct {
		AssignmentID  string       `db:"assignment_id" json:"assignment_id"`
		GradeAchieved null.Float64 `db:"grade_achieved" json:"grade_achieved"`
		SubmittedAt   null.Time    `db:"submitted_at" json:"submitted_at"`
		Feedback      null.String  `db:"feedback" json:"feedback"`
	}

	AttendanceRow struct {
		WeekNumber   int         `db:"week_number" json:"week_number"`
		IsPresent    bool        `db:"is_present" json:"is_present"`
		ReasonAbsent null.String `db:"reason_absent" json:"reason_absent"`

		ClassDateRaw time.Time `db:"class_date" json:"-"`
		ClassDate    string    `db:"-" json:"class_date"`
	}
)

// Per-student performance and wellbeing views

type (
	AcademicPerformance struct {
		StudentID        string  `json:"student_id"`
		Name             string  `json:"name"`
		AverageGrade     float64 `json:"average_grade"`
		TotalSubmissions int     `json:"total_submissions"`
		AttendanceRate   float64 `json:"attendance_rate"`
		ModulesEnrolled  int     `json:"modules_enrolled"`
	}

	WellbeingTrends struct {
		StudentID    string            `json:"student_id"`
		Name         string            `json:"name"`
		Averages     WellbeingAverages `json:"averages"`
		WeeklyTrends []WellbeingWeek   `json:"weekly_trends"`
		TotalSurveys int               `json:"total_surveys"`
	}

	WellbeingAverages struct {
		StressLevel           float64 `json:"stress_level"`
		SleepHours            float64 `json:"sleep_hours"`
		SocialConnectionScore float64 `json:"social_connection_score"`
	}

	// WellbeingWeek is one survey response; weeks with several
	// registrations repeat.
	WellbeingWeek struct {
		Week                  int          `db:"week_number" json:"week"`
		StressLevel           null.Int     `db:"stress_level" json:"stress_level"`
		SleepHours            null.Float64 `db:"sleep_hours" json:"sleep_hours"`
		SocialConnectionScore null.Int     `db:"social_connection_score" json:"social_connection_score"`
	}

	FullProfile struct {
		StudentInfo ProfileInfo      `json:"student_info"`
		Academic    ProfileAcademic  `json:"academic_performance"`
		Wellbeing   ProfileWellbeing `json:"wellbeing_summary"`
	}

	ProfileInfo struct {
		StudentID    string      `json:"student_id"`
		Name         string      `json:"name"`
		Email        string      `json:"email"`
		EnrolledYear null.Int    `json:"enrolled_year"`
		CourseID     null.String `json:"course_id"`
	}

	ProfileAcademic struct {
		AverageGrade    float64 `json:"average_grade"`
		ModulesEnrolled int     `json:"modules_enrolled"`
	}

	ProfileWellbeing struct {
		AverageStress float64 `json:"average_stress"`
		AverageSleep  float64 `json:"average_sleep"`
	}
)

// StudentHeader is the identity row shared by the per-student reports.
type StudentHeader struct {
	StudentID       string      `db:"student_id"`
	Name            string      `db:"name"`
	Email           string      `db:"email"`
	EnrolledYear    null.Int    `db:"enrolled_year"`
	CourseID        null.String `db:"course_id"`
	CourseName      null.String `db:"course_name"`
	ModulesEnrolled int         `db:"modules_enrolled"`
}

// Student analytics

type (
	StudentAnalytics struct {
		StudentID   string            `json:"student_id"`
		StudentName string            `json:"student_name"`
		CourseID    null.String       `json:"course_id"`
		CourseName  null.String       `json:"course_name"`
		Message     string            `json:"message,omitempty"`
		Filters     *AnalyticsFilters `json:"filters_applied,omitempty"`
		Analytics   Analytics         `json:"analytics"`
	}

	AnalyticsFilters struct {
		ModuleID  null.String `json:"module_id"`
		WeekStart null.Int    `json:"week_start"`
		WeekEnd   null.Int    `json:"week_end"`
	}

	// Analytics marshals as an empty object when the student has no
	// registrations.
	Analytics struct {
		Attendance      *AttendanceAnalytics `json:"attendance,omitempty"`
		Academic        *AcademicAnalytics   `json:"academic_performance,omitempty"`
		Timing          *TimingAnalytics     `json:"submission_timing,omitempty"`
		Wellbeing       *WellbeingAnalytics  `json:"wellbeing,omitempty"`
		ModuleBreakdown []ModuleBreakdown    `json:"module_breakdown,omitempty"`
	}

	AttendanceAnalytics struct {
		OverallRate     float64          `json:"overall_rate"`
		TotalClasses    int              `json:"total_classes"`
		ClassesAttended int              `json:"classes_attended"`
		WeeklyTrends    []AttendanceWeek `json:"weekly_trends"`
	}

	AttendanceWeek struct {
		Week            int     `db:"week_number" json:"week"`
		AttendanceRate  float64 `db:"-" json:"attendance_rate"`
		ClassesAttended int     `db:"classes_attended" json:"classes_attended"`
		TotalClasses    int     `db:"total_classes" json:"total_classes"`
	}

	AcademicAnalytics struct {
		AverageGrade          float64 `json:"average_grade"`
		MinimumGrade          float64 `json:"minimum_grade"`
		MaximumGrade          float64 `json:"maximum_grade"`
		TotalSubmissions      int     `json:"total_submissions"`
		GradedSubmissions     int     `json:"graded_submissions"`
		GradingCompletionRate float64 `json:"grading_completion_rate"`
	}

	TimingAnalytics struct {
		AverageDaysEarly  float64 `json:"average_days_early"`
		AverageDaysLate   float64 `json:"average_days_late"`
		OnTimeSubmissions int     `json:"on_time_submissions"`
		EarlySubmissions  int     `json:"early_submissions"`
		LateSubmissions   int     `json:"late_submissions"`
		PunctualityRate   float64 `json:"punctuality_rate"`
	}

	WellbeingAnalytics struct {
		AverageStressLevel      float64              `json:"average_stress_level"`
		AverageSleepHours       float64              `json:"average_sleep_hours"`
		AverageSocialConnection float64              `json:"average_social_connection"`
		TotalSurveys            int                  `json:"total_surveys"`
		WeeklyTrends            []WellbeingTrendWeek `json:"weekly_trends"`
	}

	WellbeingTrendWeek struct {
		Week      int          `db:"week_number" json:"week"`
		AvgStress null.Float64 `db:"avg_stress" json:"avg_stress"`
		AvgSleep  null.Float64 `db:"avg_sleep" json:"avg_sleep"`
		AvgSocial null.Float64 `db:"avg_social" json:"avg_social"`
	}

	ModuleBreakdown struct {
		ModuleID           string  `db:"module_id" json:"module_id"`
		ModuleName         string  `db:"module_name" json:"module_name"`
		RegistrationStatus string  `db:"status" json:"registration_status"`
		AttendanceRate     float64 `db:"-" json:"attendance_rate"`
		TotalClasses       int     `db:"total_classes" json:"total_classes"`
		ClassesAttended    int     `db:"classes_attended" json:"classes_attended"`
		AverageGrade       float64 `db:"-" json:"average_grade"`
		TotalSubmissions   int     `db:"total_submissions" json:"total_submissions"`
		GradedSubmissions  int     `db:"graded_submissions" json:"graded_submissions"`

		AvgGradeRaw null.Float64 `db:"average_grade" json:"-"`
	}

	// GradeStats aggregates graded submissions for one student, optionally
	// narrowed to one module.
	GradeStats struct {
		TotalSubmissions  int          `db:"total_submissions"`
		GradedSubmissions int          `db:"graded_submissions"`
		AverageGrade      null.Float64 `db:"average_grade"`
		MinimumGrade      null.Float64 `db:"minimum_grade"`
		MaximumGrade      null.Float64 `db:"maximum_grade"`
	}

	// TimingStats covers submissions that have both a submission time and
	// an assignment due date; day counts are calendar-date differences.
	TimingStats struct {
		EarlySubmissions  int `db:"early_submissions"`
		LateSubmissions   int `db:"late_submissions"`
		OnTimeSubmissions int `db:"on_time_submissions"`
		TotalDaysEarly    int `db:"total_days_early"`
		TotalDaysLate     int `db:"total_days_late"`
	}

	WellbeingStats struct {
		AverageStress null.Float64 `db:"average_stress"`
		AverageSleep  null.Float64 `db:"average_sleep"`
		AverageSocial null.Float64 `db:"average_social"`
		TotalSurveys  int          `db:"total_surveys"`
	}

	StudentAcademicStats struct {
		AverageGrade      null.Float64 `db:"average_grade"`
		TotalSubmissions  int          `db:"total_submissions"`
		AttendanceTotal   int          `db:"attendance_total"`
		AttendancePresent int          `db:"attendance_present"`
	}

	ProfileStats struct {
		AverageGrade  null.Float64 `db:"average_grade"`
		AverageStress null.Float64 `db:"average_stress"`
		AverageSleep  null.Float64 `db:"average_sleep"`
	}
)

// Course comparison

type (
	// CourseComparison keeps the conditional keys of the two response
	// variants apart: Students carries the metric rows, Comparison is the
	// empty list returned when the course has no students.
	CourseComparison struct {
		CourseID         string             `json:"course_id"`
		CourseName       string             `json:"course_name"`
		ComparisonMetric string             `json:"comparison_metric,omitempty"`
		Message          string             `json:"message,omitempty"`
		Filters          *ComparisonFilters `json:"filters_applied,omitempty"`
		TotalStudents    *int               `json:"total_students,omitempty"`
		Students         *[]ComparisonRow   `json:"students,omitempty"`
		Comparison       *[]ComparisonRow   `json:"comparison,omitempty"`
	}

	ComparisonFilters struct {
		WeekStart null.Int `json:"week_start"`
		WeekEnd   null.Int `json:"week_end"`
	}

	// ComparisonRow carries only the fields the chosen metric selects.
	ComparisonRow struct {
		StudentID   string `json:"student_id"`
		StudentName string `json:"student_name"`
		Email       string `json:"email"`

		AttendanceRate  *float64 `json:"attendance_rate,omitempty"`
		TotalClasses    *int     `json:"total_classes,omitempty"`
		ClassesAttended *int     `json:"classes_attended,omitempty"`

		AverageGrade      *float64 `json:"average_grade,omitempty"`
		TotalSubmissions  *int     `json:"total_submissions,omitempty"`
		GradedSubmissions *int     `json:"graded_submissions,omitempty"`

		AvgStressLevel      *float64 `json:"avg_stress_level,omitempty"`
		AvgSleepHours       *float64 `json:"avg_sleep_hours,omitempty"`
		AvgSocialConnection *float64 `json:"avg_social_connection,omitempty"`
		TotalSurveys        *int     `json:"total_surveys,omitempty"`
	}

	ComparisonStudent struct {
		StudentID        string `db:"student_id"`
		StudentName      string `db:"student_name"`
		Email            string `db:"email"`
		HasRegistrations bool   `db:"has_registrations"`
	}

	StudentAttendanceAgg struct {
		StudentID       string `db:"student_id"`
		TotalClasses    int    `db:"total_classes"`
		ClassesAttended int    `db:"classes_attended"`
	}

	StudentGradeAgg struct {
		StudentID         string       `db:"student_id"`
		TotalSubmissions  int          `db:"total_submissions"`
		GradedSubmissions int          `db:"graded_submissions"`
		AverageGrade      null.Float64 `db:"average_grade"`
	}

	StudentWellbeingAgg struct {
		StudentID    string       `db:"student_id"`
		TotalSurveys int          `db:"total_surveys"`
		AvgStress    null.Float64 `db:"avg_stress"`
		AvgSleep     null.Float64 `db:"avg_sleep"`
		AvgSocial    null.Float64 `db:"avg_social"`
	}
)
