package submission

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

type (
	// Submission is a student's hand-in for an assignment, graded or not.
	Submission struct {
		SubmissionID   int          `db:"submission_id" json:"submission_id"`
		RegistrationID int          `db:"registration_id" json:"registration_id"`
		AssignmentID   string       `db:"assignment_id" json:"assignment_id"`
		SubmittedAt    null.Time    `db:"submitted_at" json:"submitted_at"`
		GradeAchieved  null.Float64 `db:"grade_achieved" json:"grade_achieved"`
		GraderFeedback null.String  `db:"grader_feedback" json:"grader_feedback"`
	}

	NewSubmission struct {
		RegistrationID int          `json:"registration_id" validate:"required"`
		AssignmentID   string       `json:"assignment_id" validate:"required,max=20"`
		SubmittedAt    string       `json:"submitted_at"`
		GradeAchieved  null.Float64 `json:"grade_achieved"`
		GraderFeedback null.String  `json:"grader_feedback"`
	}

	// GradeSubmission carries a grading pass; a null grade leaves the current
	// one alone.
	GradeSubmission struct {
		GradeAchieved  null.Float64 `json:"grade_achieved"`
		GraderFeedback null.String  `json:"grader_feedback"`
	}

	// UpdateSubmission distinguishes "leave the grade alone" (absent) from
	// "clear it" (explicit null), hence the pointer.
	UpdateSubmission struct {
		SubmittedAt    string        `json:"submitted_at"`
		GradeAchieved  *null.Float64 `json:"grade_achieved"`
		GraderFeedback null.String   `json:"grader_feedback"`
	}

	// AssignmentInfo is the slice of an assignment the submission views need.
	AssignmentInfo struct {
		AssignmentID string    `db:"assignment_id"`
		ModuleID     string    `db:"module_id"`
		Title        string    `db:"title"`
		DueDate      time.Time `db:"due_date"`
		MaxScore     int       `db:"max_score"`
	}

	StudentSubmissionRow struct {
		SubmissionID    int          `db:"submission_id" json:"submission_id"`
		AssignmentID    string       `db:"assignment_id" json:"assignment_id"`
		AssignmentTitle string       `db:"assignment_title" json:"assignment_title"`
		ModuleID        string       `db:"module_id" json:"module_id"`
		ModuleName      string       `db:"module_name" json:"module_name"`
		SubmittedAt     null.Time    `db:"submitted_at" json:"submitted_at"`
		GradeAchieved   null.Float64 `db:"grade_achieved" json:"grade_achieved"`
		MaxScore        int          `db:"max_score" json:"max_score"`
		GraderFeedback  null.String  `db:"grader_feedback" json:"grader_feedback"`
		DueDate         time.Time    `db:"due_date" json:"due_date"`
	}

	StudentSubmissions struct {
		StudentID   string                 `json:"student_id"`
		StudentName string                 `json:"student_name"`
		Submissions []StudentSubmissionRow `json:"submissions"`
		Summary     SubmissionSummary      `json:"summary"`
	}

	SubmissionSummary struct {
		TotalSubmissions  int     `json:"total_submissions"`
		GradedSubmissions int     `json:"graded_submissions"`
		AverageGrade      float64 `json:"average_grade"`
	}

	AssignmentSubmissionRow struct {
		SubmissionID   int          `db:"submission_id" json:"submission_id"`
		StudentID      string       `db:"student_id" json:"student_id"`
		StudentName    string       `db:"student_name" json:"student_name"`
		SubmittedAt    null.Time    `db:"submitted_at" json:"submitted_at"`
		GradeAchieved  null.Float64 `db:"grade_achieved" json:"grade_achieved"`
		GraderFeedback null.String  `db:"grader_feedback" json:"grader_feedback"`
		IsLate         bool         `db:"is_late" json:"is_late"`
	}

	AssignmentSubmissions struct {
		AssignmentID    string                    `json:"assignment_id"`
		AssignmentTitle string                    `json:"assignment_title"`
		DueDate         time.Time                 `json:"due_date"`
		MaxScore        int                       `json:"max_score"`
		Submissions     []AssignmentSubmissionRow `json:"submissions"`
		Summary         AssignmentSummary         `json:"summary"`
	}

	AssignmentSummary struct {
		TotalSubmissions  int     `json:"total_submissions"`
		GradedSubmissions int     `json:"graded_submissions"`
		LateSubmissions   int     `json:"late_submissions"`
		AverageGrade      float64 `json:"average_grade"`
	}

	// GradingStats is the flat aggregate the grading summary is computed from,
	// produced by a single grouped query.
	GradingStats struct {
		TotalSubmissions  int     `db:"total_submissions"`
		GradedSubmissions int     `db:"graded_submissions"`
		AverageGrade      float64 `db:"average_grade"`
		MinimumGrade      float64 `db:"minimum_grade"`
		MaximumGrade      float64 `db:"maximum_grade"`
		Range90           int     `db:"range_90"`
		Range80           int     `db:"range_80"`
		Range70           int     `db:"range_70"`
		Range60           int     `db:"range_60"`
		Range50           int     `db:"range_50"`
		Range0            int     `db:"range_0"`
	}

	GradingSummary struct {
		Summary      GradingProgress   `json:"summary"`
		Stats        GradeStatistics   `json:"grade_statistics"`
		Distribution GradeDistribution `json:"grade_distribution"`
	}

	GradingProgress struct {
		TotalSubmissions      int     `json:"total_submissions"`
		GradedSubmissions     int     `json:"graded_submissions"`
		UngradedSubmissions   int     `json:"ungraded_submissions"`
		GradingCompletionRate float64 `json:"grading_completion_rate"`
	}

	GradeStatistics struct {
		AverageGrade float64 `json:"average_grade"`
		MinimumGrade float64 `json:"minimum_grade"`
		MaximumGrade float64 `json:"maximum_grade"`
	}

	GradeDistribution struct {
		Range90 int `json:"90-100"`
		Range80 int `json:"80-89"`
		Range70 int `json:"70-79"`
		Range60 int `json:"60-69"`
		Range50 int `json:"50-59"`
		Range0  int `json:"0-49"`
	}

	QueryFilter struct {
		StudentID    string `query:"student_id"`
		AssignmentID string `query:"assignment_id"`
		ModuleID     string `query:"module_id"`
	}
)

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	ns.SubmittedAt = core.CleanString(ns.SubmittedAt)
	return validate.Struct(ns)
}

func (f *QueryFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.StudentID == "" && f.AssignmentID == "" && f.ModuleID == ""
}

func (f *QueryFilter) Clean() {
	if f == nil {
		return
	}
	f.StudentID = core.CleanString(f.StudentID)
	f.AssignmentID = core.CleanString(f.AssignmentID)
	f.ModuleID = core.CleanString(f.ModuleID)
}
