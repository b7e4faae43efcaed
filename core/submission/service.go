package submission

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
	ErrNotFound             = errors.New("submission not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAlreadyExists        = errors.New("submission already exists for this assignment")
	ErrStudentNotFound      = errors.New("student not found")
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		GetSubmission(ctx context.Context, id int, exec ...core.DBExecutor) (Submission, error)
		QuerySubmissions(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		DeleteSubmission(ctx context.Context, id int, exec ...core.DBExecutor) error

		// UpsertGrades writes the batch in one statement; a clash on
		// (registration, assignment) only overwrites the grade.
		UpsertGrades(ctx context.Context, subs []Submission, exec ...core.DBExecutor) error
		GetAssignmentInfo(ctx context.Context, id string, exec ...core.DBExecutor) (AssignmentInfo, error)
		QueryAssignmentInfos(ctx context.Context, ids []string, exec ...core.DBExecutor) (map[string]AssignmentInfo, error)
		QueryRegistrationModules(ctx context.Context, ids []int, exec ...core.DBExecutor) (map[int]string, error)

		GetStudentName(ctx context.Context, studentID string, exec ...core.DBExecutor) (string, error)
		QueryStudentRows(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]StudentSubmissionRow, error)
		QueryAssignmentRows(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]AssignmentSubmissionRow, error)
		// GetGradingStats aggregates every submission in one grouped query.
		GetGradingStats(ctx context.Context, exec ...core.DBExecutor) (GradingStats, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewSubmission) (Submission, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Submission, error)
		Grade(ctx context.Context, id int, gs GradeSubmission) (Submission, error)
		Update(ctx context.Context, id int, us UpdateSubmission) (Submission, error)
		Delete(ctx context.Context, id int) error
		StudentSubmissions(ctx context.Context, studentID string) (StudentSubmissions, error)
		AssignmentSubmissions(ctx context.Context, assignmentID string) (AssignmentSubmissions, error)
		GradingSummary(ctx context.Context) (GradingSummary, error)
		UploadGradesCSV(ctx context.Context, r io.Reader) (UploadResult, error)
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

func (svc *service) Create(ctx context.Context, ns NewSubmission) (Submission, error) {
	submittedAt := time.Now().UTC()
	if ns.SubmittedAt != "" {
		t, err := parseISOTime(ns.SubmittedAt)
		if err != nil {
			return Submission{}, core.NewValidationError(err, core.FieldError{Field: "submitted_at", Error: "invalid submitted_at format, use ISO format"})
		}
		submittedAt = t
	}

	sub := Submission{
		RegistrationID: ns.RegistrationID,
		AssignmentID:   ns.AssignmentID,
		SubmittedAt:    null.TimeFrom(submittedAt),
		GradeAchieved:  ns.GradeAchieved,
		GraderFeedback: ns.GraderFeedback,
	}
	if sub.GradeAchieved.Valid {
		if err := svc.checkGrade(ctx, sub.AssignmentID, sub.GradeAchieved.Float64); err != nil {
			return Submission{}, err
		}
	}
	return svc.repo.CreateSubmission(ctx, sub)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, filter)
}

func (svc *service) Grade(ctx context.Context, id int, gs GradeSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}

	if gs.GradeAchieved.Valid {
		if err = svc.checkGrade(ctx, sub.AssignmentID, gs.GradeAchieved.Float64); err != nil {
			return Submission{}, err
		}
		sub.GradeAchieved = gs.GradeAchieved
	}
	if gs.GraderFeedback.Valid {
		sub.GraderFeedback = gs.GraderFeedback
	}
	return svc.repo.UpdateSubmission(ctx, sub)
}

func (svc *service) Update(ctx context.Context, id int, us UpdateSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}

	if us.SubmittedAt != "" {
		t, err := parseISOTime(us.SubmittedAt)
		if err != nil {
			return Submission{}, core.NewValidationError(err, core.FieldError{Field: "submitted_at", Error: "invalid submitted_at format, use ISO format"})
		}
		sub.SubmittedAt = null.TimeFrom(t)
	}
	if us.GradeAchieved != nil {
		if us.GradeAchieved.Valid {
			if err = svc.checkGrade(ctx, sub.AssignmentID, us.GradeAchieved.Float64); err != nil {
				return Submission{}, err
			}
		}
		sub.GradeAchieved = *us.GradeAchieved
	}
	if us.GraderFeedback.Valid {
		sub.GraderFeedback = us.GraderFeedback
	}
	return svc.repo.UpdateSubmission(ctx, sub)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSubmission(ctx, id)
}

func (svc *service) StudentSubmissions(ctx context.Context, studentID string) (StudentSubmissions, error) {
	name, err := svc.repo.GetStudentName(ctx, studentID)
	if err != nil {
		return StudentSubmissions{}, err
	}

	rows, err := svc.repo.QueryStudentRows(ctx, studentID)
	if err != nil {
		return StudentSubmissions{}, err
	}
	if rows == nil {
		rows = []StudentSubmissionRow{}
	}

	summary := SubmissionSummary{TotalSubmissions: len(rows)}
	var gradeSum float64
	for _, row := range rows {
		if row.GradeAchieved.Valid {
			summary.GradedSubmissions++
			gradeSum += row.GradeAchieved.Float64
		}
	}
	if summary.GradedSubmissions > 0 {
		summary.AverageGrade = core.Round2(gradeSum / float64(summary.GradedSubmissions))
	}

	return StudentSubmissions{
		StudentID:   studentID,
		StudentName: name,
		Submissions: rows,
		Summary:     summary,
	}, nil
}

func (svc *service) AssignmentSubmissions(ctx context.Context, assignmentID string) (AssignmentSubmissions, error) {
	asg, err := svc.repo.GetAssignmentInfo(ctx, assignmentID)
	if err != nil {
		return AssignmentSubmissions{}, err
	}

	rows, err := svc.repo.QueryAssignmentRows(ctx, assignmentID)
	if err != nil {
		return AssignmentSubmissions{}, err
	}
	if rows == nil {
		rows = []AssignmentSubmissionRow{}
	}

	summary := AssignmentSummary{TotalSubmissions: len(rows)}
	var gradeSum float64
	for _, row := range rows {
		if row.GradeAchieved.Valid {
			summary.GradedSubmissions++
			gradeSum += row.GradeAchieved.Float64
		}
		if row.IsLate {
			summary.LateSubmissions++
		}
	}
	if summary.GradedSubmissions > 0 {
		summary.AverageGrade = core.Round2(gradeSum / float64(summary.GradedSubmissions))
	}

	return AssignmentSubmissions{
		AssignmentID:    asg.AssignmentID,
		AssignmentTitle: asg.Title,
		DueDate:         asg.DueDate,
		MaxScore:        asg.MaxScore,
		Submissions:     rows,
		Summary:         summary,
	}, nil
}

func (svc *service) GradingSummary(ctx context.Context) (GradingSummary, error) {
	stats, err := svc.repo.GetGradingStats(ctx)
	if err != nil {
		return GradingSummary{}, err
	}

	progress := GradingProgress{
		TotalSubmissions:    stats.TotalSubmissions,
		GradedSubmissions:   stats.GradedSubmissions,
		UngradedSubmissions: stats.TotalSubmissions - stats.GradedSubmissions,
	}
	if stats.TotalSubmissions > 0 {
		progress.GradingCompletionRate = core.Round2(float64(stats.GradedSubmissions) / float64(stats.TotalSubmissions) * 100)
	}

	return GradingSummary{
		Summary: progress,
		Stats: GradeStatistics{
			AverageGrade: core.Round2(stats.AverageGrade),
			MinimumGrade: core.Round2(stats.MinimumGrade),
			MaximumGrade: core.Round2(stats.MaximumGrade),
		},
		Distribution: GradeDistribution{
			Range90: stats.Range90,
			Range80: stats.Range80,
			Range70: stats.Range70,
			Range60: stats.Range60,
			Range50: stats.Range50,
			Range0:  stats.Range0,
		},
	}, nil
}

func (svc *service) UploadGradesCSV(ctx context.Context, r io.Reader) (UploadResult, error) {
	rows, invalid, err := parseGradesCSV(r)
	if err != nil {
		return UploadResult{}, err
	}
	processed := len(rows) + len(invalid)

	asgIDs := make([]string, 0, len(rows))
	regIDs := make([]int, 0, len(rows))
	for _, row := range rows {
		asgIDs = append(asgIDs, row.assignmentID)
		regIDs = append(regIDs, row.registrationID)
	}
	assignments, err := svc.repo.QueryAssignmentInfos(ctx, asgIDs)
	if err != nil {
		return UploadResult{}, err
	}
	regModules, err := svc.repo.QueryRegistrationModules(ctx, regIDs)
	if err != nil {
		return UploadResult{}, err
	}

	var (
		subs     []Submission
		notFound []string
		updated  int
	)
	seen := make(map[string]int)
	now := time.Now().UTC()
	for _, row := range rows {
		asg, ok := assignments[row.assignmentID]
		if !ok {
			invalid = append(invalid, fmt.Sprintf("Row %d: assignment %s not found", row.num, row.assignmentID))
			continue
		}
		if row.grade > float64(asg.MaxScore) {
			invalid = append(invalid, fmt.Sprintf("Row %d: grade %v exceeds max score %d", row.num, row.grade, asg.MaxScore))
			continue
		}
		moduleID, ok := regModules[row.registrationID]
		if !ok {
			notFound = append(notFound, fmt.Sprintf("Registration ID %d", row.registrationID))
			continue
		}
		if moduleID != asg.ModuleID {
			invalid = append(invalid, fmt.Sprintf("Row %d: registration %d is not enrolled in module %s", row.num, row.registrationID, asg.ModuleID))
			continue
		}

		sub := Submission{
			RegistrationID: row.registrationID,
			AssignmentID:   row.assignmentID,
			SubmittedAt:    null.TimeFrom(now),
			GradeAchieved:  null.Float64From(row.grade),
		}
		updated++
		// the last row wins when a file repeats a (registration, assignment) pair
		key := fmt.Sprintf("%d:%s", row.registrationID, row.assignmentID)
		if i, ok := seen[key]; ok {
			subs[i] = sub
			continue
		}
		seen[key] = len(subs)
		subs = append(subs, sub)
	}

	if len(subs) > 0 {
		tx, err := svc.db.Beginx()
		if err != nil {
			return UploadResult{}, errors.Wrap(err, "beginning transaction")
		}
		if err = svc.repo.UpsertGrades(ctx, subs, tx); err != nil {
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
		Processed: processed,
		Updated:   updated,
		Skipped:   len(notFound) + len(invalid),
		Details: UploadDetails{
			RegistrationsNotFound: notFound,
			TotalNotFound:         len(notFound),
			InvalidRows:           invalid,
			TotalInvalid:          len(invalid),
		},
	}, nil
}

func (svc *service) checkGrade(ctx context.Context, assignmentID string, grade float64) error {
	if grade < 0 {
		return core.NewValidationError(errors.New("grade cannot be negative"))
	}
	asg, err := svc.repo.GetAssignmentInfo(ctx, assignmentID)
	if err != nil {
		return err
	}
	if grade > float64(asg.MaxScore) {
		return core.NewValidationError(errors.Errorf("grade cannot exceed maximum score of %d", asg.MaxScore))
	}
	return nil
}

// parseISOTime accepts RFC 3339 and the bare variant without a zone offset.
func parseISOTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}
