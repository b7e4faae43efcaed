package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
	testutil "github.com/Sibo-Zhao/UKFT-PAI-Group3/tests"
)

func Test_submissionApi_create(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	wellbeing := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@uni.ac.uk", "", []string{user.RoleWellbeing}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	testutil.CreateAssignment(t, courseRepo, "A001", "M001", "Coursework 1", time.Date(2026, 1, 15, 23, 59, 0, 0, time.UTC))
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")
	reg := testutil.CreateRegistration(t, courseRepo, std.StudentID, "M001")

	newSub := func(regID int, asgID, submittedAt string, grade null.Float64) []byte {
		return marchallObj(t, submission.NewSubmission{
			RegistrationID: regID, AssignmentID: asgID, SubmittedAt: submittedAt, GradeAchieved: grade,
		})
	}

	tests := []httpTest{
		{
			name: "director required", token: getToken(t, wellbeing), body: newSub(reg.RegistrationID, "A001", "", null.Float64{}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: directorToken, body: marchallObj(t, submission.NewSubmission{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"registration_id": "this field is required", "assignment_id": "this field is required",
			}),
		},
		{
			name: "invalid submitted_at", token: directorToken, body: newSub(reg.RegistrationID, "A001", "lol", null.Float64{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"submitted_at": "invalid submitted_at format, use ISO format"}),
		},
		{
			name: "negative grade", token: directorToken, body: newSub(reg.RegistrationID, "A001", "", null.Float64From(-5)),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "grade cannot be negative"}),
		},
		{
			name: "grade above max score", token: directorToken, body: newSub(reg.RegistrationID, "A001", "", null.Float64From(120)),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "grade cannot exceed maximum score of 100"}),
		},
		{
			name: "unknown registration", token: directorToken, body: newSub(999, "A001", "", null.Float64{}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "registration not found"}),
		},
		{
			name: "unknown assignment", token: directorToken, body: newSub(reg.RegistrationID, "lol", "", null.Float64{}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
		},
		{
			name: "created", token: directorToken,
			body:     newSub(reg.RegistrationID, "A001", "2026-01-14T10:30:00", null.Float64From(72)),
			wantCode: http.StatusCreated,
		},
		{
			name: "duplicate", token: directorToken, body: newSub(reg.RegistrationID, "A001", "", null.Float64{}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "submission already exists for this assignment"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/submissions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var sub submission.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if sub.SubmissionID == 0 || !sub.GradeAchieved.Valid || sub.GradeAchieved.Float64 != 72 {
					t.Errorf("failed! submission = %+v", sub)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_grade(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	testutil.CreateAssignment(t, courseRepo, "A001", "M001", "Coursework 1", time.Date(2026, 1, 15, 23, 59, 0, 0, time.UTC))
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")
	reg := testutil.CreateRegistration(t, courseRepo, std.StudentID, "M001")
	sub := testutil.CreateSubmission(t, submissionRepo, reg.RegistrationID, "A001", time.Now().UTC(), null.Float64{})

	subPath := fmt.Sprintf("/v1/submissions/%d/grade", sub.SubmissionID)

	type extraTest struct {
		wantGrade    float64
		wantFeedback string
	}
	tests := []httpTest{
		{
			name: "unknown id", path: "/v1/submissions/999/grade",
			body:     marchallObj(t, submission.GradeSubmission{GradeAchieved: null.Float64From(65)}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "submission not found"}),
		},
		{
			name: "negative grade", path: subPath,
			body:     marchallObj(t, submission.GradeSubmission{GradeAchieved: null.Float64From(-1)}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "grade cannot be negative"}),
		},
		{
			name: "graded", path: subPath,
			body:     marchallObj(t, submission.GradeSubmission{GradeAchieved: null.Float64From(65), GraderFeedback: null.StringFrom("solid work")}),
			wantCode: http.StatusOK, extra: extraTest{wantGrade: 65, wantFeedback: "solid work"},
		},
		{
			name: "null grade leaves the current one", path: subPath,
			body:     marchallObj(t, submission.GradeSubmission{GraderFeedback: null.StringFrom("re-read chapter 3")}),
			wantCode: http.StatusOK, extra: extraTest{wantGrade: 65, wantFeedback: "re-read chapter 3"},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.token = directorToken

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if extra, ok := tt.extra.(extraTest); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var graded submission.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &graded); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if !graded.GradeAchieved.Valid || graded.GradeAchieved.Float64 != extra.wantGrade {
					t.Errorf("failed! grade = %+v; want %v", graded.GradeAchieved, extra.wantGrade)
				}
				if graded.GraderFeedback.String != extra.wantFeedback {
					t.Errorf("failed! feedback = %q; want %q", graded.GraderFeedback.String, extra.wantFeedback)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_views(t *testing.T) {
	testutil.ResetDB(t, db)

	wellbeing := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@uni.ac.uk", "", []string{user.RoleWellbeing}, true)
	staffToken := getToken(t, wellbeing)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	dueDate := time.Date(2026, 1, 15, 23, 59, 0, 0, time.UTC)
	testutil.CreateAssignment(t, courseRepo, "A001", "M001", "Coursework 1", dueDate)
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")
	reg := testutil.CreateRegistration(t, courseRepo, std.StudentID, "M001")

	// one graded on-time and one ungraded late submission would need two
	// assignments; a single graded one keeps the sums easy to eyeball
	testutil.CreateSubmission(t, submissionRepo, reg.RegistrationID, "A001", dueDate.AddDate(0, 0, -1), null.Float64From(82))

	type extraTest struct {
		check func(t *testing.T, body []byte)
	}
	tests := []httpTest{
		{
			name: "by student", path: "/v1/submissions/student/S001",
			extra: extraTest{check: func(t *testing.T, body []byte) {
				var res submission.StudentSubmissions
				if err := json.Unmarshal(body, &res); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if res.StudentName != "Ada Lovelace" || len(res.Submissions) != 1 {
					t.Fatalf("failed! result = %+v", res)
				}
				want := submission.SubmissionSummary{TotalSubmissions: 1, GradedSubmissions: 1, AverageGrade: 82}
				if res.Summary != want {
					t.Errorf("failed! summary = %+v; want %+v", res.Summary, want)
				}
			}},
		},
		{
			name: "by student: unknown id", path: "/v1/submissions/student/lol",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "by assignment", path: "/v1/submissions/assignment/A001",
			extra: extraTest{check: func(t *testing.T, body []byte) {
				var res submission.AssignmentSubmissions
				if err := json.Unmarshal(body, &res); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if res.AssignmentTitle != "Coursework 1" || len(res.Submissions) != 1 {
					t.Fatalf("failed! result = %+v", res)
				}
				if res.Submissions[0].IsLate {
					t.Error("submission a day early should not be late")
				}
				want := submission.AssignmentSummary{TotalSubmissions: 1, GradedSubmissions: 1, AverageGrade: 82}
				if res.Summary != want {
					t.Errorf("failed! summary = %+v; want %+v", res.Summary, want)
				}
			}},
		},
		{
			name: "by assignment: unknown id", path: "/v1/submissions/assignment/lol",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
		},
		{
			name: "grading summary", path: "/v1/submissions/summary",
			wantData: marchallObj(t, submission.GradingSummary{
				Summary: submission.GradingProgress{
					TotalSubmissions: 1, GradedSubmissions: 1, GradingCompletionRate: 100,
				},
				Stats:        submission.GradeStatistics{AverageGrade: 82, MinimumGrade: 82, MaximumGrade: 82},
				Distribution: submission.GradeDistribution{Range80: 1},
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.token = staffToken
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if extra, ok := tt.extra.(extraTest); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				extra.check(t, rec.Body.Bytes())
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
