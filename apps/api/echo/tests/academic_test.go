package tests

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
	testutil "github.com/Sibo-Zhao/UKFT-PAI-Group3/tests"
)

// regLine prefixes a CSV line with a registration ID assigned at runtime.
func regLine(regID int, rest string) string {
	return fmt.Sprintf("%d,%s\n", regID, rest)
}

func dueDateFixture() time.Time {
	return time.Date(2026, 1, 15, 23, 59, 0, 0, time.UTC)
}

func newUploadRequest(t *testing.T, path, token, csvContent string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if _, err = part.Write([]byte(csvContent)); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if err = writer.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func Test_academicApi_uploadAttendance(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	wellbeing := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@uni.ac.uk", "", []string{user.RoleWellbeing}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")
	reg := testutil.CreateRegistration(t, courseRepo, std.StudentID, "M001")

	t.Run("director required", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/academic/attendance/bulk", getToken(t, wellbeing), "registration_id,week,is_present\n")
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("no file provided", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/academic/attendance/bulk", directorToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"file": "no file provided"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("missing headers", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/academic/attendance/bulk", directorToken, "student,date\nS001,2026-01-05\n")
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]interface{}{
				"error":            "invalid CSV format",
				"required_headers": []string{"registration_id", "week", "is_present"},
				"received_headers": []string{"student", "date"},
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("upload", func(t *testing.T) {
		csvContent := "registration_id,week,is_present,reason_absent\n" +
			regLine(reg.RegistrationID, "1,present,") +
			regLine(reg.RegistrationID, "2,absent,Sick") +
			"999,1,true,\n" +
			regLine(reg.RegistrationID, "3,maybe,")
		req, rec := newUploadRequest(t, "/v1/academic/attendance/bulk", directorToken, csvContent)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, attendance.UploadResult{
				Message:   "CSV upload completed",
				Processed: 4,
				Created:   2,
				Skipped:   2,
				Details: attendance.UploadDetails{
					RegistrationsNotFound: []string{"Registration ID 999"},
					TotalNotFound:         1,
					InvalidRows:           []string{`Row 5: invalid is_present value "maybe"`},
					TotalInvalid:          1,
				},
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("repeated week overwrites", func(t *testing.T) {
		csvContent := "registration_id,week,is_present\n" +
			regLine(reg.RegistrationID, "1,absent")
		req, rec := newUploadRequest(t, "/v1/academic/attendance/bulk", directorToken, csvContent)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
	})
}

func Test_academicApi_uploadGrades(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	testutil.CreateAssignment(t, courseRepo, "A001", "M001", "Coursework 1", dueDateFixture())
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")
	reg := testutil.CreateRegistration(t, courseRepo, std.StudentID, "M001")

	t.Run("missing headers", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/academic/grades/bulk", directorToken, "registration_id,score\n1,85\n")
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]interface{}{
				"error":            "invalid CSV format",
				"required_headers": []string{"registration_id", "assignment_id", "grade"},
				"received_headers": []string{"registration_id", "score"},
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("upload", func(t *testing.T) {
		csvContent := "registration_id,assignment_id,grade\n" +
			regLine(reg.RegistrationID, "A001,85") +
			regLine(reg.RegistrationID, "lol,50") +
			"999,A001,70\n" +
			regLine(reg.RegistrationID, "A001,-5")
		req, rec := newUploadRequest(t, "/v1/academic/grades/bulk", directorToken, csvContent)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, submission.UploadResult{
				Message:   "CSV upload completed",
				Processed: 4,
				Updated:   1,
				Skipped:   3,
				Details: submission.UploadDetails{
					RegistrationsNotFound: []string{"Registration ID 999"},
					TotalNotFound:         1,
					InvalidRows: []string{
						"Row 5: grade cannot be negative",
						"Row 3: assignment lol not found",
					},
					TotalInvalid: 2,
				},
			}),
		}
		checkCodeAndData(t, tt, rec)
	})
}
