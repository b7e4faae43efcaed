package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
	testutil "github.com/Sibo-Zhao/UKFT-PAI-Group3/tests"
)

func Test_moduleApi_queryAndRetrieve(t *testing.T) {
	testutil.ResetDB(t, db)

	wellbeing := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@uni.ac.uk", "", []string{user.RoleWellbeing}, true)
	staffToken := getToken(t, wellbeing)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateCourse(t, db, "C002", "Data Science")
	mod1 := testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	mod2 := testutil.CreateModule(t, courseRepo, "M002", "C002", "Statistics")

	tests := []httpTest{
		{name: "auth required", path: "/v1/modules", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "get all", path: "/v1/modules", token: staffToken, wantData: marchallList(t, mod1, mod2)},
		{name: "filter by course", path: "/v1/modules?course_id=C001", token: staffToken, wantData: marchallList(t, mod1)},
		{name: "retrieve", path: "/v1/modules/M002", token: staffToken, wantData: marchallObj(t, mod2)},
		{
			name: "retrieve: unknown id", path: "/v1/modules/lol", token: staffToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_moduleApi_createUpdateDestroy(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	wellbeing := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@uni.ac.uk", "", []string{user.RoleWellbeing}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	existing := testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")

	updated := existing
	updated.ModuleName = "Advanced Algorithms"

	tests := []httpTest{
		{
			name: "create: director required", method: http.MethodPost, path: "/v1/modules",
			token: getToken(t, wellbeing), body: marchallObj(t, course.NewModule{ModuleID: "M002", CourseID: "C001", ModuleName: "Databases"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "create: required fields", method: http.MethodPost, path: "/v1/modules",
			token: directorToken, body: marchallObj(t, course.NewModule{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"module_id": "this field is required", "course_id": "this field is required",
				"module_name": "this field is required",
			}),
		},
		{
			name: "create: duplicate id", method: http.MethodPost, path: "/v1/modules",
			token: directorToken, body: marchallObj(t, course.NewModule{ModuleID: "M001", CourseID: "C001", ModuleName: "Databases"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "module ID already exists"}),
		},
		{
			name: "create: unknown course", method: http.MethodPost, path: "/v1/modules",
			token: directorToken, body: marchallObj(t, course.NewModule{ModuleID: "M002", CourseID: "lol", ModuleName: "Databases"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/modules",
			token: directorToken, body: marchallObj(t, course.NewModule{ModuleID: "M002", CourseID: "C001", ModuleName: "Databases"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, course.Module{
				ModuleID: "M002", CourseID: null.StringFrom("C001"), ModuleName: "Databases",
				DurationWeeks: course.DefaultDurationWeeks,
			}),
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/modules/M001",
			token: directorToken, body: marchallObj(t, course.UpdateModule{ModuleName: "Advanced Algorithms"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, updated),
		},
		{
			name: "update: unknown id", method: http.MethodPut, path: "/v1/modules/lol",
			token: directorToken, body: marchallObj(t, course.UpdateModule{ModuleName: "Advanced Algorithms"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"}),
		},
		{name: "destroy", method: http.MethodDelete, path: "/v1/modules/M002", token: directorToken, wantCode: http.StatusNoContent},
		{
			name: "destroy: already gone", method: http.MethodDelete, path: "/v1/modules/M002",
			token: directorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_moduleApi_registrations(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	testutil.CreateModule(t, courseRepo, "M002", "C001", "Databases")
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")
	existing := testutil.CreateRegistration(t, courseRepo, std.StudentID, "M001")

	tests := []httpTest{
		{
			name: "register: required fields", method: http.MethodPost, path: "/v1/modules/registrations",
			body:     marchallObj(t, course.NewRegistration{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"student_id": "this field is required", "module_id": "this field is required",
			}),
		},
		{
			name: "register: unknown student", method: http.MethodPost, path: "/v1/modules/registrations",
			body:     marchallObj(t, course.NewRegistration{StudentID: "lol", ModuleID: "M002"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "register: unknown module", method: http.MethodPost, path: "/v1/modules/registrations",
			body:     marchallObj(t, course.NewRegistration{StudentID: "S001", ModuleID: "lol"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"}),
		},
		{
			name: "register: duplicate", method: http.MethodPost, path: "/v1/modules/registrations",
			body:     marchallObj(t, course.NewRegistration{StudentID: "S001", ModuleID: "M001"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "student already registered for this module"}),
		},
		{
			name: "register", method: http.MethodPost, path: "/v1/modules/registrations",
			body:     marchallObj(t, course.NewRegistration{StudentID: "S001", ModuleID: "M002"}),
			wantCode: http.StatusCreated,
		},
		{
			name: "update status: unknown id", method: http.MethodPut, path: "/v1/modules/registrations/999",
			body:     marchallObj(t, course.UpdateRegistrationStatus{Status: course.StatusCompleted}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "registration not found"}),
		},
		{
			name: "update status: non-numeric id", method: http.MethodPut, path: "/v1/modules/registrations/lol",
			body:     marchallObj(t, course.UpdateRegistrationStatus{Status: course.StatusCompleted}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "update status: invalid status", method: http.MethodPut,
			path:     fmt.Sprintf("/v1/modules/registrations/%d", existing.RegistrationID),
			body:     marchallObj(t, course.UpdateRegistrationStatus{Status: "lol"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "status must be one of [Active Completed Withdrawn]"}),
		},
		{
			name: "update status", method: http.MethodPut,
			path:     fmt.Sprintf("/v1/modules/registrations/%d", existing.RegistrationID),
			body:     marchallObj(t, course.UpdateRegistrationStatus{Status: course.StatusCompleted}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.token = directorToken

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// the listing reflects both registrations
	t.Run("module registrations listing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/modules/M001/registrations", directorToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}

		regs, err := courseRepo.QueryRegistrationRows(context.Background(), "M001")
		if err != nil {
			t.Fatalf("QueryRegistrationRows() failed, %v", err)
		}
		if len(regs) != 1 {
			t.Errorf("failed! registrations = %d; want 1", len(regs))
		}
		if regs[0].Status != course.StatusCompleted {
			t.Errorf("failed! status = %s; want %s", regs[0].Status, course.StatusCompleted)
		}
	})
}

func Test_assignmentApi(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	wellbeing := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@uni.ac.uk", "", []string{user.RoleWellbeing}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	dueDate := time.Date(2026, 1, 15, 23, 59, 0, 0, time.UTC)
	existing := testutil.CreateAssignment(t, courseRepo, "A001", "M001", "Coursework 1", dueDate)

	updated := existing
	updated.Title = "Coursework 1 (resit)"

	tests := []httpTest{
		{
			name: "create: director required", method: http.MethodPost, path: "/v1/assignments",
			token: getToken(t, wellbeing), body: marchallObj(t, course.NewAssignment{AssignmentID: "A002", ModuleID: "M001", Title: "Exam", DueDate: dueDate}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "create: duplicate id responds 400", method: http.MethodPost, path: "/v1/assignments",
			token: directorToken, body: marchallObj(t, course.NewAssignment{AssignmentID: "A001", ModuleID: "M001", Title: "Exam", DueDate: dueDate}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "assignment ID already exists"}),
		},
		{
			name: "create: unknown module", method: http.MethodPost, path: "/v1/assignments",
			token: directorToken, body: marchallObj(t, course.NewAssignment{AssignmentID: "A002", ModuleID: "lol", Title: "Exam", DueDate: dueDate}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"}),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/assignments",
			token: directorToken, body: marchallObj(t, course.NewAssignment{AssignmentID: "A002", ModuleID: "M001", Title: "Exam", DueDate: dueDate}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, course.Assignment{
				AssignmentID: "A002", ModuleID: "M001", Title: "Exam",
				DueDate: dueDate, MaxScore: course.DefaultMaxScore,
			}),
		},
		{
			name: "retrieve", method: http.MethodGet, path: "/v1/assignments/A001",
			token: getToken(t, wellbeing), wantCode: http.StatusOK, wantData: marchallObj(t, existing),
		},
		{
			name: "retrieve: unknown id", method: http.MethodGet, path: "/v1/assignments/lol",
			token: directorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
		},
		{
			name: "module assignments", method: http.MethodGet, path: "/v1/modules/M001/assignments",
			token: directorToken, wantCode: http.StatusOK, extra: "skip-data",
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/assignments/A001",
			token: directorToken, body: marchallObj(t, course.UpdateAssignment{Title: "Coursework 1 (resit)"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, updated),
		},
		{name: "destroy", method: http.MethodDelete, path: "/v1/assignments/A002", token: directorToken, wantCode: http.StatusNoContent},
		{
			name: "destroy: already gone", method: http.MethodDelete, path: "/v1/assignments/A002",
			token: directorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil || tt.extra == "skip-data" {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
