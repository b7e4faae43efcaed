package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
	testutil "github.com/Sibo-Zhao/UKFT-PAI-Group3/tests"
)

func Test_courseApi_query(t *testing.T) {
	testutil.ResetDB(t, db)

	wellbeing := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@uni.ac.uk", "", []string{user.RoleWellbeing}, true)
	nobody := testutil.CreateUser(t, usrRepo, "No Role", "norole", "norole@uni.ac.uk", "", nil, true)

	crs1 := testutil.CreateCourse(t, db, "C001", "Computer Science")
	crs2 := testutil.CreateCourse(t, db, "C002", "Data Science")

	staffToken := getToken(t, wellbeing)

	tests := []httpTest{
		{name: "auth required", path: "/v1/courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "staff role required", path: "/v1/courses", token: getToken(t, nobody), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "get all", path: "/v1/courses", token: staffToken, wantData: marchallList(t, crs1, crs2)},
		{name: "retrieve", path: "/v1/courses/C001", token: staffToken, wantData: marchallObj(t, crs1)},
		{
			name: "retrieve: unknown id", path: "/v1/courses/lol", token: staffToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
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

func Test_courseApi_detailsAndListings(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	directorToken := getToken(t, director)

	crs := testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateCourse(t, db, "C002", "Data Science")
	mod := testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	asg := testutil.CreateAssignment(t, courseRepo, "A001", "M001", "Coursework 1", time.Now().AddDate(0, 0, 7).UTC())
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")

	details := marchallObj(t, course.CourseDetails{
		Course: crs,
		Modules: []course.ModuleDetails{
			{Module: mod, Assignments: []course.Assignment{asg}},
		},
	})

	tests := []httpTest{
		{name: "details", path: "/v1/courses/C001/details", wantData: details},
		{
			name: "details: unknown id", path: "/v1/courses/lol/details",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{name: "modules", path: "/v1/courses/C001/modules", wantData: marchallList(t, mod)},
		{name: "modules: none", path: "/v1/courses/C002/modules", wantData: marchallList(t, []interface{}{}...)},
		{
			name: "modules: unknown course", path: "/v1/courses/lol/modules",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{name: "students", path: "/v1/courses/C001/students", wantData: marchallList(t, std)},
		{
			name: "students: unknown course", path: "/v1/courses/lol/students",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.token = directorToken
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

func Test_courseApi_comparison(t *testing.T) {
	testutil.ResetDB(t, db)

	director := testutil.CreateUser(t, usrRepo, "Director", "direct", "direct@uni.ac.uk", "", []string{user.RoleDirector}, true)
	directorToken := getToken(t, director)

	testutil.CreateCourse(t, db, "C001", "Computer Science")
	testutil.CreateCourse(t, db, "C002", "Data Science")
	testutil.CreateModule(t, courseRepo, "M001", "C001", "Algorithms")
	std := testutil.CreateStudent(t, studentRepo, "S001", "Ada", "Lovelace", "ada@uni.ac.uk", "C001")
	testutil.CreateStudent(t, studentRepo, "S002", "Alan", "Turing", "alan@uni.ac.uk", "C001") // no registrations
	reg := testutil.CreateRegistration(t, courseRepo, std.StudentID, "M001")
	testutil.CreateAttendance(t, attendanceRepo, reg.RegistrationID, 1, time.Now(), true)

	total := 1
	attendance := marchallObj(t, report.CourseComparison{
		CourseID:         "C001",
		CourseName:       "Computer Science",
		ComparisonMetric: "attendance",
		Filters:          &report.ComparisonFilters{},
		TotalStudents:    &total,
		Students: &[]report.ComparisonRow{
			{
				StudentID:       std.StudentID,
				StudentName:     "Ada Lovelace",
				Email:           std.Email,
				AttendanceRate:  floatPtr(100),
				TotalClasses:    intPtr(1),
				ClassesAttended: intPtr(1),
			},
		},
	})
	noStudents := marchallObj(t, report.CourseComparison{
		CourseID:   "C002",
		CourseName: "Data Science",
		Message:    "No students found in this course",
		Comparison: &[]report.ComparisonRow{},
	})

	tests := []httpTest{
		{name: "default metric is attendance", path: "/v1/courses/C001/comparison", wantData: attendance},
		{name: "explicit metric", path: "/v1/courses/C001/comparison?metric=attendance", wantData: attendance},
		{
			name: "invalid metric", path: "/v1/courses/C001/comparison?metric=lol",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"metric": "must be one of: attendance, grades, wellbeing, submissions, all"}),
		},
		{name: "no students", path: "/v1/courses/C002/comparison", wantData: noStudents},
		{
			name: "unknown course", path: "/v1/courses/lol/comparison",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.token = directorToken
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

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
