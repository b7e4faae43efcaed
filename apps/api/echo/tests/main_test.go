package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	. "github.com/Sibo-Zhao/UKFT-PAI-Group3/apps/api/echo"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/student"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/survey"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
	emailsvc "github.com/Sibo-Zhao/UKFT-PAI-Group3/services/email"
	logsvc "github.com/Sibo-Zhao/UKFT-PAI-Group3/services/logger"
	pgrepos "github.com/Sibo-Zhao/UKFT-PAI-Group3/storage/database/postgres"
	testutil "github.com/Sibo-Zhao/UKFT-PAI-Group3/tests"
)

var (
	db  *sqlx.DB
	app *Server

	usrRepo        user.Repository
	studentRepo    student.Repository
	courseRepo     course.Repository
	surveyRepo     survey.Repository
	attendanceRepo attendance.Repository
	submissionRepo submission.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf := testutil.NewTestConfig()

	// set up DB & repos
	var err error
	if db, err = testutil.OpenDB(); err != nil {
		fmt.Printf("OpenDB(): %v\n", err)
		os.Exit(1)
	}
	usrRepo = pgrepos.NewUserRepository(db)
	studentRepo = pgrepos.NewStudentRepository(db)
	courseRepo = pgrepos.NewCourseRepository(db)
	surveyRepo = pgrepos.NewSurveyRepository(db)
	attendanceRepo = pgrepos.NewAttendanceRepository(db)
	submissionRepo = pgrepos.NewSubmissionRepository(db)

	// set up services
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags|log.Lshortfile), conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(db, usrRepo, mailSvc)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)
	user.LoadCommonPasswords(logger)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			StudentSvc:    student.NewService(db, studentRepo),
			CourseSvc:     course.NewService(db, courseRepo),
			SurveySvc:     survey.NewService(db, surveyRepo),
			AttendanceSvc: attendance.NewService(db, attendanceRepo),
			SubmissionSvc: submission.NewService(db, submissionRepo),
			ReportSvc:     report.NewService(db, pgrepos.NewReportRepository(db), mailSvc),
			Validate:      validate,
			Translator:    translator,
		},
	)

	// run tests
	code := m.Run()

	// clean up
	if err = db.Close(); err != nil {
		fmt.Printf("db.Close(): %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
