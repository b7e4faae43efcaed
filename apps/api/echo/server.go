package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/student"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/survey"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger

		UserSvc       user.ServiceInterface
		StudentSvc    student.ServiceInterface
		CourseSvc     course.ServiceInterface
		SurveySvc     survey.ServiceInterface
		AttendanceSvc attendance.ServiceInterface
		SubmissionSvc submission.ServiceInterface
		ReportSvc     report.ServiceInterface

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf
	appJWTConfig.SigningKey = []byte(conf.SecretKey)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)
	s.app.GET("/health", health)
	s.app.Static("/dashboard", filepath.Join(conf.WorkDir, "web"))

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate, s.deps.Translator)
	registerStudentAPI(v1, jwt, s.deps.StudentSvc, s.deps.ReportSvc, s.deps.Validate)
	registerCourseAPI(v1, jwt, s.deps.CourseSvc, s.deps.StudentSvc, s.deps.ReportSvc)
	registerModuleAPI(v1, jwt, s.deps.CourseSvc, s.deps.Validate)
	registerAssignmentAPI(v1, jwt, s.deps.CourseSvc, s.deps.Validate)
	registerSurveyAPI(v1, jwt, s.deps.SurveySvc, s.deps.Validate)
	registerAttendanceAPI(v1, jwt, s.deps.AttendanceSvc, s.deps.Validate)
	registerSubmissionAPI(v1, jwt, s.deps.SubmissionSvc, s.deps.Validate)
	registerAcademicAPI(v1, jwt, s.deps.AttendanceSvc, s.deps.SubmissionSvc)
	registerReportAPI(v1, jwt, s.deps.ReportSvc)
}

// Start runs the listener and reports its failure on Errors.
func (s *Server) Start() {
	s.errors <- s.app.Start(s.deps.Conf.Server.Address)
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown triggers a graceful shutdown, as if a SIGTERM was received.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "University Wellbeing API",
		"status":  "running",
		"version": core.Conf.Build,
	})
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}
