package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/student"
)

type courseApi struct {
	svc        course.ServiceInterface
	studentSvc student.ServiceInterface
	reportSvc  report.ServiceInterface
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc course.ServiceInterface,
	studentSvc student.ServiceInterface,
	reportSvc report.ServiceInterface,
) {
	api := courseApi{
		svc:        svc,
		studentSvc: studentSvc,
		reportSvc:  reportSvc,
	}

	// courses are reference data; read-only for all staff
	cg := g.Group("/courses", jwt, staffMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/details", api.details)
	cg.GET("/:id/modules", api.modules)
	cg.GET("/:id/students", api.students)
	cg.GET("/:id/comparison", api.comparison)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) details(ctx echo.Context) error {
	details, err := api.svc.GetCourseDetails(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course details")
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *courseApi) modules(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	courseID := ctx.Param("id")

	// resolve the course first so an unknown ID 404s instead of listing nothing
	if _, err := api.svc.GetCourse(rctx, courseID); err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	modules, err := api.svc.QueryModules(rctx, courseID)
	if err != nil {
		return errors.Wrap(err, "querying course modules")
	}
	if modules == nil {
		modules = []course.Module{}
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *courseApi) students(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	courseID := ctx.Param("id")

	if _, err := api.svc.GetCourse(rctx, courseID); err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	students, err := api.studentSvc.Query(rctx, &student.QueryFilter{CourseID: courseID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying course students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *courseApi) comparison(ctx echo.Context) error {
	weekStart, _ := strconv.Atoi(ctx.QueryParam("week_start"))
	weekEnd, _ := strconv.Atoi(ctx.QueryParam("week_end"))

	rep, err := api.reportSvc.CourseComparison(
		ctx.Request().Context(),
		ctx.Param("id"),
		ctx.QueryParam("metric"),
		weekStart, weekEnd,
	)
	if err != nil {
		return errors.Wrap(err, "building course comparison")
	}
	return ctx.JSON(http.StatusOK, rep)
}
