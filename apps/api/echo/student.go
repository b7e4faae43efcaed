package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/student"
)

type studentApi struct {
	svc       student.ServiceInterface
	reportSvc report.ServiceInterface
	validate  *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc student.ServiceInterface,
	reportSvc report.ServiceInterface,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:       svc,
		reportSvc: reportSvc,
		validate:  validate,
	}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, staffMiddleware())
	sg.POST("", api.create, directorMiddleware())
	sg.GET("/at-risk", api.atRisk, staffMiddleware())
	sg.GET("/:id", api.retrieve, staffMiddleware())
	sg.PUT("/:id", api.update, directorMiddleware())
	sg.DELETE("/:id", api.destroy, directorMiddleware())

	// analytics views built off the student's registrations
	sg.GET("/:id/academic-performance", api.academicPerformance, staffMiddleware())
	sg.GET("/:id/wellbeing-trends", api.wellbeingTrends, staffMiddleware())
	sg.GET("/:id/full-profile", api.fullProfile, staffMiddleware())
	sg.GET("/:id/analytics", api.analytics, staffMiddleware())
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) atRisk(ctx echo.Context) error {
	rep, err := api.reportSvc.AtRisk(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building at-risk report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *studentApi) academicPerformance(ctx echo.Context) error {
	rep, err := api.reportSvc.AcademicPerformance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building academic performance")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *studentApi) wellbeingTrends(ctx echo.Context) error {
	rep, err := api.reportSvc.WellbeingTrends(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building wellbeing trends")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *studentApi) fullProfile(ctx echo.Context) error {
	rep, err := api.reportSvc.FullProfile(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building full profile")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *studentApi) analytics(ctx echo.Context) error {
	weekStart, _ := strconv.Atoi(ctx.QueryParam("week_start"))
	weekEnd, _ := strconv.Atoi(ctx.QueryParam("week_end"))

	rep, err := api.reportSvc.StudentAnalytics(
		ctx.Request().Context(),
		ctx.Param("id"),
		ctx.QueryParam("module_id"),
		weekStart, weekEnd,
	)
	if err != nil {
		return errors.Wrap(err, "building student analytics")
	}
	return ctx.JSON(http.StatusOK, rep)
}
