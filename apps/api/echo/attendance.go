package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
)

type attendanceApi struct {
	svc      attendance.ServiceInterface
	validate *validator.Validate
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc attendance.ServiceInterface,
	validate *validator.Validate,
) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.query, staffMiddleware())
	ag.POST("", api.record, directorMiddleware())
	ag.GET("/report", api.report, staffMiddleware())
	ag.GET("/student/:studentID", api.byStudent, staffMiddleware())
	ag.GET("/module/:moduleID", api.byModule, staffMiddleware())
	ag.PUT("/:id", api.update, directorMiddleware())
	ag.DELETE("/:id", api.destroy, directorMiddleware())
}

// Handlers

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Record{})
	}
	filter.Clean()

	records, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) byStudent(ctx echo.Context) error {
	res, err := api.svc.StudentAttendance(ctx.Request().Context(), ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "getting student attendance")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) byModule(ctx echo.Context) error {
	res, err := api.svc.ModuleAttendance(ctx.Request().Context(), ctx.Param("moduleID"))
	if err != nil {
		return errors.Wrap(err, "getting module attendance")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) report(ctx echo.Context) error {
	rep, err := api.svc.Report(ctx.Request().Context(), ctx.QueryParam("start_date"), ctx.QueryParam("end_date"))
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
