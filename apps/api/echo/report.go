package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
)

type reportApi struct {
	svc report.ServiceInterface
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc report.ServiceInterface) {
	api := reportApi{svc: svc}

	wg := g.Group("/wellbeing", jwt, staffMiddleware())
	wg.GET("/early-warning", api.earlyWarning)
	wg.GET("/weekly", api.weekly)

	rg := g.Group("/reports", jwt, staffMiddleware())
	rg.GET("/module/:id/academic", api.moduleAcademic)
	rg.GET("/student/:id/academic", api.studentAcademic)
}

// Handlers

func (api *reportApi) earlyWarning(ctx echo.Context) error {
	rep, err := api.svc.EarlyWarning(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building early warning report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) weekly(ctx echo.Context) error {
	rep, err := api.svc.Weekly(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building weekly report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) moduleAcademic(ctx echo.Context) error {
	rep, err := api.svc.ModuleAcademic(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building module academic report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) studentAcademic(ctx echo.Context) error {
	rep, err := api.svc.StudentAcademic(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building student academic report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
