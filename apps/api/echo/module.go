package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
)

type moduleApi struct {
	svc      course.ServiceInterface
	validate *validator.Validate
}

func registerModuleAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc course.ServiceInterface,
	validate *validator.Validate,
) {
	api := moduleApi{svc: svc, validate: validate}

	mg := g.Group("/modules", jwt)
	mg.GET("", api.query, staffMiddleware())
	mg.POST("", api.create, directorMiddleware())

	// static segment registered before :id so echo routes it first
	mg.POST("/registrations", api.register, directorMiddleware())
	mg.PUT("/registrations/:id", api.updateRegistration, directorMiddleware())

	mg.GET("/:id", api.retrieve, staffMiddleware())
	mg.PUT("/:id", api.update, directorMiddleware())
	mg.DELETE("/:id", api.destroy, directorMiddleware())
	mg.GET("/:id/assignments", api.assignments, staffMiddleware())
	mg.GET("/:id/registrations", api.registrations, staffMiddleware())
}

// Handlers

func (api *moduleApi) query(ctx echo.Context) error {
	modules, err := api.svc.QueryModules(ctx.Request().Context(), ctx.QueryParam("course_id"))
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if modules == nil {
		modules = []course.Module{}
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *moduleApi) create(ctx echo.Context) error {
	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *moduleApi) retrieve(ctx echo.Context) error {
	mod, err := api.svc.GetModule(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding module by ID")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *moduleApi) update(ctx echo.Context) error {
	var data course.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.UpdateModule(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *moduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteModule(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *moduleApi) assignments(ctx echo.Context) error {
	assignments, err := api.svc.QueryModuleAssignments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying module assignments")
	}
	if assignments == nil {
		assignments = []course.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *moduleApi) register(ctx echo.Context) error {
	var data course.NewRegistration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reg, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *moduleApi) registrations(ctx echo.Context) error {
	regs, err := api.svc.GetModuleRegistrations(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying module registrations")
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *moduleApi) updateRegistration(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data course.UpdateRegistrationStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRegistrationStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reg, err := api.svc.UpdateRegistrationStatus(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating registration status")
	}
	return ctx.JSON(http.StatusOK, reg)
}
