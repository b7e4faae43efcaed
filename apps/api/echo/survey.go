package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/survey"
)

type surveyApi struct {
	svc      survey.ServiceInterface
	validate *validator.Validate
}

func registerSurveyAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc survey.ServiceInterface,
	validate *validator.Validate,
) {
	api := surveyApi{svc: svc, validate: validate}

	sg := g.Group("/surveys", jwt)
	sg.GET("", api.query, staffMiddleware())
	sg.POST("", api.create, wellbeingMiddleware())
	sg.POST("/bulk", api.bulkCreate, wellbeingMiddleware())
	sg.DELETE("/student/:studentID", api.destroyByStudent, wellbeingMiddleware())
}

// Handlers

func (api *surveyApi) query(ctx echo.Context) error {
	filter := new(survey.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []survey.Survey{})
	}
	filter.Clean()

	surveys, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying surveys")
	}
	if surveys == nil {
		surveys = []survey.Survey{}
	}
	return ctx.JSON(http.StatusOK, surveys)
}

func (api *surveyApi) create(ctx echo.Context) error {
	var data survey.NewSurvey
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSurvey")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sv, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating survey")
	}
	return ctx.JSON(http.StatusCreated, sv)
}

func (api *surveyApi) bulkCreate(ctx echo.Context) error {
	var data survey.BulkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	created, err := api.svc.BulkCreate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "bulk creating surveys")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Bulk survey creation completed",
		"created": created,
		"skipped": len(data.Surveys) - created,
	})
}

func (api *surveyApi) destroyByStudent(ctx echo.Context) error {
	deleted, err := api.svc.DeleteByStudent(ctx.Request().Context(), ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "deleting student surveys")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Surveys deleted",
		"deleted": deleted,
	})
}
