package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
)

type submissionApi struct {
	svc      submission.ServiceInterface
	validate *validator.Validate
}

func registerSubmissionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc submission.ServiceInterface,
	validate *validator.Validate,
) {
	api := submissionApi{svc: svc, validate: validate}

	sg := g.Group("/submissions", jwt)
	sg.GET("", api.query, staffMiddleware())
	sg.POST("", api.create, directorMiddleware())
	sg.GET("/summary", api.gradingSummary, staffMiddleware())
	sg.GET("/student/:studentID", api.byStudent, staffMiddleware())
	sg.GET("/assignment/:assignmentID", api.byAssignment, staffMiddleware())
	sg.PUT("/:id", api.update, directorMiddleware())
	sg.PUT("/:id/grade", api.grade, directorMiddleware())
	sg.DELETE("/:id", api.destroy, directorMiddleware())
}

// Handlers

func (api *submissionApi) query(ctx echo.Context) error {
	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []submission.Submission{})
	}
	filter.Clean()

	subs, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) create(ctx echo.Context) error {
	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data submission.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}

	sub, err := api.svc.Grade(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data submission.UpdateSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubmission")
	}

	sub, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *submissionApi) byStudent(ctx echo.Context) error {
	res, err := api.svc.StudentSubmissions(ctx.Request().Context(), ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "getting student submissions")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *submissionApi) byAssignment(ctx echo.Context) error {
	res, err := api.svc.AssignmentSubmissions(ctx.Request().Context(), ctx.Param("assignmentID"))
	if err != nil {
		return errors.Wrap(err, "getting assignment submissions")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *submissionApi) gradingSummary(ctx echo.Context) error {
	res, err := api.svc.GradingSummary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting grading summary")
	}
	return ctx.JSON(http.StatusOK, res)
}
