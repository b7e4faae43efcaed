package echoapi

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
)

// academicApi groups the CSV bulk upload endpoints used by course admin staff.
type academicApi struct {
	attendanceSvc attendance.ServiceInterface
	submissionSvc submission.ServiceInterface
}

func registerAcademicAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	attendanceSvc attendance.ServiceInterface,
	submissionSvc submission.ServiceInterface,
) {
	api := academicApi{
		attendanceSvc: attendanceSvc,
		submissionSvc: submissionSvc,
	}

	ag := g.Group("/academic", jwt, directorMiddleware())
	ag.POST("/attendance/bulk", api.uploadAttendance)
	ag.POST("/grades/bulk", api.uploadGrades)
}

// Handlers

func (api *academicApi) uploadAttendance(ctx echo.Context) error {
	file, err := formCSVFile(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := api.attendanceSvc.UploadCSV(ctx.Request().Context(), file)
	if err != nil {
		return errors.Wrap(err, "uploading attendance CSV")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *academicApi) uploadGrades(ctx echo.Context) error {
	file, err := formCSVFile(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := api.submissionSvc.UploadGradesCSV(ctx.Request().Context(), file)
	if err != nil {
		return errors.Wrap(err, "uploading grades CSV")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func formCSVFile(ctx echo.Context) (multipart.File, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: "file", Error: "no file provided"})
	}
	file, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	return file, nil
}
