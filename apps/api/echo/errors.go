package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/student"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/survey"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// apiErrStatuses maps the domain sentinel errors to their response codes.
var apiErrStatuses = map[error]int{
	user.ErrNotFound: http.StatusNotFound,

	student.ErrNotFound:        http.StatusNotFound,
	student.ErrCourseNotFound:  http.StatusNotFound,
	student.ErrStudentIDExists: http.StatusConflict,
	student.ErrEmailExists:     http.StatusConflict,

	course.ErrNotFound:             http.StatusNotFound,
	course.ErrModuleNotFound:       http.StatusNotFound,
	course.ErrAssignmentNotFound:   http.StatusNotFound,
	course.ErrRegistrationNotFound: http.StatusNotFound,
	course.ErrStudentNotFound:      http.StatusNotFound,
	course.ErrModuleIDExists:       http.StatusConflict,
	course.ErrAlreadyRegistered:    http.StatusConflict,
	// assignment ID clashes respond 400, unlike the other duplicates
	course.ErrAssignmentIDExists: http.StatusBadRequest,

	survey.ErrRegistrationNotFound:      http.StatusNotFound,
	survey.ErrStudentHasNoRegistrations: http.StatusNotFound,

	attendance.ErrNotFound:             http.StatusNotFound,
	attendance.ErrRegistrationNotFound: http.StatusNotFound,
	attendance.ErrStudentNotFound:      http.StatusNotFound,
	attendance.ErrModuleNotFound:       http.StatusNotFound,
	attendance.ErrWeekAlreadyRecorded:  http.StatusConflict,

	submission.ErrNotFound:             http.StatusNotFound,
	submission.ErrRegistrationNotFound: http.StatusNotFound,
	submission.ErrAssignmentNotFound:   http.StatusNotFound,
	submission.ErrStudentNotFound:      http.StatusNotFound,
	submission.ErrAlreadyExists:        http.StatusConflict,

	report.ErrStudentNotFound:      http.StatusNotFound,
	report.ErrCourseNotFound:       http.StatusNotFound,
	report.ErrModuleNotFound:       http.StatusNotFound,
	report.ErrNoStudentsRegistered: http.StatusNotFound,
	report.ErrNoSurveyData:         http.StatusNotFound,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case core.CSVFormatError:
			code = http.StatusBadRequest
			message = echo.Map{
				"error":            origErr.Error(),
				"required_headers": origErr.RequiredHeaders,
				"received_headers": origErr.ReceivedHeaders,
			}
		default: // any other error is a server error
			if status, ok := apiErrStatuses[origErr]; ok {
				code = status
				message = origErr.Error()
				break
			}

			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Username = claims.Username
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
