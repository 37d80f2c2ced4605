package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/forecast"
	"github.com/plangrid/matcast/core/inventory"
	"github.com/plangrid/matcast/core/order"
	"github.com/plangrid/matcast/core/project"
	"github.com/plangrid/matcast/core/team"
	"github.com/plangrid/matcast/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// notFoundErrs are domain sentinels that surface as 404s.
var notFoundErrs = map[error]struct{}{
	user.ErrNotFound:             {},
	project.ErrNotFound:          {},
	team.ErrNotFound:             {},
	team.ErrInvitationNotFound:   {},
	team.ErrNotificationNotFound: {},
	order.ErrNotFound:            {},
	inventory.ErrNotFound:        {},
	forecast.ErrNotFound:         {},
	forecast.ErrMonthNotFound:    {},
}

// conflictErrs surface as 400s with the sentinel's message.
var conflictErrs = map[error]struct{}{
	user.ErrUserExists:         {},
	user.ErrEmailExists:        {},
	user.ErrUsernameExists:     {},
	project.ErrProjectExists:   {},
	inventory.ErrItemExists:    {},
	forecast.ErrForecastExists: {},
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
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
		default:
			if _, ok := notFoundErrs[cause]; ok {
				code = http.StatusNotFound
				message = cause.Error()
				break
			}
			if _, ok := conflictErrs[cause]; ok {
				code = http.StatusBadRequest
				message = cause.Error()
				break
			}
			switch cause {
			case team.ErrPermissionDenied, team.ErrCannotRemoveOwner:
				code = http.StatusForbidden
				message = cause.Error()
			case forecast.ErrPredictorUnavailable:
				code = http.StatusServiceUnavailable
				message = cause.Error()
			default: // any other error is a server error
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
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
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
