package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool { return claims.IsAdmin }, roles...)
}

// directorMiddleware guards the academic write endpoints.
func directorMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool { return claims.IsDirector || claims.IsAdmin })
}

// wellbeingMiddleware guards the wellbeing write endpoints.
func wellbeingMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool { return claims.IsWellbeing || claims.IsAdmin })
}

// staffMiddleware admits any staff account; reads are shared across roles.
func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool {
		return claims.IsDirector || claims.IsWellbeing || claims.IsAdmin
	})
}

func roleMiddleware(allowed func(Claims) bool, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims) && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
