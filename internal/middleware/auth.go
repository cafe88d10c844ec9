package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"github.com/nahid-hossain/flocknet/backend/internal/repositories"
	"github.com/nahid-hossain/flocknet/backend/internal/token"
)

// ContextUserKey is where the middleware stores the resolved user.
const ContextUserKey = "user"

// RequireAuth reads the session cookie, verifies the token and resolves the
// caller against the user directory. The password-stripped user record is
// attached to the request context.
func RequireAuth(userRepo repositories.UserRepository, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(token.CookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: No token provided")
			}

			userID, err := token.Parse(cookie.Value, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Invalid token")
			}

			user, err := userRepo.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "User not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}
			user.Password = ""

			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by RequireAuth, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(ContextUserKey).(*models.User)
	return user
}
