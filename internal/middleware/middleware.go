package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"freshmart/internal/models"
)

const adminContextKey = "admin_context"

// AdminAuth validates the Token header against the configured API key and
// requires an X-Admin-ID identifying the acting administrator. The admin
// identity is attached to the request context; handlers never read it
// from anywhere else.
func AdminAuth(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get("Token")
			if token == "" {
				return c.JSON(http.StatusUnauthorized, models.APIResponse{
					Success: false,
					Message: "Token is required",
				})
			}
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.APIResponse{
					Success: false,
					Message: "Invalid token",
				})
			}

			adminID := c.Request().Header.Get("X-Admin-ID")
			if adminID == "" {
				return c.JSON(http.StatusUnauthorized, models.APIResponse{
					Success: false,
					Message: "X-Admin-ID is required",
				})
			}

			c.Set(adminContextKey, models.AdminContext{
				AdminID: adminID,
				Name:    c.Request().Header.Get("X-Admin-Name"),
			})
			return next(c)
		}
	}
}

// AdminFrom returns the admin identity attached by AdminAuth.
func AdminFrom(c echo.Context) (models.AdminContext, bool) {
	admin, ok := c.Get(adminContextKey).(models.AdminContext)
	return admin, ok
}

// CORS configures CORS headers.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Token, X-Admin-ID, X-Admin-Name, Authorization")
			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
