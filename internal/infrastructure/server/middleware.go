package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/acrylic/tracker/internal/application/services"
)

// Surfaces an API token can be issued for
const (
	SurfaceApp    = "app"
	SurfaceWidget = "widget"
)

const surfaceKey = "surface"

// authMiddleware validates JWT tokens
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(surfaceKey, claims.Surface)

			return next(c)
		}
	}
}

// requireSurface restricts a route to tokens issued for one of surfaces
func (s *Server) requireSurface(surfaces ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			surface := surfaceFromContext(c)
			for _, allowed := range surfaces {
				if surface == allowed {
					return next(c)
				}
			}

			s.logger.LogSecurityEvent("surface_not_allowed", c.RealIP(), map[string]interface{}{
				"required_surfaces": surfaces,
				"surface":           surface,
				"endpoint":          c.Request().URL.Path,
			})

			return echo.NewHTTPError(http.StatusForbidden, "Token not valid for this surface")
		}
	}
}

func surfaceFromContext(c echo.Context) string {
	surface, ok := c.Get(surfaceKey).(string)
	if !ok {
		return ""
	}
	return surface
}
