package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/livetone/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(validateRatePerSecond, validateBurst)

	api := s.E.Group("/api")
	api.POST("/validate", s.validateHandler.ValidatePost, rateLimiter)
	api.GET("/denylist", s.denyListHandler.DenyListGet)

	s.E.GET("/ws", echo.WrapHandler(s.relay))

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
