package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/livetone/internal/config"
	"github.com/nfrund/livetone/internal/handlers"
	"github.com/nfrund/livetone/internal/hub"
	appmiddleware "github.com/nfrund/livetone/internal/middleware"
	"github.com/nfrund/livetone/internal/validation"
)

// Rate limit for the validation API, per client IP.
const (
	validateRatePerSecond = 5
	validateBurst         = 20
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E               *echo.Echo
	Cfg             config.Provider
	relayHub        *hub.Hub
	validateHandler *handlers.ValidateHandler
	denyListHandler *handlers.DenyListHandler
	relay           *hub.Relay
}

// New creates a server validating with v and relaying through h. The caller
// runs h.
func New(cfg config.Provider, v *validation.Validator, h *hub.Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())
	setupErrorHandling(e)

	s := &Server{
		E:               e,
		Cfg:             cfg,
		relayHub:        h,
		validateHandler: handlers.NewValidateHandler(v),
		denyListHandler: handlers.NewDenyListHandler(v.DenyList()),
		relay:           hub.NewRelay(h, cfg.GetAllowedOrigins()...),
	}
	s.RegisterRoutes()
	return s
}

// Hub returns the relay hub, useful for testing.
func (s *Server) Hub() *hub.Hub {
	return s.relayHub
}
