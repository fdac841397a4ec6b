// Package health serves liveness and readiness probes over HTTP.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/m3rciful/cinebot/core/logger"
)

const checkTimeout = 2 * time.Second

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Server exposes /healthz (process is up) and /readyz (every check passes).
type Server struct {
	listen string
	echo   *echo.Echo
	checks []Check
}

// NewServer builds a Server; call Start to begin listening.
func NewServer(listen string, checks ...Check) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s := &Server{listen: listen, echo: e, checks: checks}
	e.GET("/healthz", s.liveness)
	e.GET("/readyz", s.readiness)
	return s
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens in the background; listener failures are logged.
func (s *Server) Start() {
	go func() {
		err := s.echo.Start(s.listen)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "health", "listen", logger.Err(err))
		}
	}()
	logger.Info(context.Background(), "health", "start", slog.String("listen", s.listen))
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(s.checks))
	for _, chk := range s.checks {
		if err := chk.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			result[chk.Name] = err.Error()
			logger.Warn(ctx, "health", "check.fail", slog.String("check", chk.Name), logger.Err(err))
			continue
		}
		result[chk.Name] = "ok"
	}
	return c.JSON(status, result)
}
