// Package server exposes quorum's service over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/service"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 10 * time.Second

// Server is the HTTP API.
type Server struct {
	echo      *echo.Echo
	svc       *service.Service
	addr      string
	retention time.Duration
	log       *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithRetention sets the retention used by the cleanup endpoint.
func WithRetention(d time.Duration) Option {
	return func(s *Server) {
		s.retention = d
	}
}

// New creates a server with every route registered.
func New(svc *service.Service, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		svc:       svc,
		addr:      DefaultAddr,
		retention: service.DefaultRetention,
		log:       logger.With("component", "http"),
	}
	for _, opt := range opts {
		opt(s)
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	events := api.Group("/events")
	events.POST("", s.CreateEvent)
	events.GET("/:eventId", s.GetEvent)
	events.POST("/:eventId/participants", s.AddParticipant)
	events.PUT("/:eventId/availability/:participantId", s.UpdateAvailability)
	events.GET("/:eventId/availability", s.Aggregated)
	events.GET("/:eventId/heatmap", s.Heatmap)
	events.POST("/:eventId/schedule", s.Schedule)
	events.GET("/:eventId/schedule", s.GetSchedule)
	events.GET("/:eventId/schedule.ics", s.ExportSchedule)

	api.GET("/cleanup", s.Cleanup)
	api.DELETE("/cleanup", s.Cleanup)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	return nil
}

// fail logs err and converts it to an API error.
func (s *Server) fail(c echo.Context, err error) error {
	he := fromDomain(err)
	if he.Code >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
	} else {
		s.log.Debug("request rejected", "method", c.Request().Method, "path", c.Path(), "status", he.Code, "err", err)
	}
	return he
}

// handleError writes every error in the error envelope.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = fromDomain(err)
	}
	body, ok := he.Message.(*ErrorResponse)
	if !ok {
		body = &ErrorResponse{
			Status:    "error",
			Code:      codeForStatus(he.Code),
			Message:   fmt.Sprint(he.Message),
			Timestamp: time.Now(),
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		s.log.Error("writing error response", "err", err)
	}
}

func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusConflict:
		return CodeAlreadyScheduled
	default:
		return CodeInternal
	}
}
