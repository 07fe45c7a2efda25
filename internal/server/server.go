// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

// Package server exposes the webhook endpoint that feeds GitHub events into the dispatcher.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
	gh "github.com/similigh/rulebot/internal/integrations/github"
	"github.com/similigh/rulebot/internal/metrics"
)

// DefaultDeliveryCacheSize bounds the number of delivery IDs remembered for de-duplication.
const DefaultDeliveryCacheSize = 4096

// Dispatcher runs the pipeline for one item.
type Dispatcher interface {
	Dispatch(ctx context.Context, item *pipeline.Item, cfg *config.Config) (*pipeline.Result, error)
}

// ErrNoSecret is returned by New when no webhook secret is configured and unsigned
// deliveries were not explicitly allowed.
var ErrNoSecret = errors.New("webhook secret is required (set RULEBOT_WEBHOOK_SECRET or pass --insecure)")

// Options configures a Server.
type Options struct {
	Secret            []byte
	DeliveryCacheSize int
	Logger            *slog.Logger
	// AllowUnsigned accepts deliveries without signature verification when Secret is empty.
	AllowUnsigned bool
}

// Server handles GitHub webhooks.
type Server struct {
	echo       *echo.Echo
	dispatcher Dispatcher
	cfg        *config.Config
	secret     []byte
	deliveries *lru.Cache[string, struct{}]
	logger     *slog.Logger
}

// New builds the echo instance and registers the routes.
func New(d Dispatcher, cfg *config.Config, opts Options) (*Server, error) {
	if len(opts.Secret) == 0 && !opts.AllowUnsigned {
		return nil, ErrNoSecret
	}
	size := opts.DeliveryCacheSize
	if size <= 0 {
		size = DefaultDeliveryCacheSize
	}
	deliveries, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware)

	s := &Server{
		echo:       e,
		dispatcher: d,
		cfg:        cfg,
		secret:     opts.Secret,
		deliveries: deliveries,
		logger:     logger.With("component", "server"),
	}

	e.POST("/webhook", s.handleWebhook)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebhook(c echo.Context) error {
	payload, err := gh.ValidateRequest(c.Request(), s.secret)
	if err != nil {
		s.logger.Warn("rejected webhook", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	event := c.Request().Header.Get("X-GitHub-Event")
	delivery := c.Request().Header.Get("X-GitHub-Delivery")
	log := s.logger.With("event", event, "delivery", delivery)

	item, err := gh.ItemFromEvent(event, payload)
	if errors.Is(err, gh.ErrUnsupportedEvent) {
		metrics.EventsReceived.WithLabelValues(event, "").Inc()
		return c.JSON(http.StatusAccepted, map[string]string{"status": "ignored"})
	}
	if err != nil {
		log.Warn("malformed webhook payload", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	metrics.EventsReceived.WithLabelValues(event, item.EventAction).Inc()

	if delivery != "" {
		if seen, _ := s.deliveries.ContainsOrAdd(delivery, struct{}{}); seen {
			metrics.DuplicateDeliveries.Inc()
			log.Info("duplicate delivery dropped")
			return c.JSON(http.StatusOK, map[string]string{"status": "duplicate"})
		}
	}

	result, err := s.dispatcher.Dispatch(c.Request().Context(), item, s.cfg)
	if err != nil {
		// Let a redelivery of the same event through.
		if delivery != "" {
			s.deliveries.Remove(delivery)
		}
		log.Error("dispatch failed", "item", item.Ref().String(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
