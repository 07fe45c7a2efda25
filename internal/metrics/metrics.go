// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

// Package metrics holds the Prometheus collectors shared by the pipeline, the action
// dispatcher and the webhook server.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulebot_events_received_total",
	Help: "The total number of webhook events received",
}, []string{"event", "action"})

var DuplicateDeliveries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulebot_duplicate_deliveries_total",
	Help: "Webhook deliveries dropped because their delivery ID was already seen",
})

var PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulebot_pipeline_runs_total",
	Help: "Pipeline runs by preset and result",
}, []string{"preset", "status"})

var PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "rulebot_pipeline_duration_seconds",
	Help:    "A histogram of pipeline latencies",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
}, []string{"preset"})

var ActionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulebot_actions_total",
	Help: "Actions dispatched to the host, by kind and mode (live, dry_run, failed)",
}, []string{"kind", "mode"})

var reqCnt = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulebot_http_requests_total",
	Help: "A counter for requests to the wrapped handler.",
}, []string{"code", "method", "path"})

var reqDur = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "rulebot_http_request_duration_seconds",
	Help:    "A histogram of latencies for requests.",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
}, []string{"code", "method", "path"})

// Middleware records request counts and latencies for every route except /metrics and /healthz.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Path()
		if path == "/metrics" || path == "/healthz" {
			return next(c)
		}

		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			var httpError *echo.HTTPError
			if errors.As(err, &httpError) {
				status = httpError.Code
			}
			if status == 0 || status == http.StatusOK {
				status = http.StatusInternalServerError
			}
		}

		code := strconv.Itoa(status)
		method := c.Request().Method
		reqDur.WithLabelValues(code, method, path).Observe(time.Since(start).Seconds())
		reqCnt.WithLabelValues(code, method, path).Inc()
		return err
	}
}

var RuleMatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulebot_rule_matches_total",
	Help: "Triage rule matches by rule id",
}, []string{"rule"})

var ConfigErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulebot_config_errors_total",
	Help: "Triage rules skipped because they failed to compile",
})
