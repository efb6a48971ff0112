package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "herbtrade_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	assignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "herbtrade_delivery_assignments_total",
		Help: "Delivery assignments by mode (auto, manual, claim).",
	}, []string{"mode"})

	deliveryTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "herbtrade_delivery_status_transitions_total",
		Help: "Delivery status transitions reported by agents.",
	}, []string{"status"})
)

// Metrics counts every request against its registered route pattern.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		httpRequestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
		return err
	}
}

// CountAssignment records a successful delivery assignment.
func CountAssignment(mode string) {
	assignmentsTotal.WithLabelValues(mode).Inc()
}

// CountDeliveryTransition records an agent-reported status change.
func CountDeliveryTransition(status string) {
	deliveryTransitionsTotal.WithLabelValues(status).Inc()
}
