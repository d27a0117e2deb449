package http

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
)

// HealthCheck verifica una dependencia (base de datos, Redis).
type HealthCheck func(ctx context.Context) error

// Health responde 200 si todas las dependencias responden y 503 si alguna falla.
func Health(checks map[string]HealthCheck) fiber.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{}
		healthy := true
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "checks": status})
		}
		return c.JSON(fiber.Map{"status": "ok", "checks": status})
	}
}

// MetricsHandler expone el registro Prometheus propio de la aplicación.
func MetricsHandler(m *metrics.Metrics) fiber.Handler {
	return adaptor.HTTPHandler(m.Handler())
}

// RequestMetrics registra duración y código por ruta. Usa el patrón de la ruta
// (/api/distributions/:id) para no crear una serie por ID.
func RequestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		code := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			} else {
				code = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.ObserveRequest(route, c.Method(), code, time.Since(start))
		return err
	}
}

// RequestLogger una línea por petición con el request id que agrega requestid.
// 5xx se registra como error; el resto en debug para no inundar producción.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		code := c.Response().StatusCode()
		var fe *fiber.Error
		if err != nil && errors.As(err, &fe) {
			code = fe.Code
		} else if err != nil {
			code = fiber.StatusInternalServerError
		}

		ev := log.Debug()
		if code >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Dur("latency", time.Since(start)).
			Str("company_id", GetCompanyID(c)).
			Msg("http")
		return err
	}
}
