package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/metrics"
)

// RequestMetrics records count and latency per matched route.
func RequestMetrics(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	// route pattern keeps label cardinality bounded
	metrics.RecordAPIRequest(c.Method(), c.Route().Path, status, time.Since(start))
	return err
}
