package api

import (
	"crypto/subtle"
	"strconv"
	"time"

	"matka/metrics"
	"matka/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	headerAccountID     = "X-Account-ID"
	headerOperatorToken = "X-Operator-Token"
	headerRequestID     = "X-Request-ID"

	localAccountID = "accountID"
)

// AccountAuth reads the account id that the identity gateway forwards.
func AccountAuth(c *fiber.Ctx) error {
	raw := c.Get(headerAccountID)
	if raw == "" {
		return JSONError(c, fiber.StatusUnauthorized, "unauthorized", "X-Account-ID header required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return handleError(c, models.NewError(models.KindInvalidInput, "X-Account-ID must be a positive integer"))
	}

	c.Locals(localAccountID, id)
	return c.Next()
}

func accountID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localAccountID).(int64)
	return id
}

// OperatorAuth guards declaration and market administration.
func OperatorAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Get(headerOperatorToken)
		if token == "" || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			return JSONError(c, fiber.StatusForbidden, "forbidden", "operator token required")
		}
		return c.Next()
	}
}

// RequestLogger tags each request with an id and logs it with its latency.
func RequestLogger(m *metrics.LedgerMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(headerRequestID, requestID)

		err := c.Next()
		if err != nil {
			// Let the app's error handler write the response so the status is known.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path

		if m != nil {
			m.ObserveRequest(c.Method(), route, status, elapsed)
		}
		log.WithFields(log.Fields{
			"requestID": requestID,
			"method":    c.Method(),
			"route":     route,
			"status":    status,
			"duration":  elapsed.String(),
		}).Debug("Handled request")
		return nil
	}
}
