package api

import (
	"errors"

	"matka/models"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ErrorBody is the data of a failed response
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func JSONSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    ErrorBody{Kind: kind, Message: message},
	})
}

// statusForKind maps an error kind to its HTTP status
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidInput:
		return fiber.StatusBadRequest
	case models.KindInsufficientBalance:
		return fiber.StatusUnprocessableEntity
	case models.KindUnknownAccount, models.KindUnknownMarket, models.KindUnknownWager, models.KindNotFound:
		return fiber.StatusNotFound
	case models.KindConflict, models.KindAlreadyDeclared:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError writes a domain error with its kind, and hides anything else
// behind a generic 500.
func handleError(c *fiber.Ctx, err error) error {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		return JSONError(c, statusForKind(domainErr.Kind), string(domainErr.Kind), domainErr.Error())
	}

	log.WithError(err).WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("Request failed")
	return JSONError(c, fiber.StatusInternalServerError, "internal", "internal error")
}

// fiberErrorHandler renders errors fiber itself raises (unknown routes, bad bodies)
// in the same envelope.
func fiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := "http_error"
		switch fe.Code {
		case fiber.StatusNotFound:
			kind = string(models.KindNotFound)
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			kind = string(models.KindInvalidInput)
		}
		return JSONError(c, fe.Code, kind, fe.Message)
	}
	return handleError(c, err)
}
