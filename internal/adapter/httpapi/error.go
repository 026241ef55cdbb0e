package httpapi

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// errorResponse is the uniform error body for all endpoints
type errorResponse struct {
	Error string `json:"error"`
}

// mapError translates domain sentinel errors into HTTP responses. This
// is the single translation point between the usecases and the wire:
// transition and ledger conflicts map to 409, lookups to 404, and
// anything unknown collapses to a generic 500 without leaking internals.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrWalletNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrAlreadyDisbursed),
		errors.Is(err, domain.ErrRequestNotApproved),
		errors.Is(err, domain.ErrInsufficientBalance):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAmountMismatch):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(errorResponse{Error: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal server error"})
	}
}

// badRequest reports a malformed or invalid request body/parameter
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msg})
}

func errInvalidQuery(param string) error {
	return fmt.Errorf("invalid %s", param)
}
