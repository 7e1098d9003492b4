package serverutils

import (
	"errors"

	"pergunte-ao-passado/internal/repository/contract"
	"pergunte-ao-passado/internal/service"
	"pergunte-ao-passado/pkg/embedding"
	"pergunte-ao-passado/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps service-layer errors onto HTTP statuses and the
// uniform response envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse("Validation failed", validationErr.Fields))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).
			JSON(ErrorResponse(fiberErr.Message, nil))
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return ctx.Status(fiber.StatusNotFound).
			JSON(ErrorResponse(err.Error(), nil))
	case errors.Is(err, contract.ErrCollectionNotFound):
		return ctx.Status(fiber.StatusServiceUnavailable).
			JSON(ErrorResponse("Corpus is not loaded", nil))
	case errors.Is(err, llm.ErrGeneration), errors.Is(err, embedding.ErrExhaustedRetries):
		return ctx.Status(fiber.StatusBadGateway).
			JSON(ErrorResponse("Upstream AI provider failed", nil))
	}

	return ctx.Status(fiber.StatusInternalServerError).
		JSON(ErrorResponse("Internal server error", nil))
}
