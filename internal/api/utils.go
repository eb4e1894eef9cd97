package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/internal/generation"
	"github.com/georgeshao/sdstudio/pkg/types"
)

func errorStatus(err error) int {
	switch {
	case apperrors.IsValidationError(err):
		return fiber.StatusBadRequest
	case apperrors.IsConfigurationError(err):
		return fiber.StatusPreconditionFailed
	case apperrors.IsInferenceError(err):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(types.ErrorResponse{
		Error: err.Error(),
		Kind:  apperrors.Kind(err),
	})
}

func outcomeToResponse(out *generation.DeleteOutcome) types.DeleteGenerationResponse {
	resp := types.DeleteGenerationResponse{
		GenerationID: out.GenerationID,
		Requested:    out.Requested,
		Deleted:      out.Deleted,
		IndexRemoved: out.IndexRemoved,
	}
	if out.Warning != nil {
		msg := out.Warning.Error()
		resp.Warning = &msg
	}
	return resp
}
