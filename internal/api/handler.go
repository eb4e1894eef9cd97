package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/georgeshao/sdstudio/internal/generation"
	"github.com/georgeshao/sdstudio/pkg/types"
)

type Handler struct {
	service *generation.Service
}

func NewHandler(service *generation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	var req types.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Error: "Invalid request body"})
	}

	result, err := h.service.Generate(c.Context(), req.Input, req.Count)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *Handler) ListGenerations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", generation.DefaultPageSize)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Error: "Invalid limit"})
	}

	resp, err := h.service.ListGenerations(c.Context(), generation.PageOptions{
		Limit: limit,
		After: c.Query("after"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func (h *Handler) DeleteGeneration(c *fiber.Ctx) error {
	var req types.DeleteGenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Error: "Invalid request body"})
	}

	out, err := h.service.DeleteGeneration(c.Context(), generation.DeleteRequest{
		GenerationID: req.GenerationID,
		ObjectKeys:   req.ObjectKeys,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(outcomeToResponse(out))
}

func (h *Handler) DefaultInput(c *fiber.Ctx) error {
	in, err := h.service.DefaultInput(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(in)
}

func (h *Handler) ListEndpoints(c *fiber.Ctx) error {
	endpoints, err := h.service.Endpoints(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(endpoints)
}

func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(h.service.Status(c.Context()))
}

func (h *Handler) ListSamplers(c *fiber.Ctx) error {
	return c.JSON(generation.Samplers())
}

func (h *Handler) ListStyles(c *fiber.Ctx) error {
	return c.JSON(generation.Styles())
}

func (h *Handler) ListResolutions(c *fiber.Ctx) error {
	return c.JSON(generation.Resolutions())
}

func (h *Handler) DefaultCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"count": generation.DefaultCount})
}

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.service.Settings(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(settings)
}

func (h *Handler) SetSetting(c *fiber.Ctx) error {
	var req types.SetSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Error: "Invalid request body"})
	}
	if req.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Error: "Key is required"})
	}

	if err := h.service.SetSetting(c.Context(), req.Key, req.Value); err != nil {
		return writeError(c, err)
	}
	return h.GetSettings(c)
}
