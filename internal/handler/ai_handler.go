package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// AIHandler proxies question generation requests.
type AIHandler struct {
	service service.AIService
	logger  zerolog.Logger
}

// NewAIHandler constructs the handler.
func NewAIHandler(service service.AIService, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		service: service,
		logger:  logger.With().Str("component", "ai_handler").Logger(),
	}
}

// Register attaches AI routes. limiter throttles generation per user.
func (h *AIHandler) Register(router fiber.Router, limiter fiber.Handler) {
	router.Post("/generate", limiter, h.generate)
}

func (h *AIHandler) generate(c *fiber.Ctx) error {
	var payload dto.AIGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.Generate(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "generate questions")
	}

	if payload.Persist {
		message := fmt.Sprintf("Stored %d generated question(s)", len(result.Stored))
		return utils.SendListWithStatus(c, fiber.StatusCreated, message, result.Stored, len(result.Stored))
	}

	message := fmt.Sprintf("Generated %d question(s) with %s", len(result.Items), result.Provider)
	return utils.SendList(c, message, result.Items, len(result.Items))
}
