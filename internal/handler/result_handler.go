package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// ResultHandler exposes result endpoints.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs the handler.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register attaches result routes to the router group.
func (h *ResultHandler) Register(router fiber.Router) {
	router.Post("", h.record)
	router.Get("/student/:studentId", h.listByStudent)
	router.Get("/:id", h.get)
}

func (h *ResultHandler) record(c *fiber.Ctx) error {
	var payload dto.ResultCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.Record(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "record result")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Result recorded", result)
}

func (h *ResultHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "result id")
	}

	result, err := h.service.Get(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "load result")
	}
	return utils.SendSuccess(c, "", result)
}

func (h *ResultHandler) listByStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return invalidID(c, "student id")
	}

	results, err := h.service.ListByStudent(requestContext(c), studentID, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list results")
	}
	return utils.SendList(c, "", results, len(results))
}
