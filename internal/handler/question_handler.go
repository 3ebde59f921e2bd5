package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// QuestionHandler exposes question bank endpoints. The whole group is staff only.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register attaches question routes to the router group.
func (h *QuestionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/bulk", h.bulkCreate)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *QuestionHandler) list(c *fiber.Ctx) error {
	questions, err := h.service.List(requestContext(c), dto.QuestionListRequest{
		Subject:    c.Query("subject"),
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "list questions")
	}
	return utils.SendList(c, "", questions, len(questions))
}

func (h *QuestionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "question id")
	}

	question, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "load question")
	}
	return utils.SendSuccess(c, "", question)
}

func (h *QuestionHandler) create(c *fiber.Ctx) error {
	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	question, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "create question")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Question created", question)
}

func (h *QuestionHandler) bulkCreate(c *fiber.Ctx) error {
	var payload dto.QuestionBulkRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	questions, err := h.service.BulkCreate(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "create questions")
	}

	return utils.SendListWithStatus(c, fiber.StatusCreated, fmt.Sprintf("Created %d question(s)", len(questions)), questions, len(questions))
}

func (h *QuestionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "question id")
	}

	var payload dto.QuestionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	question, err := h.service.Update(requestContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "update question")
	}
	return utils.SendSuccess(c, "Question updated", question)
}

func (h *QuestionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "question id")
	}

	if err := h.service.Delete(requestContext(c), id); err != nil {
		return respondError(c, h.logger, err, "delete question")
	}
	return utils.SendSuccess(c, "Question deleted", fiber.Map{"id": id})
}
