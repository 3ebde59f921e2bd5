package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/middleware"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// ExamHandler exposes exam paper endpoints. Reads are open to any signed-in
// user; writes are staff only.
type ExamHandler struct {
	service service.ExamPaperService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamPaperService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches exam routes to the router group.
func (h *ExamHandler) Register(router fiber.Router) {
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}

	router.Get("", middleware.WithAuth(h.list, middleware.AuthOptions{}))
	router.Post("", middleware.WithAuth(h.create, staff))
	router.Post("/generate", middleware.WithAuth(h.generate, staff))
	router.Get("/:id", middleware.WithAuth(h.get, middleware.AuthOptions{}))
	router.Put("/:id", middleware.WithAuth(h.update, staff))
	router.Delete("/:id", middleware.WithAuth(h.delete, staff))
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	papers, err := h.service.List(requestContext(c), dto.ExamPaperListRequest{
		Subject:  c.Query("subject"),
		Category: c.Query("category"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "list exams")
	}
	return utils.SendList(c, "", papers, len(papers))
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "exam id")
	}

	paper, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "load exam")
	}
	if !actorFromContext(c).IsStaff() {
		paper = paper.WithoutAnswerKey()
	}
	return utils.SendSuccess(c, "", paper)
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamPaperCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	paper, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "create exam")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Exam created", paper)
}

func (h *ExamHandler) generate(c *fiber.Ctx) error {
	var payload dto.ExamPaperGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	paper, err := h.service.Generate(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "generate exam")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Exam generated", paper)
}

func (h *ExamHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "exam id")
	}

	var payload dto.ExamPaperUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	paper, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "update exam")
	}
	return utils.SendSuccess(c, "Exam updated", paper)
}

func (h *ExamHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "exam id")
	}

	if err := h.service.Delete(requestContext(c), id, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "delete exam")
	}
	return utils.SendSuccess(c, "Exam deleted", fiber.Map{"id": id})
}
