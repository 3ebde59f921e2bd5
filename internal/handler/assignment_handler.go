package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/middleware"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// AssignmentHandler exposes assignment endpoints. Students reach their own
// assignments; the service enforces ownership.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment routes to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}
	anyone := middleware.AuthOptions{}

	router.Get("", middleware.WithAuth(h.list, staff))
	router.Post("", middleware.WithAuth(h.create, staff))
	router.Post("/bulk", middleware.WithAuth(h.bulkCreate, staff))
	router.Get("/student/:studentId", middleware.WithAuth(h.listByStudent, anyone))
	router.Get("/:id", middleware.WithAuth(h.get, anyone))
	router.Put("/:id", middleware.WithAuth(h.update, anyone))
	router.Patch("/:id", middleware.WithAuth(h.update, anyone))
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.List(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list assignments")
	}
	return utils.SendList(c, "", assignments, len(assignments))
}

func (h *AssignmentHandler) listByStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return invalidID(c, "student id")
	}

	assignments, err := h.service.ListByStudent(requestContext(c), studentID, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list student assignments")
	}
	return utils.SendList(c, "", assignments, len(assignments))
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "assignment id")
	}

	assignment, err := h.service.Get(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "load assignment")
	}
	return utils.SendSuccess(c, "", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	assignment, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "create assignment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Exam assigned successfully", assignment)
}

func (h *AssignmentHandler) bulkCreate(c *fiber.Ctx) error {
	var payload dto.BulkAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.BulkCreate(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "assign exam")
	}

	message := fmt.Sprintf("Assigned exam to %d student(s). %d assignment(s) already existed.", result.Created, result.Skipped)
	return utils.SendListWithStatus(c, fiber.StatusCreated, message, result, result.Created)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidID(c, "assignment id")
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	assignment, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "update assignment")
	}
	return utils.SendSuccess(c, "Assignment updated", assignment)
}
