package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// ActivityHandler exposes the staff audit log.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationKind, "Invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationKind, "Invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	actorID, err := parseQueryInt(c, "actorId")
	if err != nil || actorID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, validationKind, "Invalid actor id")
	}

	entityID, err := parseQueryInt(c, "entityId")
	if err != nil || entityID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, validationKind, "Invalid entity id")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		ActorID:    uint(actorID),
		Action:     c.Query("action"),
		EntityType: c.Query("entityType"),
		EntityID:   uint(entityID),
	}
	if raw := c.Query("since"); raw != "" {
		since, err := dto.ParseDate(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, validationKind, "Invalid since date")
		}
		req.Since = &since
	}

	response, err := h.service.List(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "list activity")
	}

	return utils.SendList(c, "", response, len(response.Items))
}
