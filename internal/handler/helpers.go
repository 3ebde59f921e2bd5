package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/middleware"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

const (
	validationKind = "ValidationError"
	internalKind   = "InternalError"
)

var kindStatus = map[string]int{
	"ValidationError":       fiber.StatusBadRequest,
	"NotFoundError":         fiber.StatusNotFound,
	"ConflictError":         fiber.StatusConflict,
	"InsufficientDataError": fiber.StatusBadRequest,
	"UpstreamError":         fiber.StatusBadGateway,
	"ForbiddenError":        fiber.StatusForbidden,
	"UnauthorizedError":     fiber.StatusUnauthorized,
}

// respondError maps a service error onto the envelope. Unclassified errors
// are logged and answered with a generic 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	kind := service.ErrorKind(err)
	status, ok := kindStatus[kind]
	if !ok {
		requestLogger(logger, c).Error().Err(err).Msgf("failed to %s", action)
		return utils.SendError(c, fiber.StatusInternalServerError, internalKind, "Failed to "+action)
	}

	message := err.Error()
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		message = dto.DescribeValidation(fieldErrs)
	}

	if status >= fiber.StatusInternalServerError {
		requestLogger(logger, c).Warn().Err(err).Str("kind", kind).Msgf("failed to %s", action)
	}
	return utils.SendError(c, status, kind, message)
}

func invalidBody(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, validationKind, "Invalid request body")
}

func invalidID(c *fiber.Ctx, name string) error {
	return utils.SendError(c, fiber.StatusBadRequest, validationKind, "Invalid "+name)
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func actorFromContext(c *fiber.Ctx) service.ActivityActor {
	id, _ := c.Locals("user_id").(uint)
	role, _ := c.Locals("user_role").(string)
	return service.ActivityActor{ID: id, Role: role}
}

// requestContext returns the user context set up by the correlation
// middleware, falling back to a background context.
func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if correlation := middleware.GetCorrelationID(c); correlation != "" {
		logger = base.With().Str("correlation_id", correlation).Logger()
	}
	return &logger
}
