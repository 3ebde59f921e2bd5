package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// AuthHandler exposes registration and sign-in endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes. authenticated guards /me.
func (h *AuthHandler) Register(router fiber.Router, authenticated fiber.Handler) {
	router.Post("/register", h.register)
	router.Post("/student/login", h.studentLogin)
	router.Post("/admin/login", h.adminLogin)
	router.Get("/me", authenticated, h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	resp, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "register student")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Registration successful", resp)
}

func (h *AuthHandler) studentLogin(c *fiber.Ctx) error {
	var payload dto.StudentLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	resp, err := h.service.StudentLogin(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "sign in")
	}
	return utils.SendSuccess(c, "Login successful", resp)
}

func (h *AuthHandler) adminLogin(c *fiber.Ctx) error {
	var payload dto.AdminLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	resp, err := h.service.AdminLogin(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "sign in")
	}
	return utils.SendSuccess(c, "Login successful", resp)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(requestContext(c), actorFromContext(c).ID)
	if err != nil {
		return respondError(c, h.logger, err, "load profile")
	}
	return utils.SendSuccess(c, "", user)
}
