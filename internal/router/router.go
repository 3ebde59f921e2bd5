package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/config"
	"github.com/noah-isme/nepses-go-api/internal/handler"
	"github.com/noah-isme/nepses-go-api/internal/middleware"
	"github.com/noah-isme/nepses-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	QuestionHandler   *handler.QuestionHandler
	ExamHandler       *handler.ExamHandler
	AssignmentHandler *handler.AssignmentHandler
	ResultHandler     *handler.ResultHandler
	AIHandler         *handler.AIHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
	DB                *gorm.DB
	Logger            zerolog.Logger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler(deps.Logger))

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), jwtMiddleware)
	}

	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(api.Group("/questions", jwtMiddleware, middleware.RequireStaff()))
	}

	// Exams and assignments mix audiences per route.
	if deps.ExamHandler != nil {
		deps.ExamHandler.Register(api.Group("/exams", jwtMiddleware))
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", jwtMiddleware))
	}

	if deps.ResultHandler != nil {
		deps.ResultHandler.Register(api.Group("/results", jwtMiddleware))
	}

	if deps.AIHandler != nil {
		ai := api.Group("/ai", jwtMiddleware, middleware.RequireStaff())
		deps.AIHandler.Register(ai, middleware.RateLimit("ai", cfg.AIRateLimit, cfg.AIRateWindow))
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", jwtMiddleware, middleware.RequireStaff()))
	}
}
