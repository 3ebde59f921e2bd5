package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/config"
	"github.com/noah-isme/nepses-go-api/internal/database"
	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/handler"
	"github.com/noah-isme/nepses-go-api/internal/middleware"
	"github.com/noah-isme/nepses-go-api/internal/observability"
	"github.com/noah-isme/nepses-go-api/internal/repository"
	"github.com/noah-isme/nepses-go-api/internal/router"
	"github.com/noah-isme/nepses-go-api/internal/service"
	"github.com/noah-isme/nepses-go-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.AppEnv == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL, "nepses-exam-cache")
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, exam paper cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, assignment events disabled")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	chain, err := ai.NewChainFromConfig(ctx, ai.ChainConfig{
		OpenRouterAPIKey: cfg.AI.OpenRouterAPIKey,
		OpenRouterModel:  cfg.AI.OpenRouterModel,
		OpenAIAPIKey:     cfg.AI.OpenAIAPIKey,
		OpenAIModel:      cfg.AI.OpenAIModel,
		GeminiAPIKey:     cfg.AI.GeminiAPIKey,
		GeminiModel:      cfg.AI.GeminiModel,
		MaxTokens:        cfg.AI.MaxTokens,
		Temperature:      cfg.AI.Temperature,
		Logger:           logger,
	})
	if err != nil {
		log.Fatalf("failed to configure ai providers: %v", err)
	}
	defer chain.Close()
	logger.Info().Strs("providers", chain.Providers()).Msg("ai providers configured")

	observability.RegisterMetrics()

	validate := dto.NewValidator()
	events := service.NewNATSAssignmentPublisher(natsConn, cfg.NATSSubject)

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	paperRepo := repository.NewExamPaperRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	questionService := service.NewQuestionService(questionRepo, validate, logger)
	paperService := service.NewExamPaperService(paperRepo, questionRepo, validate, redisClient, cfg.ExamCacheTTL, activityService, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, paperRepo, userRepo, validate, activityService, events, logger)
	resultService := service.NewResultService(resultRepo, assignmentRepo, paperRepo, questionRepo, userRepo, validate, activityService, events, logger)
	aiService := service.NewAIService(chain, questionService, validate, activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AccessLog:      cfg.AppEnv != "test",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		ExamHandler:       handler.NewExamHandler(paperService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		ResultHandler:     handler.NewResultHandler(resultService, logger),
		AIHandler:         handler.NewAIHandler(aiService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		DB:                db,
		Logger:            logger,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
