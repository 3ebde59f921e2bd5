package main

import (
	"context"
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/config"
	"github.com/noah-isme/nepses-go-api/internal/database"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/repository"
	"github.com/noah-isme/nepses-go-api/internal/service"
)

var accounts = []service.SeedAccount{
	{Name: "Admin User", Username: "admin", Password: "admin123", Role: models.RoleAdmin},
	{Name: "Moderator User", Username: "moderator", Password: "mod123", Role: models.RoleModerator},
	{Name: "John Doe", CNIC: "1234567890123", Password: "student123", Role: models.RoleStudent},
	{Name: "Jane Smith", CNIC: "9876543210987", Password: "student123", Role: models.RoleStudent},
	{Name: "Ali Ahmed", CNIC: "3456789012345", Password: "student123", Role: models.RoleStudent},
}

var questions = []models.Question{
	{
		Text:          "Choose the correct spelling:",
		Options:       []string{"Accomodate", "Accommodate", "Acommodate", "Acomodate"},
		CorrectOption: 1,
		Subject:       "English",
		Category:      "Junior Clerk",
		Difficulty:    models.DifficultyMedium,
	},
	{
		Text:          `What is the meaning of "ephemeral"?`,
		Options:       []string{"Lasting a long time", "Short-lived", "Transparent", "Powerful"},
		CorrectOption: 1,
		Subject:       "English",
		Category:      "Junior Clerk",
		Difficulty:    models.DifficultyHard,
	},
	{
		Text:          "What is the capital of Pakistan?",
		Options:       []string{"Karachi", "Lahore", "Islamabad", "Peshawar"},
		CorrectOption: 2,
		Subject:       "General Knowledge",
		Category:      "Junior Clerk",
		Difficulty:    models.DifficultyEasy,
	},
	{
		Text:          "When was Pakistan formed?",
		Options:       []string{"1945", "1946", "1947", "1948"},
		CorrectOption: 2,
		Subject:       "General Knowledge",
		Category:      "Junior Clerk",
		Difficulty:    models.DifficultyEasy,
	},
	{
		Text:          "What does CPU stand for?",
		Options:       []string{"Central Processing Unit", "Computer Personal Unit", "Central Personal Unit", "Computing Processing Unit"},
		CorrectOption: 0,
		Subject:       "Computer",
		Category:      "Junior Clerk",
		Difficulty:    models.DifficultyEasy,
	},
	{
		Text:          "Which of the following is an input device?",
		Options:       []string{"Printer", "Monitor", "Speaker", "Keyboard"},
		CorrectOption: 3,
		Subject:       "Computer",
		Category:      "Junior Clerk",
		Difficulty:    models.DifficultyEasy,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	seeder := service.NewSeedService(repository.NewUserRepository(db), repository.NewQuestionRepository(db), logger)
	if _, err := seeder.Seed(context.Background(), accounts, questions); err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}
}
