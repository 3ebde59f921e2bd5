package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

// SeedAccount describes a user created by the seeder. Staff carry a
// username, students a CNIC.
type SeedAccount struct {
	Name     string
	Username string
	CNIC     string
	Password string
	Role     string
}

// SeedSummary reports how many rows a seeding run inserted.
type SeedSummary struct {
	UsersCreated     int
	UsersSkipped     int
	QuestionsCreated int
	QuestionsSkipped int
}

// SeedService loads the bootstrap accounts and sample questions. Running it
// twice inserts nothing the second time.
type SeedService interface {
	Seed(ctx context.Context, accounts []SeedAccount, questions []models.Question) (SeedSummary, error)
}

type seedService struct {
	users     repository.UserRepository
	questions repository.QuestionRepository
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, questions repository.QuestionRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		users:     users,
		questions: questions,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) Seed(ctx context.Context, accounts []SeedAccount, questions []models.Question) (SeedSummary, error) {
	var summary SeedSummary

	for _, account := range accounts {
		created, err := s.seedAccount(ctx, account)
		if err != nil {
			return summary, err
		}
		if created {
			summary.UsersCreated++
		} else {
			summary.UsersSkipped++
		}
	}

	pending, err := s.newQuestions(ctx, questions)
	if err != nil {
		return summary, err
	}
	if len(pending) > 0 {
		if err := s.questions.CreateBatch(ctx, pending); err != nil {
			return summary, fmt.Errorf("seed questions: %w", err)
		}
	}
	summary.QuestionsCreated = len(pending)
	summary.QuestionsSkipped = len(questions) - len(pending)

	s.logger.Info().
		Int("users_created", summary.UsersCreated).
		Int("users_skipped", summary.UsersSkipped).
		Int("questions_created", summary.QuestionsCreated).
		Int("questions_skipped", summary.QuestionsSkipped).
		Msg("seed completed")

	return summary, nil
}

func (s *seedService) seedAccount(ctx context.Context, account SeedAccount) (bool, error) {
	var (
		existing error
		user     = models.User{Name: strings.TrimSpace(account.Name), Role: account.Role}
	)

	switch {
	case account.Role == models.RoleStudent:
		cnic := strings.TrimSpace(account.CNIC)
		if cnic == "" {
			return false, fmt.Errorf("seed student %q: cnic is required", account.Name)
		}
		_, existing = s.users.GetByCNIC(ctx, cnic)
		user.CNIC = &cnic
	case models.IsStaffRole(account.Role):
		username := strings.TrimSpace(account.Username)
		if username == "" {
			return false, fmt.Errorf("seed %s %q: username is required", account.Role, account.Name)
		}
		_, existing = s.users.GetByUsername(ctx, username)
		user.Username = &username
	default:
		return false, fmt.Errorf("seed %q: unknown role %q", account.Name, account.Role)
	}

	if existing == nil {
		return false, nil
	}
	if !repository.IsNotFound(existing) {
		return false, existing
	}

	hashed, err := HashPassword(account.Password)
	if err != nil {
		return false, err
	}
	user.PasswordHash = hashed

	if err := s.users.Create(ctx, &user); err != nil {
		if repository.IsDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("seed %q: %w", account.Name, err)
	}
	return true, nil
}

// newQuestions drops questions whose text already exists in the same
// subject and category.
func (s *seedService) newQuestions(ctx context.Context, questions []models.Question) ([]models.Question, error) {
	known := make(map[string]map[string]struct{})
	pending := make([]models.Question, 0, len(questions))

	for _, question := range questions {
		bucket := question.Subject + "\x00" + question.Category
		texts, ok := known[bucket]
		if !ok {
			existing, err := s.questions.List(ctx, repository.QuestionFilter{Subject: question.Subject, Category: question.Category})
			if err != nil {
				return nil, err
			}
			texts = make(map[string]struct{}, len(existing))
			for _, q := range existing {
				texts[q.Text] = struct{}{}
			}
			known[bucket] = texts
		}

		if _, dup := texts[question.Text]; dup {
			continue
		}
		if question.Difficulty == "" {
			question.Difficulty = models.DifficultyMedium
		}
		texts[question.Text] = struct{}{}
		pending = append(pending, question)
	}

	return pending, nil
}
