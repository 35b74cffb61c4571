package accounts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"arcade/backend/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAvatar      = errors.New("unknown avatar")
)

// NormalizeEmail is the canonical form of an email used as identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Service is the account collaborator of the match engine.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ResolveUser returns the public profile for email. ok is false when no
// account exists.
func (s *Service) ResolveUser(ctx context.Context, email string) (user models.User, ok bool, err error) {
	account, err := s.repo.Get(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return account.User, true, nil
}

type Registration struct {
	Email    string
	Username string
	FullName string
	Avatar   string
	Password string
}

func (s *Service) Register(ctx context.Context, reg Registration) (models.User, error) {
	email := NormalizeEmail(reg.Email)
	avatar := reg.Avatar
	if avatar == "" {
		avatar = models.DefaultAvatar
	}
	if !slices.Contains(models.Avatars, avatar) {
		return models.User{}, ErrInvalidAvatar
	}

	exists, err := s.repo.Has(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		User: models.User{
			Email:    email,
			Username: reg.Username,
			FullName: reg.FullName,
			Avatar:   avatar,
		},
		PasswordHash: string(hash),
	}
	if err := s.repo.Set(ctx, account); err != nil {
		return models.User{}, err
	}

	s.logger.Info("account registered", zap.String("email", email))
	return account.User, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	account, err := s.repo.Get(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return account.User, nil
}

// DemoPassword is the password of the seeded demo accounts.
const DemoPassword = "password123"

// SeedDemoUsers creates the two demo players unless they already exist.
func (s *Service) SeedDemoUsers(ctx context.Context) error {
	demo := []Registration{
		{Email: "player@one.com", Username: "PlayerOne", FullName: "Player One"},
		{Email: "player@two.com", Username: "PlayerTwo", FullName: "Player Two"},
	}
	for _, reg := range demo {
		reg.Password = DemoPassword
		if _, err := s.Register(ctx, reg); err != nil && !errors.Is(err, ErrEmailTaken) {
			return fmt.Errorf("seed %s: %w", reg.Email, err)
		}
	}
	return nil
}
