package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies credentials and provisions accounts.
type AuthService struct {
	userRepo repository.UserRepository
	cost     int
	// compared against when the username is unknown so both failure paths
	// spend the same bcrypt time
	dummyHash []byte
}

func NewAuthService(userRepo repository.UserRepository, cost int) (*AuthService, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword(secret, cost)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		userRepo:  userRepo,
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

type LoginInput struct {
	Username string
	Password string
}

type ProvisionInput struct {
	Username string
	Password string
}

// Login returns the identity for a matching username and password. Unknown
// users and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.Identity, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(input.Password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return &domain.Identity{UserID: user.ID, Username: user.Username}, nil
}

// Provision creates a user with a freshly hashed password. It backs the seed
// command; the API itself has no registration route.
func (s *AuthService) Provision(ctx context.Context, input ProvisionInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domain.ErrUsernameEmpty
	}
	if input.Password == "" {
		return nil, domain.ErrPasswordEmpty
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}
