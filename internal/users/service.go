package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"retail360-backend/internal/shared/auth"
)

var (
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service contains registration and authentication logic.
type Service struct {
	Repo   Repo
	Signer *auth.Signer
}

// NewService constructs a Service.
func NewService(repo Repo, signer *auth.Signer) *Service {
	return &Service{Repo: repo, Signer: signer}
}

// Register creates an account with a bcrypt-hashed password and issues a token.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return "", User{}, errors.New("name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return "", User{}, ErrAccountExists
		}
		return "", User{}, err
	}

	token, err := s.Signer.Issue(user.ID)
	if err != nil {
		return "", User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// Login verifies credentials and issues a fresh token. Prior tokens stay valid.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := s.Signer.Issue(user.ID)
	if err != nil {
		return "", User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password. Outstanding tokens are not invalidated; they stay valid until
// expiry (there is no revocation list).
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return errors.New("new password is required")
	}

	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.UpdatePassword(ctx, userID, string(hash))
}

// GetByID loads an account for the profile projection.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// normalizeEmail applies the same normalization at creation and lookup so
// case variants cannot produce duplicate accounts.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
