package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kintree/internal/models"
	"kintree/internal/repository"
	"kintree/internal/security"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, tokenDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		tokenDuration: tokenDuration,
	}
}

// Register creates a new user account
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("invalid email address")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and issues a bearer token
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := security.GenerateToken(s.jwtSecret, user.ID, s.tokenDuration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}

// ValidateToken checks a bearer token and returns the authenticated user
func (s *AuthService) ValidateToken(token string) (*models.User, error) {
	userID, err := security.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// OAuthLogin authenticates or provisions a user from a verified OAuth
// identity and issues a bearer token. Accounts are matched by email; a
// provisioned account gets an unguessable password.
func (s *AuthService) OAuthLogin(email, name string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil, errors.New("missing oauth email")
	}

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if user == nil {
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		randomHash, err := security.HashPassword(uuid.NewString())
		if err != nil {
			return "", nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
		}
		user, err = s.userRepo.CreateUser(email, randomHash, name)
		if err != nil {
			return "", nil, fmt.Errorf("failed to create oauth user: %w", err)
		}
	}

	token, err := security.GenerateToken(s.jwtSecret, user.ID, s.tokenDuration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}

// GetUser retrieves a user by id
func (s *AuthService) GetUser(userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
