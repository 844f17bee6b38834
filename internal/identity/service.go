// Package identity implements user accounts, authentication and role
// management.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusworks/incident-desk/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Repository defines the interface for identity storage.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

// UserFilter holds filter options for listing users.
type UserFilter struct {
	Role            *domain.Role
	IncludeInactive bool
}

// TokenPair holds an access token and its paired refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Authenticator issues and validates tokens.
type Authenticator interface {
	GenerateTokens(ctx context.Context, user *domain.User) (*TokenPair, error)
	ValidateAccessToken(ctx context.Context, token string) (string, domain.Role, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	Type() string
}

// UserCreatedHandler is called after a user registers. Failures are logged
// and do not fail the registration.
type UserCreatedHandler interface {
	OnUserCreated(ctx context.Context, user *domain.User) error
}

// Service implements identity business logic.
type Service struct {
	repo           Repository
	auth           Authenticator
	createdHandler UserCreatedHandler
}

// NewService creates a new identity service. createdHandler may be nil.
func NewService(repo Repository, auth Authenticator, createdHandler UserCreatedHandler) *Service {
	return &Service{
		repo:           repo,
		auth:           auth,
		createdHandler: createdHandler,
	}
}

// RegisterInput holds data for registering a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// LoginInput holds login credentials.
type LoginInput struct {
	Username string
	Password string
}

// Register creates a new user account with the reporter role. Elevated roles
// are granted afterwards by an admin.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if existing, err := s.repo.GetUserByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailExists, input.Email)
	}
	if existing, err := s.repo.GetUserByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUsernameExists, input.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
		FullName: input.FullName,
		Role:     domain.RoleReporter,
		IsActive: true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.createdHandler != nil {
		if err := s.createdHandler.OnUserCreated(ctx, user); err != nil {
			slog.Warn("user created handler failed", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, *TokenPair, error) {
	user, err := s.repo.GetUserByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.auth.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	return user, tokens, nil
}

// RefreshTokens exchanges a valid refresh token for a fresh pair.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.auth.RefreshTokens(ctx, refreshToken)
}

// Logout revokes the given refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.auth.RevokeRefreshToken(ctx, refreshToken)
}

// ValidateToken validates an access token and returns the subject's identity.
// Implements the middleware's token validator.
func (s *Service) ValidateToken(ctx context.Context, token string) (string, domain.Role, error) {
	return s.auth.ValidateAccessToken(ctx, token)
}

// GetUserByID retrieves a user by ID. Also serves as the user directory for
// the incidents engine.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers retrieves users matching the filter.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	return s.repo.ListUsers(ctx, filter)
}

// ListMaintenanceStaff returns active users eligible for incident assignment.
func (s *Service) ListMaintenanceStaff(ctx context.Context) ([]*domain.User, error) {
	role := domain.RoleMaintenance
	staff, err := s.repo.ListUsers(ctx, UserFilter{Role: &role})
	if err != nil {
		return nil, err
	}

	role = domain.RoleAdmin
	admins, err := s.repo.ListUsers(ctx, UserFilter{Role: &role})
	if err != nil {
		return nil, err
	}

	return append(staff, admins...), nil
}

// UpdateUserRole changes a user's role. Existing sessions keep the old role
// until their access token expires.
func (s *Service) UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// DeactivateUser disables an account and revokes all its refresh tokens.
func (s *Service) DeactivateUser(ctx context.Context, userID string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if err := s.repo.DeleteUserRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	return nil
}

// ReactivateUser re-enables a deactivated account.
func (s *Service) ReactivateUser(ctx context.Context, userID string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = true
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}
