package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User
	tokens        map[string]*domain.RefreshToken
	createUserErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:  make(map[string]*domain.User),
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	user.ID = "test-user-id"
	m.users[user.Username] = user
	return nil
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) ListUsers(_ context.Context, filter UserFilter) ([]*domain.User, error) {
	out := make([]*domain.User, 0)
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if !filter.IncludeInactive && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) UpdateUser(_ context.Context, user *domain.User) error {
	for k, u := range m.users {
		if u.ID == user.ID {
			m.users[k] = user
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *mockRepository) SaveRefreshToken(_ context.Context, token *domain.RefreshToken) error {
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockRepository) GetRefreshToken(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	if t, ok := m.tokens[tokenHash]; ok {
		return t, nil
	}
	return nil, ErrInvalidToken
}

func (m *mockRepository) DeleteRefreshToken(_ context.Context, tokenHash string) error {
	delete(m.tokens, tokenHash)
	return nil
}

func (m *mockRepository) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	for k, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, k)
		}
	}
	return nil
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct{}

func (m *mockAuthenticator) GenerateTokens(_ context.Context, _ *domain.User) (*TokenPair, error) {
	return &TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *mockAuthenticator) ValidateAccessToken(_ context.Context, _ string) (string, domain.Role, error) {
	return "", "", nil
}

func (m *mockAuthenticator) RefreshTokens(_ context.Context, _ string) (*TokenPair, error) {
	return &TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *mockAuthenticator) RevokeRefreshToken(_ context.Context, _ string) error {
	return nil
}

func (m *mockAuthenticator) Type() string {
	return "mock"
}

// mockUserCreatedHandler implements UserCreatedHandler for testing.
type mockUserCreatedHandler struct {
	called       bool
	receivedUser *domain.User
	err          error
}

func (m *mockUserCreatedHandler) OnUserCreated(_ context.Context, user *domain.User) error {
	m.called = true
	m.receivedUser = user
	return m.err
}

func TestRegister(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	// Act
	user, err := service.Register(context.Background(), RegisterInput{
		Username: "dave",
		Email:    "dave@example.edu",
		Password: "password123",
		FullName: "Dave Lister",
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleReporter, user.Role)
	assert.True(t, user.IsActive)

	// Password is stored hashed, never verbatim.
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
}

func TestRegister_CallsUserCreatedHandler(t *testing.T) {
	repo := newMockRepository()
	handler := &mockUserCreatedHandler{}
	service := NewService(repo, &mockAuthenticator{}, handler)

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "dave",
		Email:    "dave@example.edu",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.True(t, handler.called, "handler should be called")
	assert.Equal(t, user.ID, handler.receivedUser.ID)
}

func TestRegister_ContinuesIfHandlerFails(t *testing.T) {
	repo := newMockRepository()
	handler := &mockUserCreatedHandler{err: errors.New("handler error")}
	service := NewService(repo, &mockAuthenticator{}, handler)

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "dave",
		Email:    "dave@example.edu",
		Password: "password123",
	})

	// Registration succeeds despite handler error
	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.True(t, handler.called, "handler should still be called")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	repo.users["existing"] = &domain.User{ID: "u1", Username: "existing", Email: "taken@example.edu"}
	service := NewService(repo, &mockAuthenticator{}, nil)

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "newuser",
		Email:    "taken@example.edu",
		Password: "password123",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newMockRepository()
	repo.users["dave"] = &domain.User{ID: "u1", Username: "dave", Email: "dave@example.edu"}
	service := NewService(repo, &mockAuthenticator{}, nil)

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "dave",
		Email:    "other@example.edu",
		Password: "password123",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegister_CreateUserFails(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("database error")
	handler := &mockUserCreatedHandler{}
	service := NewService(repo, &mockAuthenticator{}, handler)

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "dave",
		Email:    "dave@example.edu",
		Password: "password123",
	})

	assert.Nil(t, user)
	assert.Error(t, err)
	assert.False(t, handler.called, "handler should not be called if user creation fails")
}

func registerTestUser(t *testing.T, service *Service, username, password string) *domain.User {
	t.Helper()
	user, err := service.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.edu",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestLogin(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)
	registerTestUser(t, service, "dave", "password123")

	user, tokens, err := service.Login(context.Background(), LoginInput{
		Username: "dave",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "dave", user.Username)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)
	registerTestUser(t, service, "dave", "password123")

	_, _, err := service.Login(context.Background(), LoginInput{
		Username: "dave",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	// Unknown users get the same error as wrong passwords.
	_, _, err := service.Login(context.Background(), LoginInput{
		Username: "ghost",
		Password: "password123",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DeactivatedUser(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)
	user := registerTestUser(t, service, "dave", "password123")

	require.NoError(t, service.DeactivateUser(context.Background(), user.ID))

	_, _, err := service.Login(context.Background(), LoginInput{
		Username: "dave",
		Password: "password123",
	})

	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestUpdateUserRole(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)
	user := registerTestUser(t, service, "bob", "password123")

	updated, err := service.UpdateUserRole(context.Background(), user.ID, domain.RoleMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMaintenance, updated.Role)

	_, err = service.UpdateUserRole(context.Background(), user.ID, domain.Role("SUPERUSER"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.UpdateUserRole(context.Background(), "missing", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeactivateUser_RevokesTokens(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)
	user := registerTestUser(t, service, "dave", "password123")

	repo.tokens["h1"] = &domain.RefreshToken{UserID: user.ID, TokenHash: "h1"}
	repo.tokens["h2"] = &domain.RefreshToken{UserID: "someone-else", TokenHash: "h2"}

	require.NoError(t, service.DeactivateUser(context.Background(), user.ID))

	assert.NotContains(t, repo.tokens, "h1")
	assert.Contains(t, repo.tokens, "h2")
}

func TestListMaintenanceStaff(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	repo.users["bob"] = &domain.User{ID: "u1", Username: "bob", Role: domain.RoleMaintenance, IsActive: true}
	repo.users["alice"] = &domain.User{ID: "u2", Username: "alice", Role: domain.RoleAdmin, IsActive: true}
	repo.users["dave"] = &domain.User{ID: "u3", Username: "dave", Role: domain.RoleReporter, IsActive: true}

	staff, err := service.ListMaintenanceStaff(context.Background())
	require.NoError(t, err)

	// Admins are maintenance-capable and appear in the assignment pool.
	assert.Len(t, staff, 2)
}
