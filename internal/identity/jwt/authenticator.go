// Package jwt provides a JWT-based implementation of the identity
// authenticator.
package jwt

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/campusworks/incident-desk/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// Config contains JWT authenticator configuration.
type Config struct {
	SecretKey            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// Authenticator implements identity.Authenticator using signed JWTs for
// access tokens and opaque stored tokens for refresh.
type Authenticator struct {
	config Config
	repo   identity.Repository
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(config Config, repo identity.Repository) *Authenticator {
	return &Authenticator{config: config, repo: repo}
}

// Type returns the authenticator type identifier.
func (a *Authenticator) Type() string {
	return "jwt"
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateTokens issues an access/refresh token pair for the user.
func (a *Authenticator) GenerateTokens(ctx context.Context, user *domain.User) (*identity.TokenPair, error) {
	now := time.Now()

	claims := accessClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.AccessTokenDuration)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	// Only the hash is persisted; the raw token exists client-side only.
	if err := a.repo.SaveRefreshToken(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(a.config.RefreshTokenDuration),
	}); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &identity.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken verifies the token signature and expiry and returns the
// subject's id and role.
func (a *Authenticator) ValidateAccessToken(_ context.Context, token string) (string, domain.Role, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return "", "", identity.ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if !role.IsValid() {
		return "", "", identity.ErrInvalidToken
	}

	return claims.Subject, role, nil
}

// RefreshTokens rotates a valid refresh token into a fresh pair. The old
// token is consumed.
func (a *Authenticator) RefreshTokens(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	stored, err := a.repo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, identity.ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = a.repo.DeleteRefreshToken(ctx, stored.TokenHash)
		return nil, identity.ErrInvalidToken
	}

	user, err := a.repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, identity.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, identity.ErrInvalidToken
	}

	if err := a.repo.DeleteRefreshToken(ctx, stored.TokenHash); err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	return a.GenerateTokens(ctx, user)
}

// RevokeRefreshToken deletes the stored refresh token.
func (a *Authenticator) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return a.repo.DeleteRefreshToken(ctx, hashToken(refreshToken))
}

func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
