//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/campusworks/incident-desk/internal/pkg/httputil"
	"github.com/campusworks/incident-desk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_Register_Login_Flow(t *testing.T) {
	client := newTestClient(t)
	username := testutil.RandomUsername("student")
	password := "password123"

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    testutil.RandomEmail(),
		"password": password,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var registerResult struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &registerResult)
	assert.Equal(t, username, registerResult.Data.Username)
	assert.Equal(t, "REPORTER", registerResult.Data.Role)
	assert.NotEmpty(t, registerResult.Data.ID)

	resp, err = client.POST("/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Check that cookies are set
	cookies := resp.Cookies()
	var hasAccessToken, hasRefreshToken, hasCSRFToken bool
	for _, c := range cookies {
		switch c.Name {
		case httputil.AccessTokenCookie:
			hasAccessToken = true
			assert.True(t, c.HttpOnly)
		case httputil.RefreshTokenCookie:
			hasRefreshToken = true
			assert.True(t, c.HttpOnly)
		case httputil.CSRFTokenCookie:
			hasCSRFToken = true
			assert.False(t, c.HttpOnly) // CSRF token must be readable by JS
		}
	}
	assert.True(t, hasAccessToken, "access_token cookie should be set")
	assert.True(t, hasRefreshToken, "refresh_token cookie should be set")
	assert.True(t, hasCSRFToken, "csrf_token cookie should be set")

	var loginResult struct {
		Data struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &loginResult)
	assert.Equal(t, username, loginResult.Data.User.Username)
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	client := newTestClient(t)
	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"username": "nobody",
		"password": "wrongpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Register_DuplicateUsername(t *testing.T) {
	client := newTestClient(t)
	username := testutil.RandomUsername("dup")

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    testutil.RandomEmail(),
		"password": "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.POST("/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    testutil.RandomEmail(),
		"password": "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Refresh_RotatesToken(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsReporter(t)

	resp, err := client.POST("/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// The session must still work after rotation.
	resp, err = client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Logout_ClearsSession(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsReporter(t)

	resp, err := client.POST("/api/v1/auth/logout", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.WithoutValidation().GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_ProtectedEndpoint_RequiresAuth(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.GET("/api/v1/incidents")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_RoleEscalation_Forbidden(t *testing.T) {
	client := newTestClientWithoutValidation()
	client.LoginAsReporter(t)

	// Maintenance endpoint
	resp, err := client.GET("/api/v1/incidents/pending")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Admin endpoint
	resp, err = client.PUT("/api/v1/incidents/bulk/assign", map[string]interface{}{
		"incident_ids": []string{"00000000-0000-0000-0000-000000000000"},
		"assignee_id":  "00000000-0000-0000-0000-000000000000",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
