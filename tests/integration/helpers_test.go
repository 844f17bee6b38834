//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/campusworks/incident-desk/internal/testutil"
	"github.com/stretchr/testify/require"
)

// createTestCategory creates a category via the admin API and returns its ID.
func createTestCategory(t *testing.T, admin *testutil.Client, name string, priority int) string {
	t.Helper()

	resp, err := admin.POST("/api/v1/categories", map[string]interface{}{
		"name":           name + "-" + testutil.RandomSuffix(),
		"priority_level": priority,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// createTestIncident reports an incident as the given client and returns its ID.
func createTestIncident(t *testing.T, client *testutil.Client, title string, opts ...incidentOption) string {
	t.Helper()

	payload := map[string]interface{}{
		"title":       title,
		"description": "integration test incident",
	}
	for _, opt := range opts {
		opt(payload)
	}

	resp, err := client.POST("/api/v1/incidents", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

type incidentOption func(map[string]interface{})

func withCategory(categoryID string) incidentOption {
	return func(m map[string]interface{}) {
		m["category_id"] = categoryID
	}
}

func withUrgent() incidentOption {
	return func(m map[string]interface{}) {
		m["is_urgent"] = true
	}
}

func withConfidential() incidentOption {
	return func(m map[string]interface{}) {
		m["is_confidential"] = true
	}
}

func withPriority(level int) incidentOption {
	return func(m map[string]interface{}) {
		m["priority_level"] = level
	}
}

// getIncident fetches an incident and decodes its data payload.
func getIncident(t *testing.T, client *testutil.Client, id string) map[string]interface{} {
	t.Helper()

	resp, err := client.GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data map[string]interface{} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// userID resolves the id of the account the client is logged in as.
func userID(t *testing.T, client *testutil.Client) string {
	t.Helper()

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// transition moves an incident to a new status as the given client.
func transition(t *testing.T, client *testutil.Client, incidentID, status string) *http.Response {
	t.Helper()

	resp, err := client.PUT("/api/v1/incidents/"+incidentID+"/status", map[string]string{
		"status": status,
		"notes":  "moved by test",
	})
	require.NoError(t, err)
	return resp
}
