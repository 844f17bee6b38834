//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/campusworks/incident-desk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncidents_ReporterSeesOnlyOwn(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)
	worker := newTestClient(t)
	worker.LoginAsWorker(t)

	// Incident reported by someone else.
	otherID := createTestIncident(t, worker, "Reported by staff")
	ownID := createTestIncident(t, reporter, "Reported by reporter")

	resp, err := reporter.GET("/api/v1/incidents?limit=200")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)

	ids := make(map[string]bool)
	for _, i := range list.Data {
		ids[i.ID] = true
	}
	assert.True(t, ids[ownID])
	assert.False(t, ids[otherID])

	// Direct access to a foreign incident is rejected as well.
	raw := newTestClientWithoutValidation()
	raw.LoginAsReporter(t)
	resp, err = raw.GET("/api/v1/incidents/" + otherID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestIncidents_ConfidentialHiddenFromMaintenance(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)

	incidentID := createTestIncident(t, reporter, "Sensitive matter", withConfidential())

	raw := newTestClientWithoutValidation()
	raw.LoginAsWorker(t)
	resp, err := raw.GET("/api/v1/incidents/" + incidentID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Admins see everything.
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)
	assert.Equal(t, "REPORTED", getIncident(t, admin, incidentID)["status"])
}

func TestIncidents_PartialUpdate(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)

	incidentID := createTestIncident(t, reporter, "Typo in title")

	resp, err := reporter.PATCH("/api/v1/incidents/"+incidentID, map[string]interface{}{
		"title": "Corrected title",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	incident := getIncident(t, reporter, incidentID)
	assert.Equal(t, "Corrected title", incident["title"])
	assert.Equal(t, "integration test incident", incident["description"])
}

func TestIncidents_Delete_AdminOnlyReportedOnly(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)
	worker := newTestClient(t)
	worker.LoginAsWorker(t)
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	incidentID := createTestIncident(t, reporter, "To be deleted")

	resp, err := admin.DELETE("/api/v1/incidents/" + incidentID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Once triage has begun the incident may no longer be deleted.
	secondID := createTestIncident(t, reporter, "Already in review")
	resp = transition(t, worker, secondID, "UNDER_REVIEW")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	raw := newTestClientWithoutValidation()
	raw.LoginAsAdmin(t)
	resp, err = raw.DELETE("/api/v1/incidents/" + secondID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestIncidents_Search(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)

	marker := testutil.RandomSuffix()
	createTestIncident(t, reporter, "Graffiti wall "+marker)

	resp, err := reporter.GET("/api/v1/incidents/search?q=" + marker)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list.Data, 1)
	assert.Contains(t, list.Data[0].Title, marker)
}

func TestIncidents_AppendLog(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)

	incidentID := createTestIncident(t, reporter, "Noise complaint")

	resp, err := reporter.POST("/api/v1/incidents/"+incidentID+"/logs", map[string]interface{}{
		"log_type": "NOTE",
		"action":   "Additional details",
		"notes":    "Happens every night after 11pm",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = reporter.GET("/api/v1/incidents/" + incidentID + "/logs")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs struct {
		Data []struct {
			LogType string `json:"log_type"`
			Action  string `json:"action"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &logs)

	// Incident creation writes the first entry.
	require.GreaterOrEqual(t, len(logs.Data), 2)
	last := logs.Data[len(logs.Data)-1]
	assert.Equal(t, "NOTE", last.LogType)
	assert.Equal(t, "Additional details", last.Action)
}

func TestIncidents_AvailableStatuses(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)

	incidentID := createTestIncident(t, reporter, "Status options")

	resp, err := reporter.GET("/api/v1/incidents/" + incidentID + "/available-statuses")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []string `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.ElementsMatch(t, []string{"UNDER_REVIEW", "CANCELLED"}, result.Data)
}

func TestIncidents_BulkAssign_PartialFailure(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)
	worker := newTestClient(t)
	worker.LoginAsWorker(t)
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	workerID := userID(t, worker)

	// One assignable incident and one already terminal.
	okID := createTestIncident(t, reporter, "Bulk ok")
	resp := transition(t, worker, okID, "UNDER_REVIEW")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cancelledID := createTestIncident(t, reporter, "Bulk cancelled")
	resp = transition(t, worker, cancelledID, "CANCELLED")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := admin.PUT("/api/v1/incidents/bulk/assign", map[string]interface{}{
		"incident_ids": []string{okID, cancelledID},
		"assignee_id":  workerID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Updated []struct {
				ID string `json:"id"`
			} `json:"updated"`
			Failures []struct {
				IncidentID string `json:"incident_id"`
			} `json:"failures"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data.Updated, 1)
	assert.Equal(t, okID, result.Data.Updated[0].ID)
	require.Len(t, result.Data.Failures, 1)
	assert.Equal(t, cancelledID, result.Data.Failures[0].IncidentID)
}

func TestIncidents_DashboardStatistics(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)
	worker := newTestClient(t)
	worker.LoginAsWorker(t)

	createTestIncident(t, reporter, "Stats sample", withUrgent())

	resp, err := worker.GET("/api/v1/dashboard/statistics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		Data struct {
			TotalIncidents  int `json:"total_incidents"`
			UrgentIncidents int `json:"urgent_incidents"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &stats)
	assert.GreaterOrEqual(t, stats.Data.TotalIncidents, 1)
	assert.GreaterOrEqual(t, stats.Data.UrgentIncidents, 1)
}

func TestIncidents_ExportCSV(t *testing.T) {
	reporter := newTestClient(t)
	reporter.LoginAsReporter(t)
	worker := newTestClient(t)
	worker.LoginAsWorker(t)

	incidentID := createTestIncident(t, reporter, "Exported incident")

	resp, err := worker.POST("/api/v1/incidents/export/csv", map[string]interface{}{
		"incident_ids": []string{incidentID},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	body := testutil.ReadBody(t, resp)
	assert.Contains(t, body, "Exported incident")
}
