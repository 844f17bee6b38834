package incidents

import (
	"testing"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCanView(t *testing.T) {
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	worker := &domain.User{ID: "worker-1", Role: domain.RoleMaintenance}
	reporter := &domain.User{ID: "reporter-1", Role: domain.RoleReporter}

	tests := []struct {
		name     string
		incident *domain.Incident
		user     *domain.User
		want     bool
	}{
		{
			name:     "admin sees everything",
			incident: &domain.Incident{ReporterID: "someone-else", Status: domain.StatusClosed},
			user:     admin,
			want:     true,
		},
		{
			name:     "maintenance sees unresolved incidents",
			incident: &domain.Incident{ReporterID: "someone-else", Status: domain.StatusReported},
			user:     worker,
			want:     true,
		},
		{
			name:     "maintenance sees resolved incident assigned to them",
			incident: &domain.Incident{ReporterID: "someone-else", AssigneeID: strPtr("worker-1"), Status: domain.StatusResolved},
			user:     worker,
			want:     true,
		},
		{
			name:     "maintenance does not see resolved incident assigned elsewhere",
			incident: &domain.Incident{ReporterID: "someone-else", AssigneeID: strPtr("worker-2"), Status: domain.StatusClosed},
			user:     worker,
			want:     false,
		},
		{
			name:     "reporter sees own incident",
			incident: &domain.Incident{ReporterID: "reporter-1", Status: domain.StatusInProgress},
			user:     reporter,
			want:     true,
		},
		{
			name:     "reporter does not see others' incidents",
			incident: &domain.Incident{ReporterID: "reporter-2", Status: domain.StatusReported},
			user:     reporter,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanView(tt.incident, tt.user))
		})
	}
}

func TestCanUpdate(t *testing.T) {
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	worker := &domain.User{ID: "worker-1", Role: domain.RoleMaintenance}
	reporter := &domain.User{ID: "reporter-1", Role: domain.RoleReporter}

	tests := []struct {
		name     string
		incident *domain.Incident
		user     *domain.User
		want     bool
	}{
		{
			name:     "admin updates anything",
			incident: &domain.Incident{ReporterID: "x", AssigneeID: strPtr("worker-2"), Status: domain.StatusClosed},
			user:     admin,
			want:     true,
		},
		{
			name:     "maintenance updates own assignment",
			incident: &domain.Incident{AssigneeID: strPtr("worker-1"), Status: domain.StatusInProgress},
			user:     worker,
			want:     true,
		},
		{
			name:     "maintenance claims unassigned incident",
			incident: &domain.Incident{Status: domain.StatusReported},
			user:     worker,
			want:     true,
		},
		{
			name:     "maintenance cannot update another worker's incident",
			incident: &domain.Incident{AssigneeID: strPtr("worker-2"), Status: domain.StatusInProgress},
			user:     worker,
			want:     false,
		},
		{
			name:     "reporter edits own incident while reported",
			incident: &domain.Incident{ReporterID: "reporter-1", Status: domain.StatusReported},
			user:     reporter,
			want:     true,
		},
		{
			name:     "reporter loses edit rights after triage",
			incident: &domain.Incident{ReporterID: "reporter-1", Status: domain.StatusUnderReview},
			user:     reporter,
			want:     false,
		},
		{
			name:     "reporter cannot edit others' incidents",
			incident: &domain.Incident{ReporterID: "reporter-2", Status: domain.StatusReported},
			user:     reporter,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanUpdate(tt.incident, tt.user))
		})
	}
}

func TestCanDelete_AdminOnly(t *testing.T) {
	incident := &domain.Incident{ReporterID: "reporter-1", Status: domain.StatusReported}

	assert.True(t, CanDelete(incident, &domain.User{ID: "admin-1", Role: domain.RoleAdmin}))
	assert.False(t, CanDelete(incident, &domain.User{ID: "worker-1", Role: domain.RoleMaintenance}))
	assert.False(t, CanDelete(incident, &domain.User{ID: "reporter-1", Role: domain.RoleReporter}))
}

func TestIsAssignedWorker_NoRoleOverride(t *testing.T) {
	incident := &domain.Incident{AssigneeID: strPtr("worker-1"), Status: domain.StatusAssigned}

	assert.True(t, IsAssignedWorker(incident, &domain.User{ID: "worker-1", Role: domain.RoleMaintenance}))

	// Even admins are rejected when they are not the literal assignee.
	assert.False(t, IsAssignedWorker(incident, &domain.User{ID: "admin-1", Role: domain.RoleAdmin}))
	assert.False(t, IsAssignedWorker(incident, &domain.User{ID: "worker-2", Role: domain.RoleMaintenance}))

	unassigned := &domain.Incident{Status: domain.StatusReported}
	assert.False(t, IsAssignedWorker(unassigned, &domain.User{ID: "worker-1", Role: domain.RoleMaintenance}))
}
