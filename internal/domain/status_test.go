package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowed is the reference transition table the taxonomy must match.
var allowed = map[IncidentStatus][]IncidentStatus{
	StatusReported:    {StatusUnderReview, StatusCancelled},
	StatusUnderReview: {StatusAssigned, StatusCancelled},
	StatusAssigned:    {StatusInProgress, StatusOnHold},
	StatusInProgress:  {StatusOnHold, StatusResolved},
	StatusOnHold:      {StatusInProgress, StatusCancelled},
	StatusResolved:    {StatusClosed},
	StatusClosed:      {},
	StatusCancelled:   {},
}

func contains(statuses []IncidentStatus, s IncidentStatus) bool {
	for _, c := range statuses {
		if c == s {
			return true
		}
	}
	return false
}

func TestCanTransitionTo_FullTable(t *testing.T) {
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := contains(allowed[from], to)
			assert.Equal(t, want, from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses_HaveNoTransitions(t *testing.T) {
	for _, s := range []IncidentStatus{StatusClosed, StatusCancelled} {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		assert.Empty(t, s.AvailableTransitions())
		for _, to := range AllStatuses() {
			assert.False(t, s.CanTransitionTo(to), "%s must not transition to %s", s, to)
		}
	}
}

func TestAvailableTransitions_MatchesTable(t *testing.T) {
	for _, from := range AllStatuses() {
		assert.ElementsMatch(t, allowed[from], from.AvailableTransitions(), "from %s", from)
	}
}

func TestAvailableTransitions_ReturnsCopy(t *testing.T) {
	targets := StatusReported.AvailableTransitions()
	require.NotEmpty(t, targets)
	targets[0] = StatusClosed

	assert.Equal(t, StatusUnderReview, StatusReported.AvailableTransitions()[0])
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status   IncidentStatus
		active   bool
		resolved bool
	}{
		{StatusReported, true, false},
		{StatusUnderReview, true, false},
		{StatusAssigned, true, false},
		{StatusInProgress, true, false},
		{StatusOnHold, true, false},
		{StatusResolved, false, true},
		{StatusClosed, false, true},
		{StatusCancelled, false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.active, tt.status.IsActive(), "IsActive(%s)", tt.status)
		assert.Equal(t, tt.resolved, tt.status.IsResolved(), "IsResolved(%s)", tt.status)
	}
}

func TestStatusMetadata(t *testing.T) {
	assert.Equal(t, "Under Review", StatusUnderReview.DisplayName())
	assert.Equal(t, "Work has begun", StatusInProgress.Description())

	for i, s := range AllStatuses() {
		assert.Equal(t, i+1, s.Order(), "order of %s", s)
		assert.True(t, s.IsValid())
	}
	assert.False(t, IncidentStatus("ARCHIVED").IsValid())
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusReported, InitialStatus())
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.HasPermission(RoleMaintenance))
	assert.True(t, RoleAdmin.IsMaintenance())
	assert.True(t, RoleMaintenance.HasPermission(RoleReporter))
	assert.False(t, RoleMaintenance.IsAdmin())
	assert.False(t, RoleReporter.IsMaintenance())
	assert.True(t, RoleReporter.HasPermission(RoleReporter))
}

func TestIncidentIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		incident Incident
		want     bool
	}{
		{"no estimate", Incident{Status: StatusInProgress}, false},
		{"estimate in future", Incident{Status: StatusInProgress, EstimatedResolutionDate: &future}, false},
		{"estimate in past", Incident{Status: StatusInProgress, EstimatedResolutionDate: &past}, true},
		{"resolved not overdue", Incident{Status: StatusResolved, EstimatedResolutionDate: &past}, false},
		{"closed not overdue", Incident{Status: StatusClosed, EstimatedResolutionDate: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.incident.IsOverdue(now))
		})
	}
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "Low", PriorityLabel(1))
	assert.Equal(t, "Medium", PriorityLabel(2))
	assert.Equal(t, "High", PriorityLabel(3))
	assert.Equal(t, "Critical", PriorityLabel(4))
	assert.Equal(t, "Unknown", PriorityLabel(0))
}
