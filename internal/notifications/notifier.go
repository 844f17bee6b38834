// Package notifications delivers incident notifications. The current
// implementation logs deliveries instead of sending them; delivery transports
// plug in behind the Notifier interface the incidents engine consumes.
package notifications

import (
	"context"
	"log/slog"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/campusworks/incident-desk/internal/pkg/ctxlog"
)

// LogNotifier implements incidents.Notifier by writing structured log
// entries. Delivery is fire-and-forget by contract: callers ignore errors
// beyond logging, so this implementation never returns one.
type LogNotifier struct{}

// NewLogNotifier creates a new log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyStatusChange logs an incident status transition.
func (n *LogNotifier) NotifyStatusChange(ctx context.Context, incident *domain.Incident, oldStatus, newStatus domain.IncidentStatus) error {
	ctxlog.FromContext(ctx).Info("incident status changed",
		"incident_id", incident.ID,
		"title", incident.Title,
		"from", oldStatus,
		"to", newStatus,
		"reporter_id", incident.ReporterID,
	)
	return nil
}

// NotifyAssignment logs an incident assignment.
func (n *LogNotifier) NotifyAssignment(ctx context.Context, incident *domain.Incident, assignee *domain.User) error {
	ctxlog.FromContext(ctx).Info("incident assigned",
		"incident_id", incident.ID,
		"title", incident.Title,
		"assignee_id", assignee.ID,
		"assignee", assignee.Username,
	)
	return nil
}

// NotifyOverdue logs an overdue incident.
func (n *LogNotifier) NotifyOverdue(ctx context.Context, incident *domain.Incident) error {
	slog.Warn("incident overdue",
		"incident_id", incident.ID,
		"title", incident.Title,
		"priority", incident.PriorityLevel,
		"estimated_resolution_date", incident.EstimatedResolutionDate,
	)
	return nil
}
