package incidents

import (
	"context"
	"log/slog"

	"github.com/campusworks/incident-desk/internal/domain"
)

// BulkFailure describes a single failed item within a bulk operation.
type BulkFailure struct {
	IncidentID string `json:"incident_id"`
	Reason     string `json:"reason"`
}

// BulkResult collects per-item outcomes of a bulk operation. Partial failure
// is expected and non-fatal to the batch.
type BulkResult struct {
	Updated  []*domain.Incident `json:"updated"`
	Failures []BulkFailure      `json:"failures"`
}

// BulkUpdateStatus applies UpdateStatus to each id independently, collecting
// successes and reporting per-item failures.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, newStatus domain.IncidentStatus, updater *domain.User, notes string) *BulkResult {
	result := &BulkResult{
		Updated:  make([]*domain.Incident, 0, len(ids)),
		Failures: make([]BulkFailure, 0),
	}

	for _, id := range ids {
		incident, err := s.UpdateStatus(ctx, id, newStatus, updater, notes)
		if err != nil {
			slog.Warn("bulk status update failed for incident", "incident_id", id, "error", err)
			result.Failures = append(result.Failures, BulkFailure{IncidentID: id, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, incident)
	}

	return result
}

// BulkAssign applies AssignIncident to each id independently, collecting
// successes and reporting per-item failures.
func (s *Service) BulkAssign(ctx context.Context, ids []string, assigneeID string, assigner *domain.User) *BulkResult {
	result := &BulkResult{
		Updated:  make([]*domain.Incident, 0, len(ids)),
		Failures: make([]BulkFailure, 0),
	}

	for _, id := range ids {
		incident, err := s.AssignIncident(ctx, id, assigneeID, assigner)
		if err != nil {
			slog.Warn("bulk assign failed for incident", "incident_id", id, "error", err)
			result.Failures = append(result.Failures, BulkFailure{IncidentID: id, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, incident)
	}

	return result
}
