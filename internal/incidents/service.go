// Package incidents implements the incident lifecycle engine: status
// transitions gated by the authorization policy, with an append-only audit
// trail written as a side effect of every mutation.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/campusworks/incident-desk/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Service implements incident business logic.
type Service struct {
	repo       Repository
	users      UserDirectory
	categories CategoryDirectory
	notifier   Notifier
}

// NewService creates a new incident service. notifier may be nil, in which
// case no notifications are sent.
func NewService(repo Repository, users UserDirectory, categories CategoryDirectory, notifier Notifier) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		categories: categories,
		notifier:   notifier,
	}
}

// CreateIncidentInput holds data for reporting a new incident.
type CreateIncidentInput struct {
	Title                   string
	Description             string
	LocationDetails         string
	CategoryID              string
	PriorityLevel           int
	IsUrgent                bool
	IsConfidential          bool
	EstimatedResolutionDate *time.Time
}

// UpdateIncidentInput holds a partial update of incident details. Nil fields
// are left unchanged.
type UpdateIncidentInput struct {
	Title                   *string
	Description             *string
	LocationDetails         *string
	CategoryID              *string
	PriorityLevel           *int
	IsUrgent                *bool
	IsConfidential          *bool
	EstimatedResolutionDate *time.Time
}

// AppendLogInput holds data for a resolution log entry. The numeric fields
// are only meaningful for their sub-kind.
type AppendLogInput struct {
	LogType          domain.LogType
	Action           string
	Notes            string
	TimeSpentMinutes *int
	MaterialsUsed    *string
	CostIncurred     *float64
}

// CreateIncident reports a new incident in REPORTED status and appends the
// initial audit entry.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput, reporter *domain.User) (*domain.Incident, error) {
	category, err := s.categories.GetCategoryByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, input.CategoryID)
	}

	priority := input.PriorityLevel
	if priority == 0 {
		priority = category.PriorityLevel
	}
	if priority == 0 {
		priority = 1
	}

	incident := &domain.Incident{
		Title:                   input.Title,
		Description:             input.Description,
		LocationDetails:         input.LocationDetails,
		CategoryID:              category.ID,
		ReporterID:              reporter.ID,
		Status:                  domain.InitialStatus(),
		PriorityLevel:           priority,
		IsUrgent:                input.IsUrgent,
		IsConfidential:          input.IsConfidential,
		EstimatedResolutionDate: input.EstimatedResolutionDate,
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	entry := &domain.ResolutionLog{
		IncidentID:    incident.ID,
		Action:        "Incident reported",
		Notes:         "Initial incident report created",
		PerformedByID: reporter.ID,
		LogType:       domain.LogTypeNote,
	}
	if err := s.repo.CreateResolutionLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("create initial log: %w", err)
	}

	return incident, nil
}

// GetIncident retrieves an incident, enforcing the view policy.
func (s *Service) GetIncident(ctx context.Context, id string, user *domain.User) (*domain.Incident, error) {
	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(incident, user) {
		return nil, ErrForbidden
	}
	return incident, nil
}

// UpdateIncident applies a partial update of incident details and appends an
// audit entry.
func (s *Service) UpdateIncident(ctx context.Context, id string, input UpdateIncidentInput, updater *domain.User) (*domain.Incident, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	incident, err := s.repo.GetIncidentForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !CanUpdate(incident, updater) {
		return nil, ErrForbidden
	}

	if input.CategoryID != nil {
		if _, err := s.categories.GetCategoryByID(ctx, *input.CategoryID); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, *input.CategoryID)
		}
		incident.CategoryID = *input.CategoryID
	}
	if input.Title != nil {
		incident.Title = *input.Title
	}
	if input.Description != nil {
		incident.Description = *input.Description
	}
	if input.LocationDetails != nil {
		incident.LocationDetails = *input.LocationDetails
	}
	if input.PriorityLevel != nil {
		incident.PriorityLevel = *input.PriorityLevel
	}
	if input.IsUrgent != nil {
		incident.IsUrgent = *input.IsUrgent
	}
	if input.IsConfidential != nil {
		incident.IsConfidential = *input.IsConfidential
	}
	if input.EstimatedResolutionDate != nil {
		incident.EstimatedResolutionDate = input.EstimatedResolutionDate
	}

	if err := s.repo.UpdateIncidentTx(ctx, tx, incident); err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}

	entry := &domain.ResolutionLog{
		IncidentID:    incident.ID,
		Action:        "Incident updated",
		Notes:         fmt.Sprintf("Incident details modified by %s", updater.Username),
		PerformedByID: updater.ID,
		LogType:       domain.LogTypeNote,
	}
	if err := s.repo.CreateResolutionLogTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("create update log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return incident, nil
}

// DeleteIncident removes an incident. Admin only, and only while the
// incident is still in REPORTED, before any work has begun.
func (s *Service) DeleteIncident(ctx context.Context, id string, deleter *domain.User) error {
	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return err
	}

	if !CanDelete(incident, deleter) {
		return ErrForbidden
	}

	if incident.Status != domain.StatusReported {
		return fmt.Errorf("%w: cannot delete incident in %s", ErrInvalidState, incident.Status)
	}

	return s.repo.DeleteIncident(ctx, id)
}

// UpdateStatus transitions an incident to a new status. The legality check
// against the transition table and the permission check both happen before
// any mutation; on success exactly one StatusUpdate and one correlated
// ResolutionLog entry are appended.
func (s *Service) UpdateStatus(ctx context.Context, id string, newStatus domain.IncidentStatus, updater *domain.User, notes string) (*domain.Incident, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	incident, err := s.repo.GetIncidentForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !CanUpdate(incident, updater) {
		return nil, ErrForbidden
	}

	oldStatus := incident.Status
	action := "Status updated"
	logNotes := fmt.Sprintf("Status changed from %s to %s", oldStatus.DisplayName(), newStatus.DisplayName())
	if err := s.applyTransition(ctx, tx, incident, newStatus, updater, notes, action, logNotes); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.notifyStatusChange(ctx, incident, oldStatus, newStatus)

	return incident, nil
}

// AssignIncident sets the incident's assignee. Assigning an incident in
// UNDER_REVIEW implicitly advances it to ASSIGNED through the same transition
// path: assignment is the trigger event that ends triage.
func (s *Service) AssignIncident(ctx context.Context, id, assigneeID string, assigner *domain.User) (*domain.Incident, error) {
	assignee, err := s.users.GetUserByID(ctx, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAssigneeNotFound, assigneeID)
	}

	if !assignee.Role.IsMaintenance() {
		return nil, ErrInvalidAssignee
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	incident, err := s.repo.GetIncidentForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !CanAssign(incident, assigner) {
		return nil, ErrForbidden
	}

	if incident.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: incident is %s", ErrInvalidState, incident.Status)
	}

	oldStatus := incident.Status
	incident.AssigneeID = &assignee.ID

	transitioned := false
	if incident.Status == domain.StatusUnderReview {
		notes := fmt.Sprintf("Incident assigned to %s", assignee.Username)
		if err := s.applyTransition(ctx, tx, incident, domain.StatusAssigned, assigner, notes, "Incident assigned", notes); err != nil {
			return nil, err
		}
		transitioned = true
	} else {
		if err := s.repo.UpdateIncidentTx(ctx, tx, incident); err != nil {
			return nil, fmt.Errorf("update incident: %w", err)
		}
		entry := &domain.ResolutionLog{
			IncidentID:    incident.ID,
			Action:        "Incident assigned",
			Notes:         fmt.Sprintf("Incident assigned to %s", assignee.Username),
			PerformedByID: assigner.ID,
			LogType:       domain.LogTypeNote,
		}
		if err := s.repo.CreateResolutionLogTx(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("create assignment log: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if transitioned {
		s.notifyStatusChange(ctx, incident, oldStatus, incident.Status)
	}
	s.notifyAssignment(ctx, incident, assignee)

	return incident, nil
}

// StartWork moves an ASSIGNED incident to IN_PROGRESS. Only the assigned
// worker may call it; the identity check has no role override.
func (s *Service) StartWork(ctx context.Context, id string, worker *domain.User) (*domain.Incident, error) {
	return s.workAction(ctx, id, worker, domain.StatusAssigned, domain.StatusInProgress,
		"Work started", "Work started", "Maintenance work has begun")
}

// PauseWork moves an IN_PROGRESS incident to ON_HOLD with the given reason.
func (s *Service) PauseWork(ctx context.Context, id string, worker *domain.User, reason string) (*domain.Incident, error) {
	return s.workAction(ctx, id, worker, domain.StatusInProgress, domain.StatusOnHold,
		reason, "Work paused", fmt.Sprintf("Work put on hold: %s", reason))
}

// CompleteWork moves an IN_PROGRESS incident to RESOLVED and stamps the
// actual resolution date.
func (s *Service) CompleteWork(ctx context.Context, id string, worker *domain.User, resolutionNotes string) (*domain.Incident, error) {
	return s.workAction(ctx, id, worker, domain.StatusInProgress, domain.StatusResolved,
		resolutionNotes, "Work completed", fmt.Sprintf("Issue resolved: %s", resolutionNotes))
}

// workAction is the shared path for assignee-exclusive transitions.
func (s *Service) workAction(ctx context.Context, id string, worker *domain.User, requiredStatus, targetStatus domain.IncidentStatus, notes, action, logNotes string) (*domain.Incident, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	incident, err := s.repo.GetIncidentForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !IsAssignedWorker(incident, worker) {
		return nil, fmt.Errorf("%w: only the assigned worker may perform this action", ErrForbidden)
	}

	if incident.Status != requiredStatus {
		return nil, fmt.Errorf("%w: incident must be in %s, currently %s",
			ErrInvalidState, requiredStatus, incident.Status)
	}

	oldStatus := incident.Status
	if err := s.applyTransition(ctx, tx, incident, targetStatus, worker, notes, action, logNotes); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.notifyStatusChange(ctx, incident, oldStatus, targetStatus)

	return incident, nil
}

// CloseIncident moves a RESOLVED incident to CLOSED.
func (s *Service) CloseIncident(ctx context.Context, id string, closer *domain.User, closureNotes string) (*domain.Incident, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	incident, err := s.repo.GetIncidentForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !CanUpdate(incident, closer) {
		return nil, ErrForbidden
	}

	if incident.Status != domain.StatusResolved {
		return nil, fmt.Errorf("%w: incident must be in %s to close, currently %s",
			ErrInvalidState, domain.StatusResolved, incident.Status)
	}

	oldStatus := incident.Status
	logNotes := fmt.Sprintf("Incident officially closed: %s", closureNotes)
	if err := s.applyTransition(ctx, tx, incident, domain.StatusClosed, closer, closureNotes, "Incident closed", logNotes); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.notifyStatusChange(ctx, incident, oldStatus, domain.StatusClosed)

	return incident, nil
}

// AppendLog attaches a resolution log entry of the given sub-kind. It causes
// no transition, and there is no permission gate beyond the caller being an
// authenticated user; any known user may attach entries to any incident.
func (s *Service) AppendLog(ctx context.Context, id string, input AppendLogInput, performer *domain.User) (*domain.ResolutionLog, error) {
	if !input.LogType.IsValid() {
		return nil, fmt.Errorf("invalid log type: %s", input.LogType)
	}

	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := &domain.ResolutionLog{
		IncidentID:       incident.ID,
		Action:           input.Action,
		Notes:            input.Notes,
		PerformedByID:    performer.ID,
		LogType:          input.LogType,
		TimeSpentMinutes: input.TimeSpentMinutes,
		MaterialsUsed:    input.MaterialsUsed,
		CostIncurred:     input.CostIncurred,
	}

	if err := s.repo.CreateResolutionLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("create resolution log: %w", err)
	}

	return entry, nil
}

// GetStatusUpdates returns the status-change audit trail, oldest first.
func (s *Service) GetStatusUpdates(ctx context.Context, id string, user *domain.User) ([]*domain.StatusUpdate, error) {
	if _, err := s.GetIncident(ctx, id, user); err != nil {
		return nil, err
	}
	return s.repo.ListStatusUpdates(ctx, id)
}

// GetResolutionLogs returns the resolution log trail, oldest first.
func (s *Service) GetResolutionLogs(ctx context.Context, id string, user *domain.User) ([]*domain.ResolutionLog, error) {
	if _, err := s.GetIncident(ctx, id, user); err != nil {
		return nil, err
	}
	return s.repo.ListResolutionLogs(ctx, id)
}

// AvailableTransitions returns the statuses reachable in one hop from the
// incident's current status, independent of the caller's permissions.
func (s *Service) AvailableTransitions(incident *domain.Incident) []domain.IncidentStatus {
	return incident.Status.AvailableTransitions()
}

// applyTransition performs the shared transition sequence inside tx:
// validate legality, mutate status, stamp resolution date, append one
// StatusUpdate and one correlated ResolutionLog, persist. Permission checks
// are the caller's responsibility.
func (s *Service) applyTransition(ctx context.Context, tx pgx.Tx, incident *domain.Incident, newStatus domain.IncidentStatus, actor *domain.User, notes, action, logNotes string) error {
	if !newStatus.IsValid() {
		return fmt.Errorf("%w: unknown status %s", ErrIllegalTransition, newStatus)
	}

	oldStatus := incident.Status
	if !oldStatus.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, oldStatus, newStatus)
	}

	incident.Status = newStatus
	if newStatus.IsResolved() {
		now := time.Now()
		incident.ActualResolutionDate = &now
	}

	if err := s.repo.UpdateIncidentTx(ctx, tx, incident); err != nil {
		return fmt.Errorf("update incident: %w", err)
	}

	correlationID := uuid.New().String()

	statusUpdate := &domain.StatusUpdate{
		IncidentID:     incident.ID,
		PreviousStatus: oldStatus,
		NewStatus:      newStatus,
		UpdatedByID:    actor.ID,
		Notes:          notes,
		CorrelationID:  correlationID,
	}
	if err := s.repo.CreateStatusUpdateTx(ctx, tx, statusUpdate); err != nil {
		return fmt.Errorf("create status update: %w", err)
	}

	entry := &domain.ResolutionLog{
		IncidentID:    incident.ID,
		Action:        action,
		Notes:         logNotes,
		PerformedByID: actor.ID,
		LogType:       domain.LogTypeWork,
		CorrelationID: correlationID,
	}
	if err := s.repo.CreateResolutionLogTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("create transition log: %w", err)
	}

	metrics.IncidentTransitions.WithLabelValues(string(oldStatus), string(newStatus)).Inc()

	return nil
}

func (s *Service) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

func (s *Service) notifyStatusChange(ctx context.Context, incident *domain.Incident, oldStatus, newStatus domain.IncidentStatus) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatusChange(ctx, incident, oldStatus, newStatus); err != nil {
		slog.Warn("status change notification failed", "incident_id", incident.ID, "error", err)
	}
}

func (s *Service) notifyAssignment(ctx context.Context, incident *domain.Incident, assignee *domain.User) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAssignment(ctx, incident, assignee); err != nil {
		slog.Warn("assignment notification failed", "incident_id", incident.ID, "error", err)
	}
}
