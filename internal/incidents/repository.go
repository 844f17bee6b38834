package incidents

import (
	"context"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for incident storage. Audit entries are
// append-only: the interface deliberately has no update or delete for
// StatusUpdate and ResolutionLog rows.
type Repository interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	GetIncident(ctx context.Context, id string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]*domain.Incident, error)
	UpdateIncident(ctx context.Context, incident *domain.Incident) error
	DeleteIncident(ctx context.Context, id string) error

	CreateResolutionLog(ctx context.Context, entry *domain.ResolutionLog) error
	ListStatusUpdates(ctx context.Context, incidentID string) ([]*domain.StatusUpdate, error)
	ListResolutionLogs(ctx context.Context, incidentID string) ([]*domain.ResolutionLog, error)

	CountIncidents(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[domain.IncidentStatus]int, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
	CountByPriority(ctx context.Context) (map[int]int, error)

	ListOverdueIncidents(ctx context.Context, now time.Time) ([]*domain.Incident, error)

	// Transaction support. Transitions read the incident row with a
	// row-level lock so the read-validate-write sequence is never
	// interleaved for the same incident id.
	BeginTx(ctx context.Context) (pgx.Tx, error)
	GetIncidentForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Incident, error)
	UpdateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error
	CreateStatusUpdateTx(ctx context.Context, tx pgx.Tx, entry *domain.StatusUpdate) error
	CreateResolutionLogTx(ctx context.Context, tx pgx.Tx, entry *domain.ResolutionLog) error
}

// IncidentFilter holds filter options for listing incidents.
type IncidentFilter struct {
	Status        *domain.IncidentStatus
	Statuses      []domain.IncidentStatus
	CategoryID    *string
	ReporterID    *string
	AssigneeID    *string
	Unassigned    bool
	MinPriority   *int
	IsUrgent      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string
	Limit         int
	Offset        int
}
