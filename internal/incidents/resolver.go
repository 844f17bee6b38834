package incidents

import (
	"context"

	"github.com/campusworks/incident-desk/internal/domain"
)

// UserDirectory resolves user ids to users. Implemented by the identity
// service.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// CategoryDirectory resolves category ids to categories. Implemented by the
// catalog service.
type CategoryDirectory interface {
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
}

// Notifier delivers incident notifications. Delivery is best-effort:
// implementations must not block, and the engine ignores returned errors
// beyond logging them.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, incident *domain.Incident, oldStatus, newStatus domain.IncidentStatus) error
	NotifyAssignment(ctx context.Context, incident *domain.Incident, assignee *domain.User) error
	NotifyOverdue(ctx context.Context, incident *domain.Incident) error
}
