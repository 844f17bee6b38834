// Package postgres provides PostgreSQL implementation of incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/campusworks/incident-desk/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is an interface for database operations that both *pgxpool.Pool and pgx.Tx implement.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `
	id, title, description, location_details, category_id, reporter_id,
	assignee_id, status, priority_level, is_urgent, is_confidential,
	estimated_resolution_date, actual_resolution_date, created_at, updated_at
`

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.LocationDetails,
		&incident.CategoryID,
		&incident.ReporterID,
		&incident.AssigneeID,
		&incident.Status,
		&incident.PriorityLevel,
		&incident.IsUrgent,
		&incident.IsConfidential,
		&incident.EstimatedResolutionDate,
		&incident.ActualResolutionDate,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

// CreateIncident creates a new incident in the database.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (
			title, description, location_details, category_id, reporter_id,
			assignee_id, status, priority_level, is_urgent, is_confidential,
			estimated_resolution_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.LocationDetails,
		incident.CategoryID,
		incident.ReporterID,
		incident.AssigneeID,
		incident.Status,
		incident.PriorityLevel,
		incident.IsUrgent,
		incident.IsConfidential,
		incident.EstimatedResolutionDate,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// GetIncident retrieves an incident by ID.
func (r *Repository) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	return r.getIncident(ctx, r.db, id, "")
}

func (r *Repository) getIncident(ctx context.Context, q querier, id, suffix string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1` + suffix

	incident, err := scanIncident(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

// ListIncidents retrieves incidents matching the filter, newest first.
func (r *Repository) ListIncidents(ctx context.Context, filter incidents.IncidentFilter) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *filter.Status)
		argNum++
	}

	if len(filter.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argNum)
		args = append(args, filter.Statuses)
		argNum++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argNum)
		args = append(args, *filter.CategoryID)
		argNum++
	}

	if filter.ReporterID != nil {
		query += fmt.Sprintf(" AND reporter_id = $%d", argNum)
		args = append(args, *filter.ReporterID)
		argNum++
	}

	if filter.Unassigned {
		query += " AND assignee_id IS NULL"
	} else if filter.AssigneeID != nil {
		query += fmt.Sprintf(" AND assignee_id = $%d", argNum)
		args = append(args, *filter.AssigneeID)
		argNum++
	}

	if filter.MinPriority != nil {
		query += fmt.Sprintf(" AND priority_level >= $%d", argNum)
		args = append(args, *filter.MinPriority)
		argNum++
	}

	if filter.IsUrgent != nil {
		query += fmt.Sprintf(" AND is_urgent = $%d", argNum)
		args = append(args, *filter.IsUrgent)
		argNum++
	}

	if filter.CreatedAfter != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, *filter.CreatedAfter)
		argNum++
	}

	if filter.CreatedBefore != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argNum)
		args = append(args, *filter.CreatedBefore)
		argNum++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d OR location_details ILIKE $%d)", argNum, argNum, argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	return out, nil
}

// UpdateIncident updates an existing incident.
func (r *Repository) UpdateIncident(ctx context.Context, incident *domain.Incident) error {
	return r.updateIncident(ctx, r.db, incident)
}

func (r *Repository) updateIncident(ctx context.Context, q querier, incident *domain.Incident) error {
	query := `
		UPDATE incidents SET
			title = $2,
			description = $3,
			location_details = $4,
			category_id = $5,
			assignee_id = $6,
			status = $7,
			priority_level = $8,
			is_urgent = $9,
			is_confidential = $10,
			estimated_resolution_date = $11,
			actual_resolution_date = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := q.QueryRow(ctx, query,
		incident.ID,
		incident.Title,
		incident.Description,
		incident.LocationDetails,
		incident.CategoryID,
		incident.AssigneeID,
		incident.Status,
		incident.PriorityLevel,
		incident.IsUrgent,
		incident.IsConfidential,
		incident.EstimatedResolutionDate,
		incident.ActualResolutionDate,
	).Scan(&incident.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// DeleteIncident removes an incident and its audit trail.
func (r *Repository) DeleteIncident(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// CreateResolutionLog appends a resolution log entry.
func (r *Repository) CreateResolutionLog(ctx context.Context, entry *domain.ResolutionLog) error {
	return r.createResolutionLog(ctx, r.db, entry)
}

func (r *Repository) createResolutionLog(ctx context.Context, q querier, entry *domain.ResolutionLog) error {
	query := `
		INSERT INTO resolution_logs (
			incident_id, action, notes, performed_by_id, log_type,
			time_spent_minutes, materials_used, cost_incurred, correlation_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		RETURNING id, performed_at
	`
	err := q.QueryRow(ctx, query,
		entry.IncidentID,
		entry.Action,
		entry.Notes,
		entry.PerformedByID,
		entry.LogType,
		entry.TimeSpentMinutes,
		entry.MaterialsUsed,
		entry.CostIncurred,
		entry.CorrelationID,
	).Scan(&entry.ID, &entry.PerformedAt)

	if err != nil {
		return fmt.Errorf("create resolution log: %w", err)
	}
	return nil
}

// ListStatusUpdates returns the status-change trail for an incident, oldest first.
func (r *Repository) ListStatusUpdates(ctx context.Context, incidentID string) ([]*domain.StatusUpdate, error) {
	query := `
		SELECT id, incident_id, previous_status, new_status, updated_by_id,
			notes, COALESCE(correlation_id, ''), created_at
		FROM status_updates
		WHERE incident_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list status updates: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.StatusUpdate, 0)
	for rows.Next() {
		var u domain.StatusUpdate
		err := rows.Scan(
			&u.ID,
			&u.IncidentID,
			&u.PreviousStatus,
			&u.NewStatus,
			&u.UpdatedByID,
			&u.Notes,
			&u.CorrelationID,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan status update: %w", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status updates: %w", err)
	}

	return out, nil
}

// ListResolutionLogs returns the resolution log trail for an incident, oldest first.
func (r *Repository) ListResolutionLogs(ctx context.Context, incidentID string) ([]*domain.ResolutionLog, error) {
	query := `
		SELECT id, incident_id, action, notes, performed_by_id, log_type,
			time_spent_minutes, materials_used, cost_incurred,
			COALESCE(correlation_id, ''), performed_at
		FROM resolution_logs
		WHERE incident_id = $1
		ORDER BY performed_at ASC
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list resolution logs: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.ResolutionLog, 0)
	for rows.Next() {
		var l domain.ResolutionLog
		err := rows.Scan(
			&l.ID,
			&l.IncidentID,
			&l.Action,
			&l.Notes,
			&l.PerformedByID,
			&l.LogType,
			&l.TimeSpentMinutes,
			&l.MaterialsUsed,
			&l.CostIncurred,
			&l.CorrelationID,
			&l.PerformedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resolution log: %w", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolution logs: %w", err)
	}

	return out, nil
}

// CountIncidents returns the total number of incidents.
func (r *Repository) CountIncidents(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return count, nil
}

// CountByStatus returns incident counts grouped by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[domain.IncidentStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM incidents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.IncidentStatus]int)
	for rows.Next() {
		var status domain.IncidentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[status] = count
	}
	return out, rows.Err()
}

// CountByCategory returns incident counts grouped by category name.
func (r *Repository) CountByCategory(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT c.name, COUNT(*)
		FROM incidents i
		JOIN categories c ON c.id = i.category_id
		GROUP BY c.name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out[name] = count
	}
	return out, rows.Err()
}

// CountByPriority returns incident counts grouped by priority level.
func (r *Repository) CountByPriority(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.Query(ctx, `SELECT priority_level, COUNT(*) FROM incidents GROUP BY priority_level`)
	if err != nil {
		return nil, fmt.Errorf("count by priority: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		out[level] = count
	}
	return out, rows.Err()
}

// ListOverdueIncidents returns unresolved incidents past their estimated
// resolution date.
func (r *Repository) ListOverdueIncidents(ctx context.Context, now time.Time) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE estimated_resolution_date IS NOT NULL
		  AND estimated_resolution_date < $1
		  AND status NOT IN ($2, $3, $4)
		ORDER BY estimated_resolution_date ASC
	`
	rows, err := r.db.Query(ctx, query, now,
		domain.StatusResolved, domain.StatusClosed, domain.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list overdue incidents: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, incident)
	}
	return out, rows.Err()
}

// BeginTx starts a new transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// GetIncidentForUpdateTx reads an incident with a row-level lock held for the
// remainder of the transaction.
func (r *Repository) GetIncidentForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Incident, error) {
	return r.getIncident(ctx, tx, id, " FOR UPDATE")
}

// UpdateIncidentTx updates an incident within a transaction.
func (r *Repository) UpdateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error {
	return r.updateIncident(ctx, tx, incident)
}

// CreateStatusUpdateTx appends a status update entry within a transaction.
func (r *Repository) CreateStatusUpdateTx(ctx context.Context, tx pgx.Tx, entry *domain.StatusUpdate) error {
	query := `
		INSERT INTO status_updates (
			incident_id, previous_status, new_status, updated_by_id, notes, correlation_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		entry.IncidentID,
		entry.PreviousStatus,
		entry.NewStatus,
		entry.UpdatedByID,
		entry.Notes,
		entry.CorrelationID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("create status update: %w", err)
	}
	return nil
}

// CreateResolutionLogTx appends a resolution log entry within a transaction.
func (r *Repository) CreateResolutionLogTx(ctx context.Context, tx pgx.Tx, entry *domain.ResolutionLog) error {
	return r.createResolutionLog(ctx, tx, entry)
}
