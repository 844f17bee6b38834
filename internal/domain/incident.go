package domain

import "time"

// Incident represents a campus facility incident report.
type Incident struct {
	ID                      string         `json:"id"`
	Title                   string         `json:"title"`
	Description             string         `json:"description"`
	LocationDetails         string         `json:"location_details,omitempty"`
	CategoryID              string         `json:"category_id"`
	ReporterID              string         `json:"reporter_id"`
	AssigneeID              *string        `json:"assignee_id,omitempty"`
	Status                  IncidentStatus `json:"status"`
	PriorityLevel           int            `json:"priority_level"`
	IsUrgent                bool           `json:"is_urgent"`
	IsConfidential          bool           `json:"is_confidential"`
	EstimatedResolutionDate *time.Time     `json:"estimated_resolution_date,omitempty"`
	ActualResolutionDate    *time.Time     `json:"actual_resolution_date,omitempty"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// IsAssignedTo reports whether the incident is currently assigned to the user.
func (i *Incident) IsAssignedTo(userID string) bool {
	return i.AssigneeID != nil && *i.AssigneeID == userID
}

// IsReportedBy reports whether the user is the reporter of record.
func (i *Incident) IsReportedBy(userID string) bool {
	return i.ReporterID == userID
}

// IsOverdue reports whether the estimated resolution date has passed on an
// unresolved incident.
func (i *Incident) IsOverdue(now time.Time) bool {
	if i.EstimatedResolutionDate == nil || i.Status.IsResolved() {
		return false
	}
	return now.After(*i.EstimatedResolutionDate)
}

// IsHighPriority reports whether the incident needs expedited handling.
func (i *Incident) IsHighPriority() bool {
	return i.PriorityLevel >= 3 || i.IsUrgent
}

// PriorityLabel returns the human-readable priority level.
func (i *Incident) PriorityLabel() string {
	return PriorityLabel(i.PriorityLevel)
}

// PriorityLabel maps a 1-4 priority level to its display label.
func PriorityLabel(level int) string {
	switch level {
	case 1:
		return "Low"
	case 2:
		return "Medium"
	case 3:
		return "High"
	case 4:
		return "Critical"
	default:
		return "Unknown"
	}
}

// StatusUpdate is an append-only audit record of a single status transition.
// Created exactly once per successful transition; never mutated or deleted.
type StatusUpdate struct {
	ID             string         `json:"id"`
	IncidentID     string         `json:"incident_id"`
	PreviousStatus IncidentStatus `json:"previous_status"`
	NewStatus      IncidentStatus `json:"new_status"`
	UpdatedByID    string         `json:"updated_by_id"`
	Notes          string         `json:"notes,omitempty"`
	CorrelationID  string         `json:"correlation_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// LogType classifies a resolution log entry.
type LogType string

// Resolution log sub-kinds.
const (
	LogTypeWork     LogType = "WORK_LOG"
	LogTypeNote     LogType = "NOTE"
	LogTypeCost     LogType = "COST_LOG"
	LogTypeMaterial LogType = "MATERIAL_LOG"
	LogTypeTime     LogType = "TIME_LOG"
)

// IsValid checks if the log type is one of the known sub-kinds.
func (t LogType) IsValid() bool {
	switch t {
	case LogTypeWork, LogTypeNote, LogTypeCost, LogTypeMaterial, LogTypeTime:
		return true
	}
	return false
}

// DisplayName returns the human-readable name of the log type.
func (t LogType) DisplayName() string {
	switch t {
	case LogTypeWork:
		return "Work Log"
	case LogTypeNote:
		return "Note"
	case LogTypeCost:
		return "Cost Log"
	case LogTypeMaterial:
		return "Material Log"
	case LogTypeTime:
		return "Time Log"
	default:
		return "Unknown"
	}
}

// ResolutionLog is a free-form append-only audit record attached to an
// incident. The numeric fields are only meaningful for their sub-kind.
type ResolutionLog struct {
	ID               string    `json:"id"`
	IncidentID       string    `json:"incident_id"`
	Action           string    `json:"action"`
	Notes            string    `json:"notes,omitempty"`
	PerformedByID    string    `json:"performed_by_id"`
	LogType          LogType   `json:"log_type"`
	TimeSpentMinutes *int      `json:"time_spent_minutes,omitempty"`
	MaterialsUsed    *string   `json:"materials_used,omitempty"`
	CostIncurred     *float64  `json:"cost_incurred,omitempty"`
	CorrelationID    string    `json:"correlation_id,omitempty"`
	PerformedAt      time.Time `json:"performed_at"`
}
