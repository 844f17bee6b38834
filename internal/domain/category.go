package domain

import "time"

// Category classifies incidents and carries the default priority applied to
// reports that do not specify one. Categories have an independent lifecycle:
// incident operations never delete them.
type Category struct {
	ID                           string    `json:"id"`
	Name                         string    `json:"name"`
	Description                  string    `json:"description,omitempty"`
	PriorityLevel                int       `json:"priority_level"`
	IsActive                     bool      `json:"is_active"`
	EstimatedResolutionTimeHours int       `json:"estimated_resolution_time_hours"`
	CreatedAt                    time.Time `json:"created_at"`
	UpdatedAt                    time.Time `json:"updated_at"`
}

// PriorityLabel returns the human-readable default priority.
func (c *Category) PriorityLabel() string {
	return PriorityLabel(c.PriorityLevel)
}

// IsHighPriority reports whether the category defaults to high priority.
func (c *Category) IsHighPriority() bool {
	return c.PriorityLevel >= 3
}
