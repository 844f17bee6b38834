package domain

// IncidentStatus represents the lifecycle state of an incident.
type IncidentStatus string

// Incident lifecycle statuses, in lifecycle order.
const (
	StatusReported    IncidentStatus = "REPORTED"
	StatusUnderReview IncidentStatus = "UNDER_REVIEW"
	StatusAssigned    IncidentStatus = "ASSIGNED"
	StatusInProgress  IncidentStatus = "IN_PROGRESS"
	StatusOnHold      IncidentStatus = "ON_HOLD"
	StatusResolved    IncidentStatus = "RESOLVED"
	StatusClosed      IncidentStatus = "CLOSED"
	StatusCancelled   IncidentStatus = "CANCELLED"
)

// statusMeta holds display metadata for a status.
type statusMeta struct {
	displayName string
	description string
	order       int
}

var statusMetadata = map[IncidentStatus]statusMeta{
	StatusReported:    {"Reported", "Initial report submitted", 1},
	StatusUnderReview: {"Under Review", "Being reviewed by staff", 2},
	StatusAssigned:    {"Assigned", "Assigned to maintenance staff", 3},
	StatusInProgress:  {"In Progress", "Work has begun", 4},
	StatusOnHold:      {"On Hold", "Work temporarily suspended", 5},
	StatusResolved:    {"Resolved", "Issue has been fixed", 6},
	StatusClosed:      {"Closed", "Incident fully closed", 7},
	StatusCancelled:   {"Cancelled", "Report cancelled or invalid", 8},
}

// statusTransitions is the legal-transition table. A status missing from the
// map, or mapped to an empty slice, is terminal.
var statusTransitions = map[IncidentStatus][]IncidentStatus{
	StatusReported:    {StatusUnderReview, StatusCancelled},
	StatusUnderReview: {StatusAssigned, StatusCancelled},
	StatusAssigned:    {StatusInProgress, StatusOnHold},
	StatusInProgress:  {StatusOnHold, StatusResolved},
	StatusOnHold:      {StatusInProgress, StatusCancelled},
	StatusResolved:    {StatusClosed},
	StatusClosed:      {},
	StatusCancelled:   {},
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []IncidentStatus {
	return []IncidentStatus{
		StatusReported, StatusUnderReview, StatusAssigned, StatusInProgress,
		StatusOnHold, StatusResolved, StatusClosed, StatusCancelled,
	}
}

// IsValid checks if the status is a member of the taxonomy.
func (s IncidentStatus) IsValid() bool {
	_, ok := statusMetadata[s]
	return ok
}

// DisplayName returns the human-readable name of the status.
func (s IncidentStatus) DisplayName() string {
	return statusMetadata[s].displayName
}

// Description returns the description of the status.
func (s IncidentStatus) Description() string {
	return statusMetadata[s].description
}

// Order returns the lifecycle order of the status, starting at 1.
func (s IncidentStatus) Order() int {
	return statusMetadata[s].order
}

// IsActive reports whether the status still requires attention.
func (s IncidentStatus) IsActive() bool {
	return s != StatusResolved && s != StatusClosed && s != StatusCancelled
}

// IsResolved reports whether the issue has been fixed (resolved or closed).
// Cancelled incidents are terminal but not resolved.
func (s IncidentStatus) IsResolved() bool {
	return s == StatusResolved || s == StatusClosed
}

// IsTerminal reports whether no further transitions are possible.
func (s IncidentStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// CanTransitionTo checks the legal-transition table. The check is pure and
// has no side effects; callers reject illegal requests before any mutation.
func (s IncidentStatus) CanTransitionTo(target IncidentStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AvailableTransitions returns the statuses reachable in one hop. The result
// does not factor in authorization; a caller may see a transition listed yet
// be forbidden from executing it.
func (s IncidentStatus) AvailableTransitions() []IncidentStatus {
	targets := statusTransitions[s]
	out := make([]IncidentStatus, len(targets))
	copy(out, targets)
	return out
}

// InitialStatus returns the status every new incident starts in.
func InitialStatus() IncidentStatus {
	return StatusReported
}
