package incidents

import "github.com/campusworks/incident-desk/internal/domain"

// Authorization policy: pure decision functions over an incident snapshot and
// the acting user. Kept free of storage and transport concerns so they can be
// tested in isolation.

// CanView reports whether the user may read the incident. Admins see
// everything. Maintenance staff see incidents assigned to them plus the whole
// unresolved queue. Reporters see only their own reports.
func CanView(incident *domain.Incident, user *domain.User) bool {
	if user.Role.IsAdmin() {
		return true
	}
	if user.Role.IsMaintenance() {
		return incident.IsAssignedTo(user.ID) || !incident.Status.IsResolved()
	}
	return incident.IsReportedBy(user.ID)
}

// CanUpdate reports whether the user may mutate the incident. Maintenance
// staff may update incidents assigned to them or not assigned at all, which
// lets them claim unassigned tickets. Reporters keep edit rights only while
// the incident is still in REPORTED; triage ends them.
func CanUpdate(incident *domain.Incident, user *domain.User) bool {
	if user.Role.IsAdmin() {
		return true
	}
	if user.Role.IsMaintenance() {
		return incident.AssigneeID == nil || incident.IsAssignedTo(user.ID)
	}
	return incident.IsReportedBy(user.ID) && incident.Status == domain.StatusReported
}

// CanDelete reports whether the user may delete the incident. Admin only.
func CanDelete(_ *domain.Incident, user *domain.User) bool {
	return user.Role.IsAdmin()
}

// CanAssign reports whether the user may set the incident's assignee. The
// predicate is the same as CanUpdate; the assignee's own role is checked
// separately by the engine.
func CanAssign(incident *domain.Incident, user *domain.User) bool {
	return CanUpdate(incident, user)
}

// IsAssignedWorker reports whether the user is literally the incident's
// current assignee. Work actions (start, pause, complete) are
// assignee-exclusive rather than privilege-exclusive: a mismatched caller is
// rejected regardless of role, admins included.
func IsAssignedWorker(incident *domain.Incident, user *domain.User) bool {
	return incident.IsAssignedTo(user.ID)
}
