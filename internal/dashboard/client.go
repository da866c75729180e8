package dashboard

import "igire/backend/internal/models"

// Client is one connected dashboard. It abstracts the transport so the hub can
// be driven by websockets in production and by plain channels in tests.
type Client interface {
	// GetID identifies the connection; one user may hold several.
	GetID() string
	GetRole() models.Role
	// GetInstitutionID is set for institution staff and scopes which events they see.
	GetInstitutionID() string

	// GetSendChannel returns the channel the hub writes events to.
	GetSendChannel() chan<- models.DashboardEvent

	// Run starts the read and write pumps.
	Run()
	// Close shuts the send channel, which stops the write pump.
	Close()
}

// wants reports whether c should see event. Admins see everything; institution
// staff only see complaints assigned to their institution.
func wants(c Client, event models.DashboardEvent) bool {
	if c.GetRole() == models.RoleAdmin {
		return true
	}
	if event.Complaint == nil || event.Complaint.AssignedAgencyID == nil {
		return false
	}
	return c.GetInstitutionID() != "" && *event.Complaint.AssignedAgencyID == c.GetInstitutionID()
}
