package models

import "time"

// EventType names a dashboard notification.
type EventType string

const (
	EventComplaintCreated EventType = "complaint_created"
	EventComplaintUpdated EventType = "complaint_updated"
)

// DashboardEvent is pushed to connected dashboards over redis and websockets.
type DashboardEvent struct {
	Type      EventType  `json:"type"`
	Complaint *Complaint `json:"complaint"`
	At        time.Time  `json:"at"`
}
