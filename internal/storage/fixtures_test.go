package storage

import (
	"time"

	"igire/backend/internal/models"
)

func eventFixture() models.DashboardEvent {
	return models.DashboardEvent{
		Type:      models.EventComplaintCreated,
		Complaint: &models.Complaint{ID: "c1", Category: models.CategoryWater},
		At:        time.Unix(1700000000, 0),
	}
}
