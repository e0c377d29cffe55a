package notifications

import "github.com/sudipbhatta12/political-app-sub000/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendReport(report *models.DailyReport) error
}
