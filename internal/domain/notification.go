package domain

import "time"

// Notification type constants.
const (
	NotificationTaskAssigned = "task-assigned"
	NotificationTaskUpdated  = "task-updated"
	NotificationTeamAdded    = "team-added"
)

// Notification is an in-app message delivered to a single user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
