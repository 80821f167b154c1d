package dto

import "github.com/noah-isme/lms-api/internal/models"

// NotificationFeed is the notification bell payload.
type NotificationFeed struct {
	Items       []models.Notification `json:"items"`
	UnreadCount int                   `json:"unreadCount"`
}

// MarkReadResponse reports how many notifications were marked read.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
