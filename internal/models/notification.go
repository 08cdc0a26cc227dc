package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notice for a single user
type Notification struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Type      string         `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   *string        `json:"message" db:"message"`
	Data      map[string]any `json:"data" db:"data"`
	ActionURL *string        `json:"action_url" db:"action_url"`
	Read      bool           `json:"read" db:"read"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
