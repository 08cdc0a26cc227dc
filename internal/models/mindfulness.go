package models

import (
	"time"

	"github.com/google/uuid"
)

// Mindfulness entry kinds
const (
	EntryTypeJournal   = "journal"
	EntryTypeGratitude = "gratitude"
	EntryTypeStrength  = "strength"
)

// MindfulnessEntry is a journal, gratitude or strength note owned by one user.
// Mood applies to journal entries, Category to gratitude/strength entries.
type MindfulnessEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	EntryType string    `json:"entry_type" db:"entry_type"`
	Title     *string   `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Mood      *string   `json:"mood" db:"mood"`
	Category  *string   `json:"category" db:"category"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsValidEntryType reports whether t is a known entry kind
func IsValidEntryType(t string) bool {
	switch t {
	case EntryTypeJournal, EntryTypeGratitude, EntryTypeStrength:
		return true
	}
	return false
}

// Streak counts consecutive calendar days with at least one activity
type Streak struct {
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak    int        `json:"current_streak" db:"current_streak"`
	LongestStreak    int        `json:"longest_streak" db:"longest_streak"`
	TotalDays        int        `json:"total_days" db:"total_days"`
	LastActivityDate *time.Time `json:"last_activity_date" db:"last_activity_date"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}
