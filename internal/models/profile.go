package models

import (
	"time"

	"github.com/google/uuid"
)

// Support types a profile can carry
const (
	SupportTypeSeeker = "seeker"
	SupportTypeGiver  = "giver"
)

// Profile is a row of public.profiles. Nullable columns are pointers.
type Profile struct {
	UserID              uuid.UUID `json:"user_id" db:"user_id"`
	Email               string    `json:"email" db:"email"` // joined from users
	DisplayName         *string   `json:"display_name" db:"display_name"`
	FirstName           *string   `json:"first_name" db:"first_name"`
	LastName            *string   `json:"last_name" db:"last_name"`
	AvatarURL           *string   `json:"avatar_url" db:"avatar_url"`
	Location            *string   `json:"location" db:"location"`
	SupportType         *string   `json:"support_type" db:"support_type"`
	SupportPreferences  []string  `json:"support_preferences" db:"support_preferences"`
	JourneyNote         *string   `json:"journey_note" db:"journey_note"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	Rating              *float64  `json:"rating" db:"rating"`
	PeopleSupported     int       `json:"people_supported" db:"people_supported"`
	Availability        *string   `json:"availability" db:"availability"`
	Certifications      []string  `json:"certifications" db:"certifications"`
	OnboardingCompleted bool      `json:"onboarding_completed" db:"onboarding_completed"`
	ProfileCompleted    bool      `json:"profile_completed" db:"profile_completed"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// IsValidSupportType reports whether s is seeker or giver
func IsValidSupportType(s string) bool {
	return s == SupportTypeSeeker || s == SupportTypeGiver
}
