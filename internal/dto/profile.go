package dto

import (
	"encoding/json"
	"strings"
)

// FlexibleStrings accepts either a JSON array of strings or a single
// comma-separated string.
type FlexibleStrings []string

func (f *FlexibleStrings) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*f = out
	return nil
}

// ProfileResponse is returned by GET/PUT /api/profile
type ProfileResponse struct {
	UserID              string   `json:"user_id"`
	Email               string   `json:"email"`
	DisplayName         *string  `json:"display_name"`
	FirstName           *string  `json:"first_name"`
	LastName            *string  `json:"last_name"`
	AvatarURL           *string  `json:"avatar_url"`
	Location            *string  `json:"location"`
	SupportType         *string  `json:"support_type"`
	SupportPreferences  []string `json:"support_preferences"`
	JourneyNote         *string  `json:"journey_note"`
	IsActive            bool     `json:"is_active"`
	Availability        *string  `json:"availability"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
	ProfileCompleted    bool     `json:"profile_completed"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

// ProfileUpdateRequest holds optional fields; only provided ones are written.
// An empty string clears a nullable column.
type ProfileUpdateRequest struct {
	DisplayName         *string          `json:"display_name"`
	FirstName           *string          `json:"first_name"`
	LastName            *string          `json:"last_name"`
	AvatarURL           *string          `json:"avatar_url"`
	Location            *string          `json:"location"`
	SupportType         *string          `json:"support_type"` // seeker | giver
	SupportPreferences  *FlexibleStrings `json:"support_preferences"`
	JourneyNote         *string          `json:"journey_note"`
	IsActive            *bool            `json:"is_active"`
	Availability        *string          `json:"availability"`
	OnboardingCompleted *bool            `json:"onboarding_completed"`
	ProfileCompleted    *bool            `json:"profile_completed"`
}

// ProfileSyncResponse reports which client fields were applied
type ProfileSyncResponse struct {
	Profile ProfileResponse `json:"profile"`
	Applied []string        `json:"applied"`
	Ignored []string        `json:"ignored"`
}
