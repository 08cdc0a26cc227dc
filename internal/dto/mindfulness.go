package dto

// MindfulnessEntryResponse is one journal, gratitude or strength entry
type MindfulnessEntryResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     *string `json:"title"`
	Content   string  `json:"content"`
	Mood      *string `json:"mood,omitempty"`
	Category  *string `json:"category,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// CreateMindfulnessRequest is the POST /api/mindfulness body
type CreateMindfulnessRequest struct {
	Type     string  `json:"type"`
	Title    *string `json:"title"`
	Content  string  `json:"content"`
	Mood     *string `json:"mood"`
	Category *string `json:"category"`
}

// UpdateMindfulnessRequest is the PUT /api/mindfulness body
type UpdateMindfulnessRequest struct {
	ID       string  `json:"id"`
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Mood     *string `json:"mood"`
	Category *string `json:"category"`
}

type MindfulnessListResponse struct {
	Entries []MindfulnessEntryResponse `json:"entries"`
}

// StreakRequest optionally names the caller's IANA timezone
type StreakRequest struct {
	Timezone string `json:"timezone"`
}

type StreakResponse struct {
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	TotalDays        int     `json:"total_days"`
	LastActivityDate *string `json:"last_activity_date"` // YYYY-MM-DD
	Incremented      bool    `json:"incremented"`
}
