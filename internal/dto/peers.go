package dto

// PeerMatch is the peer card view model
type PeerMatch struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	AvatarURL          string   `json:"avatar"`
	Location           string   `json:"location"`
	SupportType        string   `json:"supportType"`
	SupportPreferences []string `json:"supportPreferences"`
	JourneyNote        string   `json:"journeyNote"`
	IsActive           bool     `json:"isActive"`
	Rating             float64  `json:"rating"`
	PeopleSupported    int      `json:"peopleSupported"`
	Availability       string   `json:"availability"`
	Certifications     []string `json:"certifications"`
	MatchScore         int      `json:"matchScore"`
}

type PeerListResponse struct {
	Peers []PeerMatch `json:"peers"`
	Total int         `json:"total"`
}
