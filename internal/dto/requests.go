package dto

// SupportRequestView is a support request from the caller's point of view
type SupportRequestView struct {
	ID          string  `json:"id"`
	Direction   string  `json:"direction"` // sent | received
	Status      string  `json:"status"`
	IsAnonymous bool    `json:"is_anonymous"`
	Message     *string `json:"message"`
	PeerID      string  `json:"peer_id"`
	PeerName    string  `json:"peer_name"`
	PeerAvatar  string  `json:"peer_avatar"`
	CreatedAt   string  `json:"created_at"`
	RespondedAt *string `json:"responded_at"`
}

type CreateSupportRequest struct {
	ReceiverID  string  `json:"receiver_id" validate:"required,uuid"`
	Message     *string `json:"message"`
	IsAnonymous bool    `json:"is_anonymous"`
}

type RespondSupportRequest struct {
	RequestID string `json:"request_id" validate:"required,uuid"`
	Action    string `json:"action" validate:"required,oneof=accept reject"`
}

type SupportRequestListResponse struct {
	Requests []SupportRequestView `json:"requests"`
}

type SupportRequestResponse struct {
	Request SupportRequestView `json:"request"`
}
