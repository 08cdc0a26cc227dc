package dto

// ChatMessageView is a chat message from the caller's point of view
type ChatMessageView struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"` // you | system | Anonymous | partner name
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	IsRead      bool   `json:"is_read"`
	IsAnonymous bool   `json:"is_anonymous"`
	CreatedAt   string `json:"created_at"`
}

type SendChatRequest struct {
	ReceiverID  string `json:"receiver_id" validate:"required,uuid"`
	Content     string `json:"content" validate:"required,max=4000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type ChatMessagesResponse struct {
	PeerID   string            `json:"peer_id"`
	Messages []ChatMessageView `json:"messages"`
}

type ConversationItem struct {
	PeerID        string          `json:"peer_id"`
	PeerName      string          `json:"peer_name"`
	PeerAvatar    string          `json:"peer_avatar"`
	LastMessage   ChatMessageView `json:"last_message"`
	UnreadCount   int             `json:"unread_count"`
	RequestStatus string          `json:"request_status"`
}

type ConversationListResponse struct {
	Conversations []ConversationItem `json:"conversations"`
}

type DeleteChatResponse struct {
	Message          string `json:"message"`
	DeletedMessages  int64  `json:"deleted_messages"`
	RequestCompleted bool   `json:"request_completed"`
}
