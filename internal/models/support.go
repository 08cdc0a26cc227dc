package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a support request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusCompleted RequestStatus = "completed"
)

// SupportRequest is a directed connection invitation (sender -> receiver)
type SupportRequest struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	SenderID    uuid.UUID     `json:"sender_id" db:"sender_id"`
	ReceiverID  uuid.UUID     `json:"receiver_id" db:"receiver_id"`
	Status      RequestStatus `json:"status" db:"status"`
	IsAnonymous bool          `json:"is_anonymous" db:"is_anonymous"`
	Message     *string       `json:"message" db:"message"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	RespondedAt *time.Time    `json:"responded_at" db:"responded_at"`
}

// SupportRequestRow is a request joined with the counterpart's display fields
type SupportRequestRow struct {
	SupportRequest
	SenderName     *string
	SenderAvatar   *string
	ReceiverName   *string
	ReceiverAvatar *string
}

// Chat message kinds
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// ChatMessage belongs to an unordered pair of users
type ChatMessage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SenderID    uuid.UUID `json:"sender_id" db:"sender_id"`
	ReceiverID  uuid.UUID `json:"receiver_id" db:"receiver_id"`
	Content     string    `json:"content" db:"content"`
	MessageType string    `json:"message_type" db:"message_type"`
	IsRead      bool      `json:"is_read" db:"is_read"`
	IsAnonymous bool      `json:"is_anonymous" db:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ChatPeer is the other side of a thread. Anonymous is set when the peer
// opened the pair's latest request anonymously.
type ChatPeer struct {
	Name      *string
	Avatar    *string
	Anonymous bool
}

// Conversation summarizes the thread between the caller and one peer
type Conversation struct {
	PeerID        uuid.UUID
	Peer          ChatPeer
	LastMessage   ChatMessage
	UnreadCount   int
	RequestStatus RequestStatus
}
