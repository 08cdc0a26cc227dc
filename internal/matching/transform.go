package matching

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/models"
)

// Defaults for fields a stored profile may leave empty
const (
	DefaultAvatarURL    = "/images/avatar-placeholder.png"
	DefaultRating       = 4.5
	DefaultAvailability = "this_week"
	DefaultPeerName     = "Anonymous Peer"
	DefaultPartnerName  = "Peer"
	AnonymousName       = "Anonymous"
)

// Chat message sender labels
const (
	SenderYou    = "you"
	SenderSystem = "system"
)

// Request directions relative to the viewer
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func strOr(p *string, def string) string {
	if s := str(p); s != "" {
		return s
	}
	return def
}

// DisplayName picks display_name, then first plus last name, then def.
func DisplayName(display, first, last *string, def string) string {
	if s := str(display); s != "" {
		return s
	}
	if s := strings.TrimSpace(str(first) + " " + str(last)); s != "" {
		return s
	}
	return def
}

// ToPeerMatch builds a peer card for a stored profile, scored against the
// viewer's preferences.
func ToPeerMatch(p models.Profile, viewerPrefs []string) dto.PeerMatch {
	prefs := NormalizePreferences(SplitPreferences(p.SupportPreferences))

	rating := DefaultRating
	if p.Rating != nil {
		rating = *p.Rating
	}

	certs := p.Certifications
	if certs == nil {
		certs = []string{}
	}

	return dto.PeerMatch{
		ID:                 p.UserID.String(),
		Name:               DisplayName(p.DisplayName, p.FirstName, p.LastName, DefaultPeerName),
		AvatarURL:          strOr(p.AvatarURL, DefaultAvatarURL),
		Location:           str(p.Location),
		SupportType:        str(p.SupportType),
		SupportPreferences: prefs,
		JourneyNote:        str(p.JourneyNote),
		IsActive:           p.IsActive,
		Rating:             rating,
		PeopleSupported:    p.PeopleSupported,
		Availability:       strOr(p.Availability, DefaultAvailability),
		Certifications:     certs,
		MatchScore: CalculateMatchScore(viewerPrefs, prefs, Signals{
			IsActive: p.IsActive,
			Rating:   rating,
		}),
	}
}

// ChatPartner returns the name and avatar the viewer sees for a chat peer.
// A peer who sent the pair's request anonymously stays anonymous.
func ChatPartner(p models.ChatPeer) (name, avatar string) {
	if p.Anonymous {
		return AnonymousName, DefaultAvatarURL
	}
	return DisplayName(p.Name, nil, nil, DefaultPartnerName), strOr(p.Avatar, DefaultAvatarURL)
}

// ToChatMessage labels a message for the viewer. Anonymous messages from the
// partner hide the partner's name.
func ToChatMessage(m models.ChatMessage, viewerID uuid.UUID, partnerName string) dto.ChatMessageView {
	sender := partnerName
	switch {
	case m.MessageType == models.MessageTypeSystem:
		sender = SenderSystem
	case m.SenderID == viewerID:
		sender = SenderYou
	case m.IsAnonymous:
		sender = AnonymousName
	case strings.TrimSpace(sender) == "":
		sender = DefaultPartnerName
	}

	return dto.ChatMessageView{
		ID:          m.ID.String(),
		Sender:      sender,
		Content:     m.Content,
		MessageType: m.MessageType,
		IsRead:      m.IsRead,
		IsAnonymous: m.IsAnonymous,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToSupportRequest shows a request from the viewer's side. The receiver of an
// anonymous request sees neither the sender's name nor avatar.
func ToSupportRequest(r models.SupportRequestRow, viewerID uuid.UUID) dto.SupportRequestView {
	v := dto.SupportRequestView{
		ID:          r.ID.String(),
		Status:      string(r.Status),
		IsAnonymous: r.IsAnonymous,
		Message:     r.Message,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.RespondedAt != nil {
		s := r.RespondedAt.UTC().Format(time.RFC3339)
		v.RespondedAt = &s
	}

	if r.SenderID == viewerID {
		v.Direction = DirectionSent
		v.PeerID = r.ReceiverID.String()
		v.PeerName = strOr(r.ReceiverName, DefaultPeerName)
		v.PeerAvatar = strOr(r.ReceiverAvatar, DefaultAvatarURL)
		return v
	}

	v.Direction = DirectionReceived
	v.PeerID = r.SenderID.String()
	if r.IsAnonymous {
		v.PeerName = AnonymousName
		v.PeerAvatar = DefaultAvatarURL
		return v
	}
	v.PeerName = strOr(r.SenderName, DefaultPeerName)
	v.PeerAvatar = strOr(r.SenderAvatar, DefaultAvatarURL)
	return v
}
