package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/events"
	"MINDBRIDGE_BACK-END/internal/matching"
	"MINDBRIDGE_BACK-END/internal/metrics"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// notificationPreviewLength bounds the message excerpt in a notification
const notificationPreviewLength = 80

// ChatsHandler serves peer chat threads
type ChatsHandler struct {
	chats    services.ChatService
	profiles services.ProfileService
	effects  sideEffects
}

// NewChatsHandler creates a new ChatsHandler
func NewChatsHandler(
	chats services.ChatService,
	profiles services.ProfileService,
	notifications services.NotificationsService,
	publisher events.Publisher,
) *ChatsHandler {
	return &ChatsHandler{
		chats:    chats,
		profiles: profiles,
		effects:  sideEffects{notifications: notifications, events: publisher},
	}
}

// Chats dispatches by HTTP method for /api/peer-support/chats
func (h *ChatsHandler) Chats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Has("peer_id") {
			h.GetMessages(w, r)
			return
		}
		h.ListConversations(w, r)
	case http.MethodPost:
		h.SendMessage(w, r)
	case http.MethodDelete:
		h.DeleteThread(w, r)
	default:
		methodNotAllowed(w)
	}
}

// ListConversations handles GET /api/peer-support/chats
// @Summary List my conversations, or one thread
// @Description Without peer_id returns conversation summaries. With peer_id returns that thread as dto.ChatMessagesResponse, oldest first, and marks the peer's messages read.
// @Tags peer-support
// @Produce json
// @Security BearerAuth
// @Param peer_id query string false "Peer user ID"
// @Success 200 {object} dto.ConversationListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support/chats [get]
func (h *ChatsHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	convs, err := h.chats.Conversations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "chats", err)
		return
	}

	out := make([]dto.ConversationItem, 0, len(convs))
	for _, c := range convs {
		name, avatar := matching.ChatPartner(c.Peer)
		out = append(out, dto.ConversationItem{
			PeerID:        c.PeerID.String(),
			PeerName:      name,
			PeerAvatar:    avatar,
			LastMessage:   matching.ToChatMessage(c.LastMessage, userID, name),
			UnreadCount:   c.UnreadCount,
			RequestStatus: string(c.RequestStatus),
		})
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ConversationListResponse{Conversations: out})
}

// GetMessages handles GET /api/peer-support/chats?peer_id=. The thread is
// returned oldest first and the peer's messages are marked read.
func (h *ChatsHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	peerID, ok := parseID(w, "peer_id", r.URL.Query().Get("peer_id"))
	if !ok {
		return
	}

	msgs, peer, err := h.chats.Messages(r.Context(), userID, peerID)
	if err != nil {
		writeServiceError(w, r, "chats", err)
		return
	}

	name, _ := matching.ChatPartner(peer)
	out := make([]dto.ChatMessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, matching.ToChatMessage(m, userID, name))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ChatMessagesResponse{PeerID: peerID.String(), Messages: out})
}

// SendMessage handles POST /api/peer-support/chats
// @Summary Send a chat message
// @Description Requires an accepted support request between the two users.
// @Tags peer-support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SendChatRequest true "Receiver and content"
// @Success 201 {object} dto.ChatMessageView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "No accepted support request"
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support/chats [post]
func (h *ChatsHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body dto.SendChatRequest
	if err := utils.DecodeJSONRequest(r, &body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	body.ReceiverID = strings.TrimSpace(body.ReceiverID)
	body.Content = strings.TrimSpace(body.Content)
	if err := utils.ValidateStruct(body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	receiverID, err := uuid.Parse(body.ReceiverID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "receiver_id must be a valid UUID")
		return
	}

	m, err := h.chats.Send(r.Context(), userID, receiverID, body.Content, body.IsAnonymous)
	if err != nil {
		writeServiceError(w, r, "chats", err)
		return
	}
	metrics.ChatMessagesTotal.Inc()

	senderLabel := matching.AnonymousName
	if !m.IsAnonymous {
		senderLabel = matching.DefaultPartnerName
		if p, err := h.profiles.Get(r.Context(), userID); err == nil {
			senderLabel = matching.DisplayName(p.DisplayName, p.FirstName, p.LastName, matching.DefaultPartnerName)
		}
	}
	preview := previewText(m.Content)
	h.effects.notify(r.Context(), receiverID, services.NotificationNewMessage, "New message from "+senderLabel, &preview,
		map[string]any{"message_id": m.ID.String(), "peer_id": userID.String()},
		"/peer-support/chat?peer_id="+userID.String())
	h.effects.publish(events.Event{
		Subject:    events.SubjectChatMessage,
		ActorID:    userID.String(),
		TargetID:   receiverID.String(),
		ResourceID: m.ID.String(),
	})

	utils.WriteJSONResponse(w, http.StatusCreated, matching.ToChatMessage(*m, userID, ""))
}

// DeleteThread handles DELETE /api/peer-support/chats?peer_id=
// @Summary End a conversation
// @Description Deletes every message between the two users and moves their accepted request to completed, atomically.
// @Tags peer-support
// @Produce json
// @Security BearerAuth
// @Param peer_id query string true "Peer user ID"
// @Success 200 {object} dto.DeleteChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support/chats [delete]
func (h *ChatsHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	peerID, ok := parseID(w, "peer_id", r.URL.Query().Get("peer_id"))
	if !ok {
		return
	}

	res, err := h.chats.DeleteThread(r.Context(), userID, peerID)
	if err != nil {
		writeServiceError(w, r, "chats", err)
		return
	}
	if res.RequestCompleted {
		metrics.SupportRequestsTotal.WithLabelValues("complete").Inc()
	}

	e := events.Event{
		Subject:  events.SubjectChatDeleted,
		ActorID:  userID.String(),
		TargetID: peerID.String(),
		Data: map[string]any{
			"deleted_messages":  res.DeletedMessages,
			"request_completed": res.RequestCompleted,
		},
	}
	if res.RequestID != nil {
		e.ResourceID = res.RequestID.String()
	}
	h.effects.publish(e)

	utils.WriteJSONResponse(w, http.StatusOK, dto.DeleteChatResponse{
		Message:          "Conversation deleted",
		DeletedMessages:  res.DeletedMessages,
		RequestCompleted: res.RequestCompleted,
	})
}

func previewText(s string) string {
	r := []rune(s)
	if len(r) <= notificationPreviewLength {
		return s
	}
	return string(r[:notificationPreviewLength]) + "…"
}
