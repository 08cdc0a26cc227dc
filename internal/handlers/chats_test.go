package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/events"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
)

type chatsFixture struct {
	chats         *MockChatService
	profiles      *MockProfileService
	notifications *MockNotificationsService
	publisher     *recordingPublisher
	handler       *ChatsHandler
}

func newChatsFixture() *chatsFixture {
	f := &chatsFixture{
		chats:         new(MockChatService),
		profiles:      new(MockProfileService),
		notifications: new(MockNotificationsService),
		publisher:     &recordingPublisher{},
	}
	f.handler = NewChatsHandler(f.chats, f.profiles, f.notifications, f.publisher)
	return f
}

func TestSendMessage_NoConnection(t *testing.T) {
	f := newChatsFixture()
	sender, receiver := uuid.New(), uuid.New()
	f.chats.On("Send", mock.Anything, sender, receiver, "hello", false).Return(nil, services.ErrNoConnection)

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodPost, "/api/peer-support/chats",
		dto.SendChatRequest{ReceiverID: receiver.String(), Content: "hello"}, sender))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.publisher.events)
	f.notifications.AssertNumberOfCalls(t, "Create", 0)
}

func TestSendMessage_Success(t *testing.T) {
	f := newChatsFixture()
	sender, receiver := uuid.New(), uuid.New()
	sent := &models.ChatMessage{
		ID:          uuid.New(),
		SenderID:    sender,
		ReceiverID:  receiver,
		Content:     "hello there",
		MessageType: models.MessageTypeText,
		CreatedAt:   time.Now(),
	}
	f.chats.On("Send", mock.Anything, sender, receiver, "hello there", false).Return(sent, nil)
	f.profiles.On("Get", mock.Anything, sender).Return(&models.Profile{FirstName: ptr("Ada"), LastName: ptr("L")}, nil)
	f.notifications.On("Create", mock.Anything, receiver, services.NotificationNewMessage,
		"New message from Ada L", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodPost, "/api/peer-support/chats",
		dto.SendChatRequest{ReceiverID: receiver.String(), Content: "  hello there "}, sender))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.ChatMessageView
	decodeBody(t, rec, &resp)
	assert.Equal(t, "you", resp.Sender)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, []string{events.SubjectChatMessage}, f.publisher.subjects())
	f.notifications.AssertExpectations(t)
}

func TestSendMessage_EmptyContent(t *testing.T) {
	f := newChatsFixture()

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodPost, "/api/peer-support/chats",
		dto.SendChatRequest{ReceiverID: uuid.NewString(), Content: "   "}, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.chats.AssertNumberOfCalls(t, "Send", 0)
}

func TestGetMessages(t *testing.T) {
	f := newChatsFixture()
	userID, peerID := uuid.New(), uuid.New()
	msgs := []models.ChatMessage{
		{ID: uuid.New(), SenderID: peerID, ReceiverID: userID, Content: "hey", MessageType: models.MessageTypeText, CreatedAt: time.Now()},
		{ID: uuid.New(), SenderID: userID, ReceiverID: peerID, Content: "hi", MessageType: models.MessageTypeText, CreatedAt: time.Now()},
	}
	f.chats.On("Messages", mock.Anything, userID, peerID).Return(msgs, models.ChatPeer{Name: ptr("Jo")}, nil)

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodGet, "/api/peer-support/chats?peer_id="+peerID.String(), nil, userID))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ChatMessagesResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, peerID.String(), resp.PeerID)
	if assert.Len(t, resp.Messages, 2) {
		assert.Equal(t, "Jo", resp.Messages[0].Sender)
		assert.Equal(t, "you", resp.Messages[1].Sender)
	}
}

func TestGetMessages_AnonymousRequestHidesPeer(t *testing.T) {
	f := newChatsFixture()
	userID, peerID := uuid.New(), uuid.New()
	msgs := []models.ChatMessage{
		{ID: uuid.New(), SenderID: peerID, ReceiverID: userID, Content: "hey", MessageType: models.MessageTypeText, CreatedAt: time.Now()},
	}
	f.chats.On("Messages", mock.Anything, userID, peerID).
		Return(msgs, models.ChatPeer{Name: ptr("Jo"), Anonymous: true}, nil)

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodGet, "/api/peer-support/chats?peer_id="+peerID.String(), nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Jo")
	var resp dto.ChatMessagesResponse
	decodeBody(t, rec, &resp)
	if assert.Len(t, resp.Messages, 1) {
		assert.Equal(t, "Anonymous", resp.Messages[0].Sender)
	}
}

func TestListConversations_AnonymousRequestHidesPeer(t *testing.T) {
	f := newChatsFixture()
	userID, peerID := uuid.New(), uuid.New()
	f.chats.On("Conversations", mock.Anything, userID).Return([]models.Conversation{{
		PeerID:        peerID,
		Peer:          models.ChatPeer{Name: ptr("Jo Smith"), Avatar: ptr("https://cdn.example.com/jo.png"), Anonymous: true},
		LastMessage:   models.ChatMessage{ID: uuid.New(), SenderID: peerID, ReceiverID: userID, Content: "ok", MessageType: models.MessageTypeText},
		RequestStatus: models.RequestStatusAccepted,
	}}, nil)

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodGet, "/api/peer-support/chats", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ConversationListResponse
	decodeBody(t, rec, &resp)
	if assert.Len(t, resp.Conversations, 1) {
		c := resp.Conversations[0]
		assert.Equal(t, "Anonymous", c.PeerName)
		assert.NotEqual(t, "https://cdn.example.com/jo.png", c.PeerAvatar)
		assert.Equal(t, "Anonymous", c.LastMessage.Sender)
	}
}

func TestGetMessages_InvalidPeer(t *testing.T) {
	f := newChatsFixture()

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodGet, "/api/peer-support/chats?peer_id=abc", nil, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversations(t *testing.T) {
	f := newChatsFixture()
	userID, peerID := uuid.New(), uuid.New()
	f.chats.On("Conversations", mock.Anything, userID).Return([]models.Conversation{{
		PeerID:        peerID,
		LastMessage:   models.ChatMessage{ID: uuid.New(), SenderID: peerID, ReceiverID: userID, Content: "ok", MessageType: models.MessageTypeText},
		UnreadCount:   3,
		RequestStatus: models.RequestStatusAccepted,
	}}, nil)

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodGet, "/api/peer-support/chats", nil, userID))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ConversationListResponse
	decodeBody(t, rec, &resp)
	if assert.Len(t, resp.Conversations, 1) {
		c := resp.Conversations[0]
		assert.Equal(t, "Peer", c.PeerName)
		assert.Equal(t, 3, c.UnreadCount)
		assert.Equal(t, "accepted", c.RequestStatus)
		assert.NotEmpty(t, c.PeerAvatar)
	}
}

func TestDeleteThread_CompletesRequest(t *testing.T) {
	f := newChatsFixture()
	userID, peerID, requestID := uuid.New(), uuid.New(), uuid.New()
	f.chats.On("DeleteThread", mock.Anything, userID, peerID).Return(services.ThreadDeletion{
		DeletedMessages:  4,
		RequestCompleted: true,
		RequestID:        &requestID,
	}, nil)

	rec := httptest.NewRecorder()
	f.handler.Chats(rec, newRequest(t, http.MethodDelete, "/api/peer-support/chats?peer_id="+peerID.String(), nil, userID))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.DeleteChatResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.RequestCompleted)
	assert.EqualValues(t, 4, resp.DeletedMessages)
	if assert.Len(t, f.publisher.events, 1) {
		assert.Equal(t, events.SubjectChatDeleted, f.publisher.events[0].Subject)
		assert.Equal(t, requestID.String(), f.publisher.events[0].ResourceID)
	}
}

func TestChats_Unauthorized(t *testing.T) {
	f := newChatsFixture()

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rec := httptest.NewRecorder()
		f.handler.Chats(rec, newRequest(t, method, "/api/peer-support/chats?peer_id="+uuid.NewString(), nil, uuid.Nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}
}

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "short", previewText("short"))

	long := strings.Repeat("é", notificationPreviewLength+5)
	got := previewText(long)
	assert.Equal(t, notificationPreviewLength+1, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
