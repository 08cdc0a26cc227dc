package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/events"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/support"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, acc services.NewAccount) (*models.User, error) {
	args := m.Called(ctx, acc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CreateVerification(ctx context.Context, userID uuid.UUID, email, code string, ttl time.Duration) error {
	return m.Called(ctx, userID, email, code, ttl).Error(0)
}

func (m *MockUserService) LatestVerification(ctx context.Context, userID uuid.UUID, email string) (*services.Verification, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Verification), args.Error(1)
}

func (m *MockUserService) ResetPassword(ctx context.Context, userID uuid.UUID, verificationID uuid.UUID, passwordHash string) error {
	return m.Called(ctx, userID, verificationID, passwordHash).Error(0)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*models.Profile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) Sync(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*models.Profile, []string, []string, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, nil, nil, args.Error(3)
	}
	applied, _ := args.Get(1).([]string)
	ignored, _ := args.Get(2).([]string)
	return args.Get(0).(*models.Profile), applied, ignored, args.Error(3)
}

func (m *MockProfileService) ListCandidates(ctx context.Context, viewerID uuid.UUID, q services.CandidateQuery) ([]models.Profile, error) {
	args := m.Called(ctx, viewerID, q)
	list, _ := args.Get(0).([]models.Profile)
	return list, args.Error(1)
}

type MockMindfulnessService struct {
	mock.Mock
}

func (m *MockMindfulnessService) List(ctx context.Context, userID uuid.UUID, entryType string) ([]models.MindfulnessEntry, error) {
	args := m.Called(ctx, userID, entryType)
	list, _ := args.Get(0).([]models.MindfulnessEntry)
	return list, args.Error(1)
}

func (m *MockMindfulnessService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateMindfulnessRequest) (*models.MindfulnessEntry, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MindfulnessEntry), args.Error(1)
}

func (m *MockMindfulnessService) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, req dto.UpdateMindfulnessRequest) (*models.MindfulnessEntry, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MindfulnessEntry), args.Error(1)
}

func (m *MockMindfulnessService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

// fakeStreakService applies NextStreak in memory so repeated posts behave
// like the real store
type fakeStreakService struct {
	streaks map[uuid.UUID]models.Streak
}

func newFakeStreakService() *fakeStreakService {
	return &fakeStreakService{streaks: map[uuid.UUID]models.Streak{}}
}

func (f *fakeStreakService) Record(_ context.Context, userID uuid.UUID, today time.Time) (models.Streak, services.StreakResult, error) {
	next, result := services.NextStreak(f.streaks[userID], today)
	next.UserID = userID
	f.streaks[userID] = next
	return next, result, nil
}

func (f *fakeStreakService) Get(_ context.Context, userID uuid.UUID, today time.Time) (models.Streak, error) {
	return services.EffectiveStreak(f.streaks[userID], today), nil
}

type MockSupportRequestService struct {
	mock.Mock
}

func (m *MockSupportRequestService) List(ctx context.Context, userID uuid.UUID, direction, status string) ([]models.SupportRequestRow, error) {
	args := m.Called(ctx, userID, direction, status)
	list, _ := args.Get(0).([]models.SupportRequestRow)
	return list, args.Error(1)
}

func (m *MockSupportRequestService) Create(ctx context.Context, senderID, receiverID uuid.UUID, message *string, anonymous bool) (*models.SupportRequest, error) {
	args := m.Called(ctx, senderID, receiverID, message, anonymous)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportRequest), args.Error(1)
}

func (m *MockSupportRequestService) Respond(ctx context.Context, actorID, requestID uuid.UUID, action support.Action) (*models.SupportRequest, error) {
	args := m.Called(ctx, actorID, requestID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportRequest), args.Error(1)
}

func (m *MockSupportRequestService) Cancel(ctx context.Context, actorID, requestID uuid.UUID) (*models.SupportRequest, error) {
	args := m.Called(ctx, actorID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportRequest), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Conversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]models.Conversation)
	return list, args.Error(1)
}

func (m *MockChatService) Messages(ctx context.Context, userID, peerID uuid.UUID) ([]models.ChatMessage, models.ChatPeer, error) {
	args := m.Called(ctx, userID, peerID)
	list, _ := args.Get(0).([]models.ChatMessage)
	peer, _ := args.Get(1).(models.ChatPeer)
	return list, peer, args.Error(2)
}

func (m *MockChatService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string, anonymous bool) (*models.ChatMessage, error) {
	args := m.Called(ctx, senderID, receiverID, content, anonymous)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockChatService) DeleteThread(ctx context.Context, userID, peerID uuid.UUID) (services.ThreadDeletion, error) {
	args := m.Called(ctx, userID, peerID)
	return args.Get(0).(services.ThreadDeletion), args.Error(1)
}

type MockNotificationsService struct {
	mock.Mock
}

func (m *MockNotificationsService) Create(ctx context.Context, userID uuid.UUID, nType string, title string, message *string, data map[string]any, actionURL *string) error {
	return m.Called(ctx, userID, nType, title, message, data, actionURL).Error(0)
}

func (m *MockNotificationsService) List(ctx context.Context, userID uuid.UUID, f services.NotificationFilter) (services.NotificationPage, error) {
	args := m.Called(ctx, userID, f)
	return args.Get(0).(services.NotificationPage), args.Error(1)
}

func (m *MockNotificationsService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher keeps published events in memory
type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) subjects() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Subject)
	}
	return out
}
