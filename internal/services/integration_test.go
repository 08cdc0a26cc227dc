package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MINDBRIDGE_BACK-END/internal/database"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/support"
)

// newTestPool connects to TEST_DATABASE_URL and applies migrations. Tests
// that call it are skipped when no database is configured.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres not available: %v", err)
	}
	require.NoError(t, database.Migrate(dsn))
	t.Cleanup(pool.Close)
	return pool
}

func newTestUser(t *testing.T, users UserService) uuid.UUID {
	t.Helper()
	u, err := users.Create(context.Background(), NewAccount{
		Email:        uuid.NewString() + "@example.test",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return u.ID
}

func TestIntegration_DuplicateActiveRequestRejected(t *testing.T) {
	pool := newTestPool(t)
	users, requests := NewUserService(pool), NewSupportRequestService(pool)
	ctx := context.Background()
	a, b := newTestUser(t, users), newTestUser(t, users)

	_, err := requests.Create(ctx, a, b, nil, false)
	require.NoError(t, err)

	_, err = requests.Create(ctx, a, b, nil, false)
	assert.ErrorIs(t, err, ErrActiveRequestExists)

	// the pair is unordered
	_, err = requests.Create(ctx, b, a, nil, true)
	assert.ErrorIs(t, err, ErrActiveRequestExists)
}

func TestIntegration_ConcurrentCreatesYieldOneActiveRequest(t *testing.T) {
	pool := newTestPool(t)
	users, requests := NewUserService(pool), NewSupportRequestService(pool)
	a, b := newTestUser(t, users), newTestUser(t, users)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, receiver := a, b
			if i%2 == 1 {
				sender, receiver = b, a
			}
			_, err := requests.Create(context.Background(), sender, receiver, nil, false)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, ErrActiveRequestExists) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, rejected)
}

func TestIntegration_OnlyReceiverMayAccept(t *testing.T) {
	pool := newTestPool(t)
	users, requests, chats := NewUserService(pool), NewSupportRequestService(pool), NewChatService(pool)
	ctx := context.Background()
	a, b, c := newTestUser(t, users), newTestUser(t, users), newTestUser(t, users)

	req, err := requests.Create(ctx, a, b, nil, false)
	require.NoError(t, err)

	_, err = requests.Respond(ctx, a, req.ID, support.ActionAccept)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = requests.Respond(ctx, c, req.ID, support.ActionAccept)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = requests.Cancel(ctx, c, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = chats.Send(ctx, a, b, "hello", false)
	assert.ErrorIs(t, err, ErrNoConnection)

	accepted, err := requests.Respond(ctx, b, req.ID, support.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.RespondedAt)

	msgs, _, err := chats.Messages(ctx, a, b)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageTypeSystem, msgs[0].MessageType)

	_, err = requests.Respond(ctx, b, req.ID, support.ActionReject)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestIntegration_DeleteThreadCompletesRequest(t *testing.T) {
	pool := newTestPool(t)
	users, requests, chats := NewUserService(pool), NewSupportRequestService(pool), NewChatService(pool)
	ctx := context.Background()
	a, b := newTestUser(t, users), newTestUser(t, users)

	req, err := requests.Create(ctx, a, b, nil, false)
	require.NoError(t, err)
	_, err = requests.Respond(ctx, b, req.ID, support.ActionAccept)
	require.NoError(t, err)
	_, err = chats.Send(ctx, a, b, "thanks for accepting", false)
	require.NoError(t, err)

	res, err := chats.DeleteThread(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedMessages)
	assert.True(t, res.RequestCompleted)

	rows, err := requests.List(ctx, a, "sent", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.RequestStatusCompleted, rows[0].Status)

	// completed is terminal, so a fresh request is allowed
	_, err = requests.Create(ctx, a, b, nil, false)
	assert.NoError(t, err)
}

func TestIntegration_AnonymousSenderStaysHiddenInChat(t *testing.T) {
	pool := newTestPool(t)
	users, requests, chats := NewUserService(pool), NewSupportRequestService(pool), NewChatService(pool)
	ctx := context.Background()
	a, b := newTestUser(t, users), newTestUser(t, users)

	req, err := requests.Create(ctx, a, b, nil, true)
	require.NoError(t, err)
	_, err = requests.Respond(ctx, b, req.ID, support.ActionAccept)
	require.NoError(t, err)

	_, receiverView, err := chats.Messages(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, receiverView.Anonymous)

	_, senderView, err := chats.Messages(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, senderView.Anonymous)

	convs, err := chats.Conversations(ctx, b)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.True(t, convs[0].Peer.Anonymous)
	assert.Equal(t, models.RequestStatusAccepted, convs[0].RequestStatus)
}

func TestIntegration_StreakIncrementsOncePerDay(t *testing.T) {
	pool := newTestPool(t)
	users, streaks := NewUserService(pool), NewStreakService(pool)
	ctx := context.Background()
	u := newTestUser(t, users)
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first, res, err := streaks.Record(ctx, u, today)
	require.NoError(t, err)
	assert.Equal(t, StreakStarted, res)
	assert.Equal(t, 1, first.CurrentStreak)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, res, err := streaks.Record(context.Background(), u, today)
			assert.NoError(t, err)
			assert.Equal(t, StreakUnchanged, res)
		}()
	}
	wg.Wait()

	got, err := streaks.Get(ctx, u, today)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 1, got.TotalDays)

	next, res, err := streaks.Record(ctx, u, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, StreakIncremented, res)
	assert.Equal(t, 2, next.CurrentStreak)
}
