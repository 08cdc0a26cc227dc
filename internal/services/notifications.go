package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"MINDBRIDGE_BACK-END/internal/models"
)

// Notification types
const (
	NotificationRequestReceived = "support_request_received"
	NotificationRequestAccepted = "support_request_accepted"
	NotificationRequestRejected = "support_request_rejected"
	NotificationNewMessage      = "chat_message"
)

var validNotificationTypes = map[string]bool{
	NotificationRequestReceived: true,
	NotificationRequestAccepted: true,
	NotificationRequestRejected: true,
	NotificationNewMessage:      true,
}

// IsValidNotificationType reports whether t is a known notification type
func IsValidNotificationType(t string) bool {
	return validNotificationTypes[t]
}

// NotificationFilter narrows a notification listing
type NotificationFilter struct {
	UnreadOnly bool
	Type       string
	Limit      int
	Offset     int
}

// NotificationPage is one page of notifications plus counters
type NotificationPage struct {
	Items       []models.Notification
	Total       int
	UnreadCount int
}

// NotificationsService creates and reads in-app notifications
type NotificationsService interface {
	Create(ctx context.Context, userID uuid.UUID, nType string, title string, message *string, data map[string]any, actionURL *string) error
	List(ctx context.Context, userID uuid.UUID, f NotificationFilter) (NotificationPage, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationsService struct {
	db DB
}

func NewNotificationsService(db DB) NotificationsService {
	return &notificationsService{db: db}
}

func (s *notificationsService) Create(
	ctx context.Context,
	userID uuid.UUID,
	nType string,
	title string,
	message *string,
	data map[string]any,
	actionURL *string,
) error {
	if userID == uuid.Nil {
		return errors.New("user_id cannot be nil")
	}
	if strings.TrimSpace(nType) == "" {
		return errors.New("notification type is required")
	}
	if strings.TrimSpace(title) == "" {
		return errors.New("notification title is required")
	}
	if len(title) > 255 {
		return errors.New("notification title exceeds maximum length of 255 characters")
	}
	if message != nil && len(*message) > 10000 {
		return errors.New("notification message exceeds maximum length of 10000 characters")
	}
	if !IsValidNotificationType(nType) {
		log.Printf("[notifications] unknown type %s (user_id=%s)", nType, userID)
	}

	var dataJSON any
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = string(b)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ct, err := s.db.Exec(ctx, `
insert into public.notifications (user_id, type, title, message, data, action_url)
values ($1, $2, $3, $4, $5::jsonb, $6)`, userID, nType, title, message, dataJSON, actionURL)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("notification insert affected %d rows", ct.RowsAffected())
	}
	return nil
}

func (s *notificationsService) List(ctx context.Context, userID uuid.UUID, f NotificationFilter) (NotificationPage, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var page NotificationPage
	if err := s.db.QueryRow(ctx,
		`select count(1) from public.notifications where user_id = $1 and read = false`, userID,
	).Scan(&page.UnreadCount); err != nil {
		return page, fmt.Errorf("count unread: %w", err)
	}

	args := []any{userID}
	where := `where user_id = $1`
	if f.UnreadOnly {
		where += ` and read = false`
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where += fmt.Sprintf(` and type = $%d`, len(args))
	}

	if err := s.db.QueryRow(ctx, `select count(1) from public.notifications `+where, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count notifications: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
select id, user_id, type, title, message, data, action_url, read, created_at
from public.notifications %s
order by created_at desc
limit $%d offset $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return page, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	page.Items = []models.Notification{}
	for rows.Next() {
		var (
			n       models.Notification
			dataRaw []byte
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &dataRaw, &n.ActionURL, &n.Read, &n.CreatedAt); err != nil {
			return page, fmt.Errorf("scan notification: %w", err)
		}
		if len(dataRaw) > 0 && string(dataRaw) != "null" {
			if err := json.Unmarshal(dataRaw, &n.Data); err != nil {
				log.Printf("[notifications] bad data payload: %v (notification_id=%s)", err, n.ID)
				n.Data = nil
			}
		}
		page.Items = append(page.Items, n)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("list notifications: %w", err)
	}
	return page, nil
}

func (s *notificationsService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ct, err := s.db.Exec(ctx,
		`update public.notifications set read = true where id = $1 and user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *notificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ct, err := s.db.Exec(ctx,
		`update public.notifications set read = true where user_id = $1 and read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return ct.RowsAffected(), nil
}
