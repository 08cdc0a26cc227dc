package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/support"
)

// MaxChatMessageLength bounds a single message body
const MaxChatMessageLength = 4000

// ThreadDeletion reports what deleting a chat thread changed
type ThreadDeletion struct {
	DeletedMessages  int64
	RequestCompleted bool
	RequestID        *uuid.UUID
}

// ChatService stores messages between users with an accepted request
type ChatService interface {
	Conversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	// Messages returns the thread oldest first and marks the peer's messages read
	Messages(ctx context.Context, userID, peerID uuid.UUID) ([]models.ChatMessage, models.ChatPeer, error)
	Send(ctx context.Context, senderID, receiverID uuid.UUID, content string, anonymous bool) (*models.ChatMessage, error)
	// DeleteThread removes every message of the pair and completes their
	// accepted request in one transaction
	DeleteThread(ctx context.Context, userID, peerID uuid.UUID) (ThreadDeletion, error)
}

type chatService struct {
	db DB
}

func NewChatService(db DB) ChatService {
	return &chatService{db: db}
}

const messageColumns = `id, sender_id, receiver_id, content, message_type, is_read, is_anonymous, created_at`

func scanMessage(row pgx.Row) (*models.ChatMessage, error) {
	var m models.ChatMessage
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.MessageType, &m.IsRead, &m.IsAnonymous, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

const pairPredicate = `least(sender_id, receiver_id) = least($1::uuid, $2::uuid)
  and greatest(sender_id, receiver_id) = greatest($1::uuid, $2::uuid)`

func (s *chatService) Conversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
with threads as (
	select distinct on (peer_id)
		case when m.sender_id = $1 then m.receiver_id else m.sender_id end as peer_id,
		m.id, m.sender_id, m.receiver_id, m.content, m.message_type, m.is_read, m.is_anonymous, m.created_at
	from public.chat_messages m
	where m.sender_id = $1 or m.receiver_id = $1
	order by peer_id, m.created_at desc
)
select
	t.peer_id, %s, p.avatar_url,
	t.id, t.sender_id, t.receiver_id, t.content, t.message_type, t.is_read, t.is_anonymous, t.created_at,
	(select count(1) from public.chat_messages u
	  where u.sender_id = t.peer_id and u.receiver_id = $1 and u.is_read = false) as unread,
	coalesce(lr.status, '') as request_status,
	coalesce(lr.sender_id = t.peer_id and lr.is_anonymous, false) as peer_anonymous
from threads t
left join public.profiles p on p.user_id = t.peer_id
left join lateral (
	select r.status, r.sender_id, r.is_anonymous
	from public.support_requests r
	where least(r.sender_id, r.receiver_id) = least($1::uuid, t.peer_id)
	  and greatest(r.sender_id, r.receiver_id) = greatest($1::uuid, t.peer_id)
	order by r.created_at desc
	limit 1
) lr on true
order by t.created_at desc`, profileName("p")), userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		var (
			c      models.Conversation
			m      = &c.LastMessage
			status string
		)
		if err := rows.Scan(
			&c.PeerID, &c.Peer.Name, &c.Peer.Avatar,
			&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.MessageType, &m.IsRead, &m.IsAnonymous, &m.CreatedAt,
			&c.UnreadCount, &status, &c.Peer.Anonymous,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.RequestStatus = models.RequestStatus(status)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return out, nil
}

func (s *chatService) Messages(ctx context.Context, userID, peerID uuid.UUID) ([]models.ChatMessage, models.ChatPeer, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var peer models.ChatPeer
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`select %s, p.avatar_url from public.profiles p where p.user_id = $1`, profileName("p")), peerID,
	).Scan(&peer.Name, &peer.Avatar)
	if err != nil && !isNoRows(err) {
		return nil, peer, fmt.Errorf("load partner: %w", err)
	}

	switch req, err := latestBetween(ctx, s.db, userID, peerID); {
	case err == nil:
		peer.Anonymous = req.SenderID == peerID && req.IsAnonymous
	case !errors.Is(err, ErrNotFound):
		return nil, peer, fmt.Errorf("load request: %w", err)
	}

	if _, err := s.db.Exec(ctx,
		`update public.chat_messages set is_read = true where sender_id = $1 and receiver_id = $2 and is_read = false`,
		peerID, userID); err != nil {
		return nil, peer, fmt.Errorf("mark read: %w", err)
	}

	rows, err := s.db.Query(ctx, `
select `+messageColumns+`
from public.chat_messages
where `+pairPredicate+`
order by created_at asc`, userID, peerID)
	if err != nil {
		return nil, peer, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, peer, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, peer, fmt.Errorf("list messages: %w", err)
	}
	return out, peer, nil
}

// Send stores a text message. Users without an accepted request between them
// cannot message each other.
func (s *chatService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string, anonymous bool) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	switch {
	case senderID == receiverID:
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	case content == "":
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	case len(content) > MaxChatMessageLength:
		return nil, fmt.Errorf("%w: content exceeds %d characters", ErrValidation, MaxChatMessageLength)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	req, err := activeBetween(ctx, s.db, senderID, receiverID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoConnection
		}
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if req.Status != models.RequestStatusAccepted {
		return nil, ErrNoConnection
	}

	m, err := scanMessage(s.db.QueryRow(ctx, `
insert into public.chat_messages (sender_id, receiver_id, content, message_type, is_anonymous)
values ($1, $2, $3, 'text', $4)
returning `+messageColumns, senderID, receiverID, content, anonymous))
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return m, nil
}

func (s *chatService) DeleteThread(ctx context.Context, userID, peerID uuid.UUID) (ThreadDeletion, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var res ThreadDeletion
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `delete from public.chat_messages where `+pairPredicate, userID, peerID)
		if err != nil {
			return err
		}
		res.DeletedMessages = ct.RowsAffected()

		req, err := scanRequest(tx.QueryRow(ctx, `
select `+requestColumns+`
from public.support_requests
where `+pairPredicate+` and status = 'accepted'
for update`, userID, peerID))
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return err
		}

		next, err := support.Authorize(support.ActionComplete, *req, userID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`update public.support_requests set status = $2, updated_at = now() where id = $1`,
			req.ID, string(next)); err != nil {
			return err
		}
		res.RequestCompleted = true
		res.RequestID = &req.ID
		return nil
	})
	if err != nil {
		return ThreadDeletion{}, fmt.Errorf("delete thread: %w", err)
	}
	return res, nil
}
