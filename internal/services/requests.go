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

// AcceptedSystemMessage opens the chat once a request is accepted
const AcceptedSystemMessage = "Support request accepted. You can now start chatting."

// SupportRequestService persists the support request lifecycle
type SupportRequestService interface {
	List(ctx context.Context, userID uuid.UUID, direction, status string) ([]models.SupportRequestRow, error)
	Create(ctx context.Context, senderID, receiverID uuid.UUID, message *string, anonymous bool) (*models.SupportRequest, error)
	// Respond applies accept or reject on behalf of the receiver
	Respond(ctx context.Context, actorID, requestID uuid.UUID, action support.Action) (*models.SupportRequest, error)
	Cancel(ctx context.Context, actorID, requestID uuid.UUID) (*models.SupportRequest, error)
}

type supportRequestService struct {
	db DB
}

func NewSupportRequestService(db DB) SupportRequestService {
	return &supportRequestService{db: db}
}

const requestColumns = `id, sender_id, receiver_id, status, is_anonymous, message, created_at, updated_at, responded_at`

func scanRequest(row pgx.Row) (*models.SupportRequest, error) {
	var r models.SupportRequest
	var status string
	if err := row.Scan(&r.ID, &r.SenderID, &r.ReceiverID, &status, &r.IsAnonymous, &r.Message, &r.CreatedAt, &r.UpdatedAt, &r.RespondedAt); err != nil {
		return nil, err
	}
	r.Status = models.RequestStatus(status)
	return &r, nil
}

// profileName is the SQL for a profile's display name with the same fallback
// the peer cards use
func profileName(alias string) string {
	return fmt.Sprintf(
		"coalesce(nullif(trim(%[1]s.display_name), ''), nullif(trim(concat_ws(' ', %[1]s.first_name, %[1]s.last_name)), ''))",
		alias)
}

func (s *supportRequestService) List(ctx context.Context, userID uuid.UUID, direction, status string) ([]models.SupportRequestRow, error) {
	where := []string{}
	args := []any{userID}

	switch strings.ToLower(direction) {
	case "", "all":
		where = append(where, "(r.sender_id = $1 or r.receiver_id = $1)")
	case "sent":
		where = append(where, "r.sender_id = $1")
	case "received":
		where = append(where, "r.receiver_id = $1")
	default:
		return nil, fmt.Errorf("%w: direction must be sent or received", ErrValidation)
	}

	if status != "" {
		switch models.RequestStatus(status) {
		case models.RequestStatusPending, models.RequestStatusAccepted, models.RequestStatusRejected,
			models.RequestStatusCancelled, models.RequestStatusCompleted:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		args = append(args, status)
		where = append(where, fmt.Sprintf("r.status = $%d", len(args)))
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	q := fmt.Sprintf(`
select
	r.id, r.sender_id, r.receiver_id, r.status, r.is_anonymous, r.message,
	r.created_at, r.updated_at, r.responded_at,
	%s, sp.avatar_url,
	%s, rp.avatar_url
from public.support_requests r
left join public.profiles sp on sp.user_id = r.sender_id
left join public.profiles rp on rp.user_id = r.receiver_id
where %s
order by r.created_at desc`, profileName("sp"), profileName("rp"), strings.Join(where, " and "))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	out := []models.SupportRequestRow{}
	for rows.Next() {
		var (
			row    models.SupportRequestRow
			status string
		)
		if err := rows.Scan(
			&row.ID, &row.SenderID, &row.ReceiverID, &status, &row.IsAnonymous, &row.Message,
			&row.CreatedAt, &row.UpdatedAt, &row.RespondedAt,
			&row.SenderName, &row.SenderAvatar,
			&row.ReceiverName, &row.ReceiverAvatar,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		row.Status = models.RequestStatus(status)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

// latestBetween returns the newest request between a and b in either
// direction
func latestBetween(ctx context.Context, q querier, a, b uuid.UUID) (*models.SupportRequest, error) {
	r, err := scanRequest(q.QueryRow(ctx, `
select `+requestColumns+`
from public.support_requests
where least(sender_id, receiver_id) = least($1::uuid, $2::uuid)
  and greatest(sender_id, receiver_id) = greatest($1::uuid, $2::uuid)
order by created_at desc
limit 1`, a, b))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// activeBetween finds the pending or accepted request between a and b. A pair
// has at most one, and no newer request can exist beside it.
func activeBetween(ctx context.Context, q querier, a, b uuid.UUID) (*models.SupportRequest, error) {
	r, err := latestBetween(ctx, q, a, b)
	if err != nil {
		return nil, err
	}
	if !support.IsActive(r.Status) {
		return nil, ErrNotFound
	}
	return r, nil
}

// Create inserts a pending request. The partial unique index on the unordered
// pair rejects a second active request even when two inserts race past the
// pre-check.
func (s *supportRequestService) Create(ctx context.Context, senderID, receiverID uuid.UUID, message *string, anonymous bool) (*models.SupportRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot send a request to yourself", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var exists bool
	if err := s.db.QueryRow(ctx, `select exists(select 1 from public.users where id = $1)`, receiverID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check receiver: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("receiver: %w", ErrNotFound)
	}

	if _, err := activeBetween(ctx, s.db, senderID, receiverID); err == nil {
		return nil, ErrActiveRequestExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing request: %w", err)
	}

	r, err := scanRequest(s.db.QueryRow(ctx, `
insert into public.support_requests (sender_id, receiver_id, message, is_anonymous)
values ($1, $2, nullif($3, ''), $4)
returning `+requestColumns, senderID, receiverID, deref(message), anonymous))
	if err != nil {
		if code, constraint := pgCode(err); code == uniqueViolation && constraint == activePairIndex {
			return nil, ErrActiveRequestExists
		} else if code == foreignKeyViolation {
			return nil, fmt.Errorf("receiver: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("create request: %w", err)
	}
	return r, nil
}

func (s *supportRequestService) Respond(ctx context.Context, actorID, requestID uuid.UUID, action support.Action) (*models.SupportRequest, error) {
	if action != support.ActionAccept && action != support.ActionReject {
		return nil, fmt.Errorf("%w: action must be accept or reject", ErrValidation)
	}
	return s.transition(ctx, actorID, requestID, action)
}

func (s *supportRequestService) Cancel(ctx context.Context, actorID, requestID uuid.UUID) (*models.SupportRequest, error) {
	return s.transition(ctx, actorID, requestID, support.ActionCancel)
}

// transition locks the request, checks the actor and current status, then
// writes the next status. Accepting also posts the system chat message.
func (s *supportRequestService) transition(ctx context.Context, actorID, requestID uuid.UUID, action support.Action) (*models.SupportRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var out *models.SupportRequest
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		current, err := scanRequest(tx.QueryRow(ctx,
			`select `+requestColumns+` from public.support_requests where id = $1 for update`, requestID))
		if err != nil {
			if isNoRows(err) {
				return ErrNotFound
			}
			return err
		}
		next, err := support.Authorize(action, *current, actorID)
		if err != nil {
			return err
		}

		out, err = scanRequest(tx.QueryRow(ctx, `
update public.support_requests
set status = $2, updated_at = now(),
    responded_at = case when $3 then now() else responded_at end
where id = $1
returning `+requestColumns,
			requestID, string(next), action == support.ActionAccept || action == support.ActionReject))
		if err != nil {
			return err
		}

		if next == models.RequestStatusAccepted {
			_, err = tx.Exec(ctx, `
insert into public.chat_messages (sender_id, receiver_id, content, message_type)
values ($1, $2, $3, 'system')`, current.ReceiverID, current.SenderID, AcceptedSystemMessage)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("%s request: %w", action, err)
	}
	return out, nil
}
