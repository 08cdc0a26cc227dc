// Package support holds the support request state machine.
//
//	pending  -> accepted | rejected | cancelled
//	accepted -> completed
//
// rejected, cancelled and completed are terminal.
package support

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"MINDBRIDGE_BACK-END/internal/models"
)

var (
	// ErrForbidden means the actor may not perform the action on this request
	ErrForbidden = errors.New("not allowed to act on this request")
	// ErrInvalidTransition means the request is not in a state that allows the action
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnknownAction means the action name is not recognized
	ErrUnknownAction = errors.New("unknown action")
)

// Action is something a participant does to a request
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// ParseAction maps a client string to an Action
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAccept, ActionReject, ActionCancel, ActionComplete:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Authorize checks that actorID may apply action to req and returns the
// status the request moves to. Ownership is checked before state.
func Authorize(action Action, req models.SupportRequest, actorID uuid.UUID) (models.RequestStatus, error) {
	var (
		allowed bool
		from    models.RequestStatus
		to      models.RequestStatus
	)

	switch action {
	case ActionAccept:
		allowed, from, to = actorID == req.ReceiverID, models.RequestStatusPending, models.RequestStatusAccepted
	case ActionReject:
		allowed, from, to = actorID == req.ReceiverID, models.RequestStatusPending, models.RequestStatusRejected
	case ActionCancel:
		allowed, from, to = actorID == req.SenderID, models.RequestStatusPending, models.RequestStatusCancelled
	case ActionComplete:
		allowed = actorID == req.SenderID || actorID == req.ReceiverID
		from, to = models.RequestStatusAccepted, models.RequestStatusCompleted
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if !allowed {
		return "", ErrForbidden
	}
	if req.Status != from {
		return "", fmt.Errorf("%w: cannot %s a %s request", ErrInvalidTransition, action, req.Status)
	}
	return to, nil
}

// IsActive reports whether status blocks a new request between the same pair
func IsActive(status models.RequestStatus) bool {
	return status == models.RequestStatusPending || status == models.RequestStatusAccepted
}
