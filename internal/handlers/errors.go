package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"MINDBRIDGE_BACK-END/internal/events"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/support"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// writeServiceError maps service sentinels to HTTP statuses. Anything
// unrecognised is a 500 carrying the raw error text.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, services.ErrNoConnection):
		utils.WriteErrorResponse(w, http.StatusForbidden, "No accepted support request", err.Error())
	case errors.Is(err, services.ErrActiveRequestExists):
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Request already exists", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid status transition", err.Error())
	case errors.Is(err, services.ErrValidation), errors.Is(err, support.ErrUnknownAction):
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.WriteErrorResponse(w, http.StatusConflict, "Conflict", err.Error())
	default:
		userID, _ := utils.GetUserIDFromContext(r.Context())
		log.Printf("[%s] %v (user_id=%s)", op, err, userID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, err.Error(), "")
	}
}

// requireUser pulls the authenticated user id or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
	}
	return userID, ok
}

// parseID parses a required uuid parameter or writes a 400
func parseID(w http.ResponseWriter, name, raw string) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", name+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter) {
	utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}

// sideEffects fans out notifications and events after a successful write.
// Failures are logged and never surface to the caller.
type sideEffects struct {
	notifications services.NotificationsService
	events        events.Publisher
}

func (s sideEffects) notify(ctx context.Context, userID uuid.UUID, nType, title string, message *string, data map[string]any, actionURL string) {
	if s.notifications == nil {
		return
	}
	var url *string
	if actionURL != "" {
		url = &actionURL
	}
	if err := s.notifications.Create(context.WithoutCancel(ctx), userID, nType, title, message, data, url); err != nil {
		log.Printf("[notifications] create %s for %s: %v", nType, userID, err)
	}
}

func (s sideEffects) publish(e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(e); err != nil {
		log.Printf("[nats] publish %s: %v", e.Subject, err)
	}
}
